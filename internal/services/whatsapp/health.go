package whatsapp

import (
	"sync"
	"time"
)

// HealthState is the integration health of the messaging channel
type HealthState string

const (
	HealthOK       HealthState = "ok"
	HealthDegraded HealthState = "degraded"
)

// Health tracks the channel health from provider error codes. A token
// failure flips the channel to degraded until a send succeeds again; the
// UI shows this as a persistent banner rather than a per-request error.
type Health struct {
	mu        sync.RWMutex
	state     HealthState
	reason    string
	since     time.Time
	lastError string
}

// NewHealth starts in the ok state
func NewHealth() *Health {
	return &Health{state: HealthOK, since: time.Now()}
}

// RecordSuccess clears any degraded condition
func (h *Health) RecordSuccess() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != HealthOK {
		h.state = HealthOK
		h.reason = ""
		h.since = time.Now()
	}
	h.lastError = ""
}

// RecordError classifies a send failure. Only token failures degrade the
// channel; transient errors are kept as lastError without a state change.
func (h *Health) RecordError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastError = err.Error()
	if IsTokenError(err) && h.state != HealthDegraded {
		h.state = HealthDegraded
		h.reason = "token_expired"
		h.since = time.Now()
	}
}

// Status is the serializable health snapshot
type Status struct {
	State     HealthState `json:"state"`
	Reason    string      `json:"reason,omitempty"`
	Since     time.Time   `json:"since"`
	LastError string      `json:"last_error,omitempty"`
}

// Snapshot returns the current health
func (h *Health) Snapshot() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Status{
		State:     h.state,
		Reason:    h.reason,
		Since:     h.since,
		LastError: h.lastError,
	}
}
