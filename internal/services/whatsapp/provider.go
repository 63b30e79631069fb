package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/warehub-io/warehub/internal/config"
)

// Provider relays outbound messages to the external messaging API
type Provider interface {
	Send(ctx context.Context, toPhone, body string) error
}

// ProviderError carries the provider's error code so the health tracker
// can classify failures instead of scanning message text
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// Token-related error codes of the Graph API. Any of these means the
// access token is expired or revoked and sends will keep failing until
// it is rotated.
var tokenErrorCodes = map[int]bool{
	190: true, // access token expired/invalid
	401: true,
	463: true, // token expired
	467: true, // token invalidated
}

// IsTokenError reports whether err is a token/authentication failure
func IsTokenError(err error) bool {
	pe, ok := err.(*ProviderError)
	return ok && tokenErrorCodes[pe.Code]
}

// HTTPProvider sends messages through the Graph API
type HTTPProvider struct {
	cfg    config.WhatsAppConfig
	client *http.Client
}

// NewHTTPProvider creates a provider for the configured phone number
func NewHTTPProvider(cfg config.WhatsAppConfig) *HTTPProvider {
	return &HTTPProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type sendRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             sendText `json:"text"`
}

type sendText struct {
	Body string `json:"body"`
}

type sendErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Send posts a text message to the provider
func (p *HTTPProvider) Send(ctx context.Context, toPhone, body string) error {
	payload, err := json.Marshal(sendRequest{
		MessagingProduct: "whatsapp",
		To:               toPhone,
		Type:             "text",
		Text:             sendText{Body: body},
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", p.cfg.APIBaseURL, p.cfg.PhoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.AccessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr sendErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Code != 0 {
		return &ProviderError{Code: apiErr.Error.Code, Message: apiErr.Error.Message}
	}
	return &ProviderError{Code: resp.StatusCode, Message: resp.Status}
}

// LogProvider is the development fallback when no access token is
// configured: sends are logged, never relayed.
type LogProvider struct{}

// Send logs the outbound message
func (LogProvider) Send(ctx context.Context, toPhone, body string) error {
	log.Printf("💬 [dry-run] -> %s: %s", toPhone, body)
	return nil
}
