package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event is the typed envelope broadcast to dashboard clients
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	At      time.Time   `json:"at"`
}

// Hub maintains the set of active clients and broadcasts events
type Hub struct {
	// Registered clients map: ClientID -> Client
	clients map[string]*Client

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Outbound events
	broadcast chan []byte

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[string]*Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.ID]; ok {
				close(old.send)
				delete(h.clients, client.ID)
			}
			h.clients[client.ID] = client
			log.Printf("🖥️  Dashboard client connected: %s", client.ID)
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
				log.Printf("📴 Dashboard client disconnected: %s", client.ID)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client: drop it rather than block the hub
					close(client.send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish broadcasts a typed event to every connected client.
// Satisfies the services' EventSink interfaces.
func (h *Hub) Publish(event string, payload interface{}) {
	msg, err := json.Marshal(Event{Type: event, Payload: payload, At: time.Now()})
	if err != nil {
		log.Printf("⚠️  Failed to marshal event %q: %v", event, err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("⚠️  Event queue full, dropping %q", event)
	}
}
