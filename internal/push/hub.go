package push

import (
	"encoding/json"
	"sync"

	"sharesphere-backend/internal/logger"
)

// Event types pushed over the websocket channel.
const (
	EventTransactionUpdate = "transaction_update"
	EventNewMessage        = "new_message"
	EventNotification      = "notification"
)

// Event is the envelope written to connected clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans events out to the websocket connections of individual users. A
// user may hold several connections (multiple tabs, devices); every event
// addressed to the user goes to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.userID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.clients[c.userID] = conns
	}
	conns[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.clients, c.userID)
	}
}

// Publish delivers an event to every connection of the given user. Delivery
// is best effort: a client whose send buffer is full is dropped rather than
// allowed to stall the caller.
func (h *Hub) Publish(userID, eventType string, data any) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		logger.Error("Failed to encode push event", "type", eventType, "error", err)
		return
	}

	h.mu.RLock()
	var stalled []*Client
	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		logger.Warn("Dropping stalled websocket client", "user_id", userID)
		h.unregister(c)
	}
}

// ConnectedUsers reports how many distinct users currently hold at least one
// connection.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
