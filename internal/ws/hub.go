package ws

import (
	"encoding/json"
	"sync"
)

// Client is one WebSocket subscriber watching a checkout session.
type Client struct {
	UserID    uint
	SessionID string
	Send      chan []byte
	hub       *CheckoutHub
	mu        sync.Mutex
	closed    bool
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.hub != nil {
		c.hub.unregister(c)
	}
}

// CheckoutHub fans checkout state transitions out to the apps watching a
// session (the customer's phone and, for dashboard-initiated orders, the
// restaurant dashboard).
type CheckoutHub struct {
	mu        sync.RWMutex
	bySession map[string]map[*Client]struct{}
}

func NewCheckoutHub() *CheckoutHub {
	return &CheckoutHub{bySession: make(map[string]map[*Client]struct{})}
}

func (h *CheckoutHub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	if h.bySession[c.SessionID] == nil {
		h.bySession[c.SessionID] = make(map[*Client]struct{})
	}
	h.bySession[c.SessionID][c] = struct{}{}
}

func (h *CheckoutHub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.bySession[c.SessionID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.bySession, c.SessionID)
		}
	}
}

// Publish sends payload to every client watching sessionID. Slow clients are
// skipped rather than blocking the checkout state machine.
func (h *CheckoutHub) Publish(sessionID string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.mu.RLock()
	m := h.bySession[sessionID]
	clients := make([]*Client, 0, len(m))
	for c := range m {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		select {
		case c.Send <- data:
		default:
		}
	}
}

func (h *CheckoutHub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.bySession[sessionID])
}
