package transport

import (
	"context"
	"log/slog"
	"sync"
)

// historyLen bounds the per-user dialog history kept for prompt context.
const historyLen = 6

// ChatTurn is one remembered exchange in a user's recent dialog.
type ChatTurn struct {
	Role    string // "user" or "agent"
	Message string
}

// Proxy fronts the Messenger for one user. It records the recent dialog
// (both directions) so the system prompt can carry conversational context
// across sessions.
type Proxy struct {
	userID    int64
	messenger Messenger

	mu      sync.Mutex
	history []ChatTurn
}

// RecordUser appends an inbound user message to the dialog history.
func (p *Proxy) RecordUser(text string) {
	p.record(ChatTurn{Role: "user", Message: text})
}

// SendText records the agent turn and forwards it to the Messenger.
func (p *Proxy) SendText(ctx context.Context, text string) error {
	p.record(ChatTurn{Role: "agent", Message: text})
	return p.messenger.SendText(ctx, p.userID, text)
}

// History returns a copy of the remembered dialog, oldest first.
func (p *Proxy) History() []ChatTurn {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ChatTurn, len(p.history))
	copy(out, p.history)
	return out
}

func (p *Proxy) record(turn ChatTurn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = append(p.history, turn)
	if len(p.history) > historyLen {
		p.history = p.history[len(p.history)-historyLen:]
	}
}

// Hub hands out one Proxy per user over a shared Messenger.
type Hub struct {
	messenger Messenger
	logger    *slog.Logger

	mu      sync.Mutex
	proxies map[int64]*Proxy
}

// NewHub creates a Hub over the given Messenger.
func NewHub(messenger Messenger, logger *slog.Logger) *Hub {
	return &Hub{
		messenger: messenger,
		logger:    logger,
		proxies:   make(map[int64]*Proxy),
	}
}

// For returns the user's Proxy, creating it on first use.
func (h *Hub) For(userID int64) *Proxy {
	h.mu.Lock()
	defer h.mu.Unlock()
	proxy := h.proxies[userID]
	if proxy == nil {
		h.logger.Info("initializing communication proxy", "user_id", userID)
		proxy = &Proxy{userID: userID, messenger: h.messenger}
		h.proxies[userID] = proxy
	}
	return proxy
}
