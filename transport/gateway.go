package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
)

// DispatchFunc hands an accepted inbound message to the agent runtime.
type DispatchFunc func(ctx context.Context, userID int64, text string) error

// Gateway exposes the chat surface over HTTP and buffers outbound agent
// replies per user until the client polls for them. It implements
// Messenger: SendText appends to the user's outbox.
//
// Inbound messages from users outside the allowlist are rejected; an empty
// allowlist rejects everyone.
type Gateway struct {
	dispatch DispatchFunc
	allowed  map[int64]bool
	logger   *slog.Logger

	mu       sync.Mutex
	outboxes map[int64][]string
}

// NewGateway creates a Gateway dispatching accepted messages through
// dispatch and admitting only the listed user ids.
func NewGateway(dispatch DispatchFunc, allowedUsers []int64, logger *slog.Logger) *Gateway {
	allowed := make(map[int64]bool, len(allowedUsers))
	for _, id := range allowedUsers {
		allowed[id] = true
	}
	return &Gateway{
		dispatch: dispatch,
		allowed:  allowed,
		logger:   logger,
		outboxes: make(map[int64][]string),
	}
}

// SendText buffers an agent reply in the user's outbox.
func (g *Gateway) SendText(_ context.Context, userID int64, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.outboxes[userID] = append(g.outboxes[userID], text)
	return nil
}

// Handler returns the gateway's HTTP routes.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/messages", g.handlePost)
	mux.HandleFunc("GET /v1/messages/{user_id}", g.handleGet)
	return mux
}

type inboundMessage struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

func (g *Gateway) handlePost(w http.ResponseWriter, r *http.Request) {
	var msg inboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg.Text == "" {
		http.Error(w, "text must not be empty", http.StatusBadRequest)
		return
	}
	if !g.allowed[msg.UserID] {
		g.logger.Warn("rejected message from unlisted user", "user_id", msg.UserID)
		http.Error(w, "user is not allowed", http.StatusForbidden)
		return
	}
	if err := g.dispatch(r.Context(), msg.UserID, msg.Text); err != nil {
		g.logger.Error("dispatch failed", "user_id", msg.UserID, "error", err)
		http.Error(w, "message could not be delivered", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type outboundMessages struct {
	Messages []string `json:"messages"`
}

func (g *Gateway) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	if !g.allowed[userID] {
		http.Error(w, "user is not allowed", http.StatusForbidden)
		return
	}

	g.mu.Lock()
	messages := g.outboxes[userID]
	delete(g.outboxes, userID)
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(outboundMessages{Messages: messages}); err != nil {
		g.logger.Error("encode outbox failed", "user_id", userID, "error", err)
	}
}
