package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// ManagerConfig holds the collaborators shared by every session.
type ManagerConfig struct {
	// Registry is the process-wide tool catalog.
	Registry *Registry
	// NewAgent builds the Agent for a fresh session.
	NewAgent AgentFactory
	// MaxDecisionRetries bounds the stale/unknown-decision retry loop.
	// 0 selects DefaultMaxDecisionRetries.
	MaxDecisionRetries int
	// EventBuffer sizes the shared event channel. 0 selects the default.
	EventBuffer int
	// Logger receives session logs. nil discards them.
	Logger *slog.Logger
}

// DefaultMaxDecisionRetries bounds how often a session re-requests a
// decision before giving up on the turn. The original behavior was an
// unbounded loop; a backend that persistently names unregistered tools
// would spin forever.
const DefaultMaxDecisionRetries = 8

// Manager owns all Session instances, at most one live session per user.
// It creates a session lazily on the first message from a user with no
// live session and replaces a terminated session's entry on the next
// inbound message. Session creation is an atomic check-and-set per user
// id, so two concurrent inbound messages never race to create two
// sessions for the same user.
type Manager struct {
	cfg     ManagerConfig
	emitter *EventEmitter
	tasks   *TaskGroup

	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewManager creates a Manager. Close must be called at shutdown to drain
// detached work.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.MaxDecisionRetries <= 0 {
		cfg.MaxDecisionRetries = DefaultMaxDecisionRetries
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	emitter := NewEventEmitter(cfg.EventBuffer)
	logger := cfg.Logger
	tasks := NewTaskGroup(func(err error) {
		logger.Error("supervised task failed", "error", err)
		emitter.Emit(EventError, "", 0, map[string]any{"error": err.Error()})
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:      cfg,
		emitter:  emitter,
		tasks:    tasks,
		baseCtx:  ctx,
		cancel:   cancel,
		sessions: make(map[int64]*Session),
	}
}

// dispatchAttempts bounds the replace-and-retry loop in Dispatch, so a
// session factory that fails instantly cannot spin session creation.
const dispatchAttempts = 3

// Dispatch routes an inbound user message to the user's live session,
// creating one when none exists or the previous one has terminated. A
// session that terminates between lookup and delivery is replaced and
// the delivery retried.
func (m *Manager) Dispatch(ctx context.Context, userID int64, text string) error {
	_ = ctx // inbound delivery is synchronous; session work runs on the manager's lifetime
	var err error
	for attempt := 0; attempt < dispatchAttempts; attempt++ {
		session := m.getOrCreate(userID)
		err = session.AddUserMessage(text)
		var closed *SessionClosedError
		if !errors.As(err, &closed) {
			return err
		}
	}
	return err
}

// Session returns the user's current session, or nil when none exists.
func (m *Manager) Session(userID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[userID]
}

// Events returns the shared session event stream.
func (m *Manager) Events() <-chan SessionEvent {
	return m.emitter.Events()
}

func (m *Manager) getOrCreate(userID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session := m.sessions[userID]; session != nil && !session.Done() {
		return session
	}
	m.cfg.Logger.Info("creating new session", "user_id", userID)
	session := newSession(userID, m.cfg, m.tasks, m.emitter)
	m.sessions[userID] = session
	m.tasks.Go(func() error {
		return session.run(m.baseCtx)
	})
	return session
}

// Close stops all session loops, waits for every supervised task
// (including detached terminating-tool executions) to finish, and closes
// the event stream.
func (m *Manager) Close() {
	m.cancel()
	m.tasks.Wait()
	m.emitter.Close()
}
