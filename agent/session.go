package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// SessionState represents the current lifecycle state of a session.
type SessionState string

const (
	StateInitializing  SessionState = "initializing"
	StateProcessing    SessionState = "processing"
	StateAwaitingInput SessionState = "awaiting_input"
	StateTerminated    SessionState = "terminated"
)

// AgentFactory builds the Agent for a new session: it loads whatever the
// system prompt needs (recent records, configuration, memory, recent
// dialog) from the persistence collaborator and binds the tool subset and
// completion service.
type AgentFactory func(ctx context.Context, userID int64) (*Agent, error)

// signal is a level-triggered "needs processing" flag. Set may be called
// from any goroutine; Wait, Clear and IsSet belong to the session loop.
type signal struct {
	mu   sync.Mutex
	set  bool
	wake chan struct{}
}

func newSignal() *signal {
	return &signal{wake: make(chan struct{})}
}

func (s *signal) Set() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		s.set = true
		close(s.wake)
	}
}

func (s *signal) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		s.set = false
		s.wake = make(chan struct{})
	}
}

func (s *signal) IsSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

func (s *signal) Wait(ctx context.Context) error {
	s.mu.Lock()
	if s.set {
		s.mu.Unlock()
		return nil
	}
	wake := s.wake
	s.mu.Unlock()
	select {
	case <-wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Session is the per-user state machine owning one transcript and one
// Agent. It absorbs incoming user messages and drives the
// decide → execute → append loop until a terminating tool fires.
//
// All internal state is touched by the session's own processing task; the
// only cross-task interaction is AddUserMessage.
type Session struct {
	id       string
	userID   int64
	registry *Registry
	newAgent AgentFactory
	emitter  *EventEmitter
	tasks    *TaskGroup
	logger   *slog.Logger

	maxDecisionRetries int

	chat  *Chat
	agent *Agent

	mu     sync.Mutex
	buffer []string
	state  SessionState

	need *signal
	done chan struct{}
}

func newSession(userID int64, cfg ManagerConfig, tasks *TaskGroup, emitter *EventEmitter) *Session {
	id := uuid.New().String()
	return &Session{
		id:                 id,
		userID:             userID,
		registry:           cfg.Registry,
		newAgent:           cfg.NewAgent,
		emitter:            emitter,
		tasks:              tasks,
		logger:             cfg.Logger.With("session", shortID(id), "user_id", userID),
		maxDecisionRetries: cfg.MaxDecisionRetries,
		chat:               NewChat(),
		state:              StateInitializing,
		need:               newSignal(),
		done:               make(chan struct{}),
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done reports whether the session has terminated and accepts no further
// input.
func (s *Session) Done() bool {
	return s.State() == StateTerminated
}

// Chat returns the session's transcript.
func (s *Session) Chat() *Chat { return s.chat }

// AddUserMessage buffers an inbound user message and signals the
// processing loop. Buffering against a terminated session fails with
// SessionClosedError. Text arriving while a decision is in flight is
// never lost: it forces that decision to be discarded and re-requested.
func (s *Session) AddUserMessage(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateTerminated {
		return &SessionClosedError{UserID: s.userID}
	}
	s.buffer = append(s.buffer, text)
	s.need.Set()
	return nil
}

func (s *Session) setState(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) emit(kind EventKind, data map[string]any) {
	s.emitter.Emit(kind, s.id, s.userID, data)
}

// consumeBuffer merges all buffered user text into one coalesced
// transcript entry. The drain and the signal clear form one critical
// section against AddUserMessage's append-and-set, so buffered text is
// never left stranded behind a cleared signal.
func (s *Session) consumeBuffer() {
	s.mu.Lock()
	pending := s.buffer
	s.buffer = nil
	s.need.Clear()
	s.mu.Unlock()
	if len(pending) > 0 {
		s.chat.AppendUserText(joinLines(pending))
	}
}

func joinLines(lines []string) string {
	out := lines[0]
	for _, l := range lines[1:] {
		out += "\n" + l
	}
	return out
}

// run is the session's processing loop. It returns when a terminating
// tool fires, when the decision retry bound is exhausted, or when ctx is
// cancelled at shutdown.
func (s *Session) run(ctx context.Context) error {
	defer close(s.done)
	defer s.emit(EventSessionEnd, nil)

	s.logger.Info("initializing session")
	agent, err := s.newAgent(ctx, s.userID)
	if err != nil {
		s.setState(StateTerminated)
		return fmt.Errorf("initialize session for user %d: %w", s.userID, err)
	}
	s.agent = agent
	s.setState(StateProcessing)
	s.emit(EventSessionStart, nil)

	for {
		s.setState(StateAwaitingInput)
		if err := s.need.Wait(ctx); err != nil {
			s.setState(StateTerminated)
			if ctx.Err() != nil {
				return nil // host shutdown, not a task failure
			}
			return err
		}
		s.setState(StateProcessing)
		s.consumeBuffer()
		s.emit(EventUserInput, map[string]any{"entries": s.chat.Len()})

		decision, err := s.decide(ctx)
		if err != nil {
			s.setState(StateTerminated)
			if ctx.Err() != nil {
				return nil // host shutdown, not a task failure
			}
			return err
		}

		tool, lookupErr := s.registry.Lookup(decision.Key())
		if lookupErr != nil {
			// Unreachable: decide only returns registered tools.
			s.setState(StateTerminated)
			return lookupErr
		}

		if tool.Terminating {
			s.logger.Info("terminating session", "tool", tool.Name)
			s.setState(StateTerminated)
			s.spawnDetached(ctx, decision)
			return nil
		}

		if tool.IsAskUser() {
			s.logger.Info("asking user for additional info")
			s.chat.AppendAgentText(askUserMessage(tool, decision))
			result := s.execute(ctx, decision)
			if !result.Success {
				s.logger.Error("ask-user delivery failed", "error", result.ExcMessage)
			}
			continue
		}

		s.logger.Info("performing tool call", "tool", tool.Name)
		s.chat.AppendToolCall(decision)
		result := s.execute(ctx, decision)
		s.chat.AppendToolResult(result)
		// Reconsider immediately with the new result in the transcript.
		s.need.Set()
	}
}

// decide obtains a decision naming a currently-registered tool with no
// pending unconsidered input. A stale decision (new user text arrived
// while it was in flight) or one naming an unknown tool is discarded and
// re-requested, up to maxDecisionRetries times.
func (s *Session) decide(ctx context.Context) (ToolCall, error) {
	decision, err := s.agent.Decide(ctx, s.chat)

	retries := 0
	for err != nil || s.need.IsSet() || !s.registry.Contains(decision.Key()) {
		if ctx.Err() != nil {
			return ToolCall{}, ctx.Err()
		}
		retries++
		if retries > s.maxDecisionRetries {
			if err != nil {
				return ToolCall{}, fmt.Errorf("decision retries exhausted for user %d: %w", s.userID, err)
			}
			return ToolCall{}, fmt.Errorf("decision retries exhausted for user %d: last decision named %q", s.userID, decision.Name)
		}
		data := map[string]any{"attempt": retries}
		if err != nil {
			data["error"] = err.Error()
		} else {
			data["decision"] = decision.Name
		}
		s.emit(EventDecisionRetry, data)
		s.logger.Debug("discarding stale or invalid decision, retrying", "attempt", retries)

		s.consumeBuffer()
		decision, err = s.agent.Decide(ctx, s.chat)
	}
	return decision, nil
}

// spawnDetached runs a terminating tool's execution as a fire-and-forget
// unit of work supervised by the task group. The execution outlives the
// session's own context so a shutdown does not cancel a final send that
// is already owed to the user.
func (s *Session) spawnDetached(ctx context.Context, call ToolCall) {
	detached := context.WithoutCancel(ctx)
	s.tasks.Go(func() error {
		result := s.execute(detached, call)
		if !result.Success {
			s.emit(EventDetachedFailure, map[string]any{
				"tool":  call.Name,
				"error": result.ExcMessage,
			})
		}
		return nil
	})
}

// execute resolves and invokes a tool. Any failure, expected or not, is
// contained into a failed ToolResult; it never propagates and terminates
// the session. A returned Action is performed for the owning user under
// the same containment rule, and the result records the action's outcome
// rather than the action value.
func (s *Session) execute(ctx context.Context, call ToolCall) ToolResult {
	s.emit(EventToolCallStart, map[string]any{"tool": call.Name, "call_id": call.ID})

	tool, err := s.registry.Lookup(call.Key())
	if err != nil {
		return s.failedResult(call, err)
	}

	value, err := invoke(ctx, tool, call.Parameters)
	if err != nil {
		s.logger.Error("tool invocation failed", "tool", call.Name, "error", err)
		return s.failedResult(call, &ToolExecutionError{Tool: call.Name, Cause: err})
	}

	if action, ok := value.(Action); ok {
		if err := perform(ctx, action, s.userID); err != nil {
			s.logger.Error("tool side effect failed", "tool", call.Name, "error", err)
			return s.failedResult(call, &ToolExecutionError{Tool: call.Name, Cause: err})
		}
		s.emit(EventToolCallEnd, map[string]any{"tool": call.Name, "call_id": call.ID})
		return ToolResult{Call: call, Success: true}
	}

	s.emit(EventToolCallEnd, map[string]any{"tool": call.Name, "call_id": call.ID})
	return ToolResult{Call: call, Result: value, Success: true}
}

func (s *Session) failedResult(call ToolCall, cause error) ToolResult {
	s.emit(EventToolCallEnd, map[string]any{
		"tool":    call.Name,
		"call_id": call.ID,
		"error":   cause.Error(),
	})
	return ToolResult{Call: call, Success: false, ExcMessage: cause.Error()}
}

// invoke runs the tool implementation, converting a panic into an error.
func invoke(ctx context.Context, tool Tool, params map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return tool.Invoke(ctx, params)
}

// perform runs a side-effect action, converting a panic into an error.
func perform(ctx context.Context, action Action, userID int64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return action.Perform(ctx, userID)
}

// askUserMessage extracts the human-readable message argument from an
// ask-user call.
func askUserMessage(tool Tool, call ToolCall) string {
	if len(tool.Arguments) > 0 {
		if v, ok := call.Parameters[tool.Arguments[0].Name].(string); ok {
			return v
		}
	}
	return "message was not generated in ask_user"
}
