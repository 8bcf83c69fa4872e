package agent

import "fmt"

// InvalidToolError reports a registration-time contract violation: an
// unsupported argument type, a missing description, a nil implementation,
// or an empty scope set. It is always fatal to that registration.
type InvalidToolError struct {
	Tool   string
	Reason string
}

func (e *InvalidToolError) Error() string {
	return fmt.Sprintf("invalid tool %q: %s", e.Tool, e.Reason)
}

// DuplicateToolError reports a name collision at registration time.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}

// NotFoundError reports a lookup of an unknown tool or scope.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no registered tool or scope %q", e.Key)
}

// SessionClosedError reports an attempt to buffer user input against a
// terminated session.
type SessionClosedError struct {
	UserID int64
}

func (e *SessionClosedError) Error() string {
	return fmt.Sprintf("session for user %d is terminated", e.UserID)
}

// ToolExecutionError wraps a failure raised while invoking a tool's
// implementation or performing its side effect. It is always contained
// into a failed ToolResult, never propagated out of the session.
type ToolExecutionError struct {
	Tool  string
	Cause error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Cause)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Cause
}
