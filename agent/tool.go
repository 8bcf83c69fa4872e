package agent

import (
	"context"
	"fmt"
)

// ArgType enumerates the argument types a tool may declare. Completion
// backends know how to encode each of these into their wire schema and how
// to decode the model's chosen values back into native Go values.
type ArgType string

const (
	ArgInt      ArgType = "int"
	ArgFloat    ArgType = "float"
	ArgString   ArgType = "str"
	ArgBool     ArgType = "bool"
	ArgDateTime ArgType = "datetime"
	ArgList     ArgType = "list"
)

// supportedArgTypes is the closed set accepted at registration.
var supportedArgTypes = map[ArgType]bool{
	ArgInt:      true,
	ArgFloat:    true,
	ArgString:   true,
	ArgBool:     true,
	ArgDateTime: true,
	ArgList:     true,
}

// ToolArgument describes one typed parameter of a tool.
type ToolArgument struct {
	Name        string
	Type        ArgType
	Description string
}

// ToolFunc is the implementation signature for a tool. Parameters arrive
// already coerced to native types per the declared ToolArgument set. The
// returned value is either plain data fed back to the model, or an Action
// the session performs on behalf of the user.
type ToolFunc func(ctx context.Context, params map[string]any) (any, error)

// Action is a side effect returned by a tool instead of plain data: an
// outbound message send, a memory update. The session performs it against
// its collaborator for the owning user, and the ToolResult records the
// outcome of the action rather than the action value itself.
type Action interface {
	Perform(ctx context.Context, userID int64) error
}

// DefaultScope is the scope a tool belongs to when none is declared.
const DefaultScope = "main"

// AskUserToolName designates the tool whose execution delivers a question
// to the user and pauses the session awaiting a reply.
const AskUserToolName = "ask_user"

// Tool is an immutable description of one callable operation: name, typed
// arguments, description, termination flag, scope set, and implementation.
// Identity is by name.
type Tool struct {
	Name        string
	Description string
	Arguments   []ToolArgument
	Terminating bool
	Scopes      []string

	fn ToolFunc
}

// ToolOption configures optional Tool attributes at construction.
type ToolOption func(*Tool)

// Terminating marks the tool as ending the session's processing loop.
func Terminating() ToolOption {
	return func(t *Tool) { t.Terminating = true }
}

// Scopes sets the tool's scope set, replacing the default "main" scope.
func Scopes(scopes ...string) ToolOption {
	return func(t *Tool) { t.Scopes = scopes }
}

// NewTool validates and constructs a Tool. Every argument must carry a
// supported type and a non-empty description, the implementation must be
// non-nil, and the scope set must be non-empty. Violations fail with
// InvalidToolError and nothing is registered.
func NewTool(name, description string, args []ToolArgument, fn ToolFunc, opts ...ToolOption) (Tool, error) {
	t := Tool{
		Name:        name,
		Arguments:   args,
		Scopes:      []string{DefaultScope},
		fn:          fn,
	}
	for _, opt := range opts {
		opt(&t)
	}

	if name == "" {
		return Tool{}, &InvalidToolError{Tool: name, Reason: "name must not be empty"}
	}
	if fn == nil {
		return Tool{}, &InvalidToolError{Tool: name, Reason: "implementation must not be nil"}
	}
	if len(t.Scopes) == 0 {
		return Tool{}, &InvalidToolError{Tool: name, Reason: "at least one scope must be declared"}
	}
	for _, arg := range args {
		if !supportedArgTypes[arg.Type] {
			return Tool{}, &InvalidToolError{
				Tool:   name,
				Reason: fmt.Sprintf("argument %q has unsupported type %q", arg.Name, arg.Type),
			}
		}
		if arg.Description == "" {
			return Tool{}, &InvalidToolError{
				Tool:   name,
				Reason: fmt.Sprintf("argument %q has no description", arg.Name),
			}
		}
	}

	t.Description = description + fmt.Sprintf("\nTerminating: %v.", t.Terminating)
	return t, nil
}

// Invoke runs the tool's implementation with already-coerced parameters.
func (t Tool) Invoke(ctx context.Context, params map[string]any) (any, error) {
	return t.fn(ctx, params)
}

// IsAskUser reports whether this is the designated ask-user tool.
func (t Tool) IsAskUser() bool {
	return t.Name == AskUserToolName
}

// ToolCall is one proposed tool invocation produced by the Agent. ID
// correlates the call to a specific completion-service exchange.
type ToolCall struct {
	Name       string
	ID         string
	Parameters map[string]any
}

// Key returns the canonical registry key for the called tool.
func (c ToolCall) Key() string { return c.Name }

// ToolResult records the outcome of exactly one executed ToolCall. A
// failed result carries a human-readable reason in ExcMessage, never the
// raw invocation value.
type ToolResult struct {
	Call       ToolCall
	Result     any
	Success    bool
	ExcMessage string
}

// Key returns the canonical registry key for the originating tool.
func (r ToolResult) Key() string { return r.Call.Name }
