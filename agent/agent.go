package agent

import "context"

// CompletionService turns (system prompt, transcript, available tools)
// into exactly one proposed tool invocation. Backends are responsible for
// serializing the tool catalog into their wire schema and for decoding
// the chosen arguments back into native types per the ArgType set.
type CompletionService interface {
	InferToolCall(ctx context.Context, systemPrompt string, chat *Chat, tools []Tool) (ToolCall, error)
}

// Agent binds a fixed system prompt, a tool subset, and a
// CompletionService. It is stateless beyond this configuration; one Agent
// belongs to exactly one Session.
type Agent struct {
	systemPrompt string
	tools        []Tool
	svc          CompletionService
}

// NewAgent creates an Agent over the given tool subset.
func NewAgent(systemPrompt string, tools []Tool, svc CompletionService) *Agent {
	return &Agent{
		systemPrompt: systemPrompt,
		tools:        tools,
		svc:          svc,
	}
}

// Decide asks the completion service for the next tool invocation given
// the transcript.
func (a *Agent) Decide(ctx context.Context, chat *Chat) (ToolCall, error) {
	return a.svc.InferToolCall(ctx, a.systemPrompt, chat, a.tools)
}

// Tools returns the agent's bound tool subset.
func (a *Agent) Tools() []Tool {
	return a.tools
}
