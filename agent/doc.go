// Package agent implements the tool-calling agent runtime at the heart of
// tracky: a typed tool catalog, a per-user conversation transcript, and a
// session state machine that turns free-text user messages into executed
// tool calls.
//
// The package is organized around these core concepts:
//
//   - Tool / Registry: validated, scope-partitioned catalog of callable
//     operations offered to the language model.
//   - Chat: ordered transcript of user text, agent text, tool calls and
//     tool results, with deterministic coalescing of consecutive
//     same-role text.
//   - Agent: binds a system prompt, a tool subset and a CompletionService;
//     produces one ToolCall decision per turn.
//   - Session / Manager: per-user state machine that buffers incoming
//     text, discards stale decisions, executes resolved tools and decides
//     when the turn ends.
//   - TaskGroup / EventEmitter: supervision for detached work and the
//     event stream the host uses to observe sessions.
//
// # Quick Start
//
//	reg := agent.NewRegistry()
//	// register tools...
//	mgr := agent.NewManager(agent.ManagerConfig{
//	    Registry: reg,
//	    NewAgent: buildAgent,
//	    Logger:   logger,
//	})
//	defer mgr.Close()
//
//	mgr.Dispatch(ctx, userID, "add 20 to food")
package agent
