package tools

import (
	"context"

	"github.com/zhukpm/tracky/agent"
)

func newFinish(Deps) (agent.Tool, error) {
	return agent.NewTool(
		"finish",
		"Finish the current session without doing anything else.",
		nil,
		func(ctx context.Context, params map[string]any) (any, error) {
			return nil, nil
		},
		agent.Terminating(),
		agent.Scopes("memory"),
	)
}

func newAskUser(deps Deps) (agent.Tool, error) {
	return agent.NewTool(
		agent.AskUserToolName,
		"Ask the user with a message, and await for their reply to continue the current session. "+
			"It is used to ask for clarifications or additional information from the user "+
			"if their request cannot be completed.",
		[]agent.ToolArgument{
			{Name: "message", Type: agent.ArgString, Description: "A text message (usually a question) to be sent to the user in chat"},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			message, err := argString(params, "message")
			if err != nil {
				return nil, err
			}
			return sendText{hub: deps.Hub, text: message}, nil
		},
	)
}

func newFinishSessionWithReply(deps Deps) (agent.Tool, error) {
	return agent.NewTool(
		"finish_session_with_reply",
		"Send a message to the user, and finish the current session. "+
			"It is used when other tools are not applicable, or the user intent is unrelated to system features. "+
			"For example, when a user asks about system capabilities, or asks general questions.",
		[]agent.ToolArgument{
			{Name: "message", Type: agent.ArgString, Description: "A final text message to be sent to the user in chat"},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			message, err := argString(params, "message")
			if err != nil {
				return nil, err
			}
			return sendText{hub: deps.Hub, text: message}, nil
		},
		agent.Terminating(),
	)
}
