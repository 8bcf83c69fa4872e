package completion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/zhukpm/tracky/agent"
)

// OpenAI is the reference CompletionService backend, speaking the Chat
// Completions API with strict function schemas, a forced single tool
// choice and deterministic decoding (temperature 0, fixed seed).
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI constructs the OpenAI backend from config.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai backend requires an API key")
	}
	options := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(options...)
	return &OpenAI{client: &client, model: cfg.Model}, nil
}

// InferToolCall requests exactly one tool invocation for the transcript
// and decodes its arguments into native types.
func (o *OpenAI) InferToolCall(ctx context.Context, systemPrompt string, chat *agent.Chat, tools []agent.Tool) (agent.ToolCall, error) {
	openaiTools, err := convertToolsToOpenAI(tools)
	if err != nil {
		return agent.ToolCall{}, err
	}

	params := openai.ChatCompletionNewParams{
		Model:             openai.ChatModel(o.model),
		Messages:          convertChatToOpenAI(systemPrompt, chat),
		Tools:             openaiTools,
		Temperature:       openai.Float(0),
		Seed:              openai.Int(Seed),
		ParallelToolCalls: openai.Bool(false),
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("required"),
		},
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return agent.ToolCall{}, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return agent.ToolCall{}, fmt.Errorf("openai returned no choices")
	}
	calls := resp.Choices[0].Message.ToolCalls
	if len(calls) == 0 {
		return agent.ToolCall{}, fmt.Errorf("openai returned no tool call")
	}

	chosen := calls[0]
	tool, err := findTool(tools, chosen.Function.Name)
	if err != nil {
		return agent.ToolCall{}, err
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(chosen.Function.Arguments), &raw); err != nil {
		return agent.ToolCall{}, fmt.Errorf("unmarshal tool call arguments: %w", err)
	}
	params2, err := decodeParameters(tool, raw)
	if err != nil {
		return agent.ToolCall{}, err
	}

	return agent.ToolCall{Name: tool.Name, ID: chosen.ID, Parameters: params2}, nil
}

// convertChatToOpenAI maps the transcript into Chat Completions turns:
// text entries to role/content messages, tool calls to assistant-issued
// invocations, tool results to tool messages keyed by the call id.
func convertChatToOpenAI(systemPrompt string, chat *agent.Chat) []openai.ChatCompletionMessageParamUnion {
	messages := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(systemPrompt)}
	for _, entry := range chat.Entries() {
		switch entry.Kind {
		case agent.EntryText:
			if entry.Text.Role == agent.RoleUser {
				messages = append(messages, openai.UserMessage(entry.Text.Content))
			} else {
				messages = append(messages, openai.AssistantMessage(entry.Text.Content))
			}
		case agent.EntryToolCall:
			call := *entry.Call
			assistant := openai.ChatCompletionMessage{
				Role: "assistant",
				ToolCalls: []openai.ChatCompletionMessageToolCallUnion{{
					ID:   call.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageFunctionToolCallFunction{
						Name:      call.Name,
						Arguments: encodeParameters(call.Parameters),
					},
				}},
			}
			messages = append(messages, assistant.ToParam())
		case agent.EntryToolResult:
			result := *entry.Result
			messages = append(messages, openai.ToolMessage(resultContent(result), result.Call.ID))
		}
	}
	return messages
}

func convertToolsToOpenAI(tools []agent.Tool) ([]openai.ChatCompletionToolUnionParam, error) {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema, err := toolSchema(t)
		if err != nil {
			return nil, err
		}
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  openai.FunctionParameters(schema),
			Strict:      openai.Bool(true),
		}))
	}
	return out, nil
}
