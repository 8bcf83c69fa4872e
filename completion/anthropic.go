package completion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/zhukpm/tracky/agent"
)

const anthropicMaxTokens = 4096

// Anthropic is the Messages-API backend. Tool choice is forced to "any"
// with parallel tool use disabled, so every response carries exactly one
// tool_use block.
type Anthropic struct {
	client *anthropic.Client
	model  string
}

// NewAnthropic constructs the Anthropic backend from config.
func NewAnthropic(cfg Config) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic backend requires an API key")
	}
	options := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(options...)
	return &Anthropic{client: &client, model: cfg.Model}, nil
}

// InferToolCall requests exactly one tool invocation for the transcript
// and decodes its arguments into native types.
func (a *Anthropic) InferToolCall(ctx context.Context, systemPrompt string, chat *agent.Chat, tools []agent.Tool) (agent.ToolCall, error) {
	anthropicTools, err := convertToolsToAnthropic(tools)
	if err != nil {
		return agent.ToolCall{}, err
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(0),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    convertChatToAnthropic(chat),
		Tools:       anthropicTools,
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfAny: &anthropic.ToolChoiceAnyParam{
				DisableParallelToolUse: anthropic.Bool(true),
			},
		},
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return agent.ToolCall{}, fmt.Errorf("anthropic completion failed: %w", err)
	}

	for _, block := range resp.Content {
		use, ok := block.AsAny().(anthropic.ToolUseBlock)
		if !ok {
			continue
		}
		tool, err := findTool(tools, use.Name)
		if err != nil {
			return agent.ToolCall{}, err
		}
		var raw map[string]any
		if err := json.Unmarshal(use.Input, &raw); err != nil {
			return agent.ToolCall{}, fmt.Errorf("unmarshal tool use input: %w", err)
		}
		params2, err := decodeParameters(tool, raw)
		if err != nil {
			return agent.ToolCall{}, err
		}
		return agent.ToolCall{Name: tool.Name, ID: use.ID, Parameters: params2}, nil
	}
	return agent.ToolCall{}, fmt.Errorf("anthropic returned no tool use block")
}

// convertChatToAnthropic maps the transcript into Messages-API turns.
// Tool results become tool_result blocks inside a user turn, keyed by the
// originating tool_use id.
func convertChatToAnthropic(chat *agent.Chat) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	for _, entry := range chat.Entries() {
		switch entry.Kind {
		case agent.EntryText:
			if entry.Text.Role == agent.RoleUser {
				messages = append(messages, anthropic.NewUserMessage(
					anthropic.NewTextBlock(entry.Text.Content),
				))
			} else {
				messages = append(messages, anthropic.NewAssistantMessage(
					anthropic.NewTextBlock(entry.Text.Content),
				))
			}
		case agent.EntryToolCall:
			call := *entry.Call
			messages = append(messages, anthropic.MessageParam{
				Role: anthropic.MessageParamRoleAssistant,
				Content: []anthropic.ContentBlockParamUnion{{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    call.ID,
						Name:  call.Name,
						Input: json.RawMessage(encodeParameters(call.Parameters)),
					},
				}},
			})
		case agent.EntryToolResult:
			result := *entry.Result
			messages = append(messages, anthropic.MessageParam{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{{
					OfToolResult: &anthropic.ToolResultBlockParam{
						ToolUseID: result.Call.ID,
						IsError:   anthropic.Bool(!result.Success),
						Content: []anthropic.ToolResultBlockParamContentUnion{{
							OfText: &anthropic.TextBlockParam{Text: resultContent(result)},
						}},
					},
				}},
			})
		}
	}
	return messages
}

func convertToolsToAnthropic(tools []agent.Tool) ([]anthropic.ToolUnionParam, error) {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema, err := toolSchema(t)
		if err != nil {
			return nil, err
		}
		required, _ := schema["required"].([]string)
		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: schema["properties"],
					Required:   required,
				},
			},
		})
	}
	return out, nil
}
