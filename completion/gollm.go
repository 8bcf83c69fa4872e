package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/teilomillet/gollm"

	"github.com/zhukpm/tracky/agent"
)

// Gollm is the provider-agnostic backend. It flattens the transcript into
// a single annotated prompt, forwards the tool catalog through gollm's
// tool support, and parses the single tool call back out of the generated
// text. The wrapped provider is named in Config.Model as "provider/model"
// (defaulting to openai when no provider prefix is given).
type Gollm struct {
	llm   gollm.LLM
	model string
}

// NewGollm constructs the gollm backend from config.
func NewGollm(cfg Config) (*Gollm, error) {
	provider, model := splitGollmModel(cfg.Model)

	opts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetModel(model),
		gollm.SetTemperature(0),
		gollm.SetSeed(Seed),
		gollm.SetMaxRetries(0),
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if cfg.APIKey != "" {
		opts = append(opts, gollm.SetAPIKey(cfg.APIKey))
	}

	llm, err := gollm.NewLLM(opts...)
	if err != nil {
		return nil, fmt.Errorf("create gollm backend for provider %s: %w", provider, err)
	}
	return &Gollm{llm: llm, model: model}, nil
}

func splitGollmModel(ref string) (provider, model string) {
	if before, after, ok := strings.Cut(ref, "/"); ok {
		return before, after
	}
	return "openai", ref
}

// InferToolCall requests exactly one tool invocation for the transcript
// and decodes its arguments into native types.
func (g *Gollm) InferToolCall(ctx context.Context, systemPrompt string, chat *agent.Chat, tools []agent.Tool) (agent.ToolCall, error) {
	gollmTools, err := convertToolsToGollm(tools)
	if err != nil {
		return agent.ToolCall{}, err
	}

	prompt := gollm.NewPrompt(flattenChat(chat),
		gollm.WithSystemPrompt(systemPrompt, gollm.CacheTypeEphemeral),
		gollm.WithTools(gollmTools),
		gollm.WithToolChoice("required"),
	)

	text, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return agent.ToolCall{}, fmt.Errorf("gollm completion failed: %w", err)
	}

	name, raw, err := parseGollmToolCall(text)
	if err != nil {
		return agent.ToolCall{}, err
	}
	tool, err := findTool(tools, name)
	if err != nil {
		return agent.ToolCall{}, err
	}
	params, err := decodeParameters(tool, raw)
	if err != nil {
		return agent.ToolCall{}, err
	}

	return agent.ToolCall{
		Name:       tool.Name,
		ID:         "call_" + uuid.New().String()[:8],
		Parameters: params,
	}, nil
}

// flattenChat renders the transcript as a single annotated prompt, since
// gollm takes one prompt string rather than structured turns.
func flattenChat(chat *agent.Chat) string {
	var parts []string
	for _, entry := range chat.Entries() {
		switch entry.Kind {
		case agent.EntryText:
			if entry.Text.Role == agent.RoleUser {
				parts = append(parts, "[User]: "+entry.Text.Content)
			} else {
				parts = append(parts, "[Assistant]: "+entry.Text.Content)
			}
		case agent.EntryToolCall:
			call := *entry.Call
			parts = append(parts, fmt.Sprintf("[Tool Call %s]: %s", call.Name, encodeParameters(call.Parameters)))
		case agent.EntryToolResult:
			result := *entry.Result
			prefix := "[Tool Result]"
			if !result.Success {
				prefix = "[Tool Error]"
			}
			parts = append(parts, prefix+": "+resultContent(result))
		}
	}
	return strings.Join(parts, "\n")
}

func convertToolsToGollm(tools []agent.Tool) ([]gollm.Tool, error) {
	out := make([]gollm.Tool, 0, len(tools))
	for _, t := range tools {
		schema, err := toolSchema(t)
		if err != nil {
			return nil, err
		}
		out = append(out, gollm.Tool{
			Type: "function",
			Function: gollm.Function{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  schema,
			},
		})
	}
	return out, nil
}

// parseGollmToolCall extracts one function call from generated text.
// Providers behind gollm return tool calls as a JSON array of
// {"name": ..., "arguments": {...}} objects embedded in the text.
func parseGollmToolCall(text string) (string, map[string]any, error) {
	start := strings.Index(text, `[{"name"`)
	if start == -1 {
		if idx := strings.Index(text, `{"name"`); idx != -1 {
			start = idx
		}
	}
	if start == -1 {
		return "", nil, fmt.Errorf("gollm response carries no tool call: %q", text)
	}

	payload := strings.TrimSpace(text[start:])
	type rawCall struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}

	var calls []rawCall
	if err := json.Unmarshal([]byte(payload), &calls); err != nil {
		var single rawCall
		if err := json.Unmarshal([]byte(payload), &single); err != nil {
			return "", nil, fmt.Errorf("parse gollm tool call: %w", err)
		}
		calls = []rawCall{single}
	}
	if len(calls) == 0 {
		return "", nil, fmt.Errorf("gollm response carries no tool call: %q", text)
	}

	args := calls[0].Arguments
	if args == nil {
		args = map[string]any{}
	}
	return calls[0].Name, args, nil
}
