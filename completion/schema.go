package completion

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zhukpm/tracky/agent"
)

// DateTimeLayout is the wire format for datetime arguments. The format
// and an example are embedded in the argument description so the model
// produces parseable values.
const DateTimeLayout = "02-01-2006 15:04:05"

// dateTimeExample is rendered into datetime argument descriptions.
var dateTimeExample = time.Date(2025, 5, 30, 16, 54, 43, 0, time.UTC).Format(DateTimeLayout)

func jsonSchemaType(t agent.ArgType) (string, error) {
	switch t {
	case agent.ArgInt, agent.ArgFloat:
		return "number", nil
	case agent.ArgString:
		return "string", nil
	case agent.ArgBool:
		return "boolean", nil
	default:
		return "", fmt.Errorf("%q is not a plain JSON schema type", t)
	}
}

// schemaProperty builds the JSON-schema property for one tool argument.
// datetime arguments are encoded as strings with the expected format
// spelled out; list arguments as arrays of numbers.
func schemaProperty(arg agent.ToolArgument) (map[string]any, error) {
	switch arg.Type {
	case agent.ArgDateTime:
		return map[string]any{
			"type": "string",
			"description": arg.Description +
				"\nPass datetime as a string in the following format: " + DateTimeLayout +
				" (day-month-year hour:minute:second). Example: " + dateTimeExample,
		}, nil
	case agent.ArgList:
		return map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "number"},
			"description": arg.Description,
		}, nil
	default:
		t, err := jsonSchemaType(arg.Type)
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": t, "description": arg.Description}, nil
	}
}

// toolSchema serializes a tool's argument list into a strict JSON-schema
// object with every argument required.
func toolSchema(t agent.Tool) (map[string]any, error) {
	properties := make(map[string]any, len(t.Arguments))
	required := make([]string, 0, len(t.Arguments))
	for _, arg := range t.Arguments {
		prop, err := schemaProperty(arg)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		properties[arg.Name] = prop
		required = append(required, arg.Name)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}, nil
}

// decodeParameters coerces the backend's chosen arguments into native
// values per the tool's declared types, rejecting anything uncoercible.
func decodeParameters(t agent.Tool, raw map[string]any) (map[string]any, error) {
	params := make(map[string]any, len(t.Arguments))
	for _, arg := range t.Arguments {
		v, ok := raw[arg.Name]
		if !ok {
			return nil, fmt.Errorf("tool %s: missing argument %q", t.Name, arg.Name)
		}
		decoded, err := decodeValue(arg.Type, v)
		if err != nil {
			return nil, fmt.Errorf("tool %s, argument %q: %w", t.Name, arg.Name, err)
		}
		params[arg.Name] = decoded
	}
	return params, nil
}

func decodeValue(t agent.ArgType, v any) (any, error) {
	switch t {
	case agent.ArgInt:
		switch n := v.(type) {
		case int:
			return n, nil
		case float64:
			return int(n), nil
		case json.Number:
			i, err := n.Int64()
			if err != nil {
				return nil, fmt.Errorf("%v is not a valid int", v)
			}
			return int(i), nil
		case string:
			i, err := strconv.Atoi(strings.TrimSpace(n))
			if err != nil {
				return nil, fmt.Errorf("%q is not a valid int", n)
			}
			return i, nil
		}
		return nil, fmt.Errorf("%v is not a valid int", v)
	case agent.ArgFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("%v is not a valid float", v)
			}
			return f, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not a valid float", n)
			}
			return f, nil
		}
		return nil, fmt.Errorf("%v is not a valid float", v)
	case agent.ArgString:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	case agent.ArgBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		switch strings.ToLower(fmt.Sprint(v)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("%v is not a valid boolean", v)
	case agent.ArgDateTime:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%v is not a valid datetime string", v)
		}
		ts, err := time.Parse(DateTimeLayout, strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("%q does not match layout %s", s, DateTimeLayout)
		}
		return ts, nil
	case agent.ArgList:
		switch l := v.(type) {
		case []any:
			return l, nil
		case string:
			var out []any
			if err := json.Unmarshal([]byte(l), &out); err != nil {
				return nil, fmt.Errorf("%q is not a valid list", l)
			}
			return out, nil
		}
		return nil, fmt.Errorf("%v is not a valid list", v)
	}
	return nil, fmt.Errorf("%q is not a supported argument type", t)
}

// encodeParameters renders already-decoded parameters back to a JSON
// string for replaying a tool call in the transcript. time.Time values
// use the wire layout so the replayed call matches what the model sent.
func encodeParameters(params map[string]any) string {
	wire := make(map[string]any, len(params))
	for k, v := range params {
		if ts, ok := v.(time.Time); ok {
			wire[k] = ts.Format(DateTimeLayout)
			continue
		}
		wire[k] = v
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// resultContent stringifies a tool result for the tool-response turn:
// the result on success, the failure reason otherwise.
func resultContent(r agent.ToolResult) string {
	if r.Success {
		return fmt.Sprint(r.Result)
	}
	return r.ExcMessage
}

// findTool resolves the backend's chosen tool name within the offered
// subset. Choosing a tool outside the subset is an inference error the
// session will discard and retry.
func findTool(tools []agent.Tool, name string) (agent.Tool, error) {
	for _, t := range tools {
		if t.Name == name {
			return t, nil
		}
	}
	return agent.Tool{}, fmt.Errorf("model chose tool %q which was not offered", name)
}
