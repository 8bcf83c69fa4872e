package completion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukpm/tracky/agent"
)

func nopToolFunc(ctx context.Context, params map[string]any) (any, error) {
	return nil, nil
}

func testTool(t *testing.T, args ...agent.ToolArgument) agent.Tool {
	t.Helper()
	tool, err := agent.NewTool("test_tool", "Does test things.", args, nopToolFunc)
	require.NoError(t, err)
	return tool
}

func TestToolSchemaPlainTypes(t *testing.T) {
	tool := testTool(t,
		agent.ToolArgument{Name: "id", Type: agent.ArgInt, Description: "an id"},
		agent.ToolArgument{Name: "amount", Type: agent.ArgFloat, Description: "an amount"},
		agent.ToolArgument{Name: "name", Type: agent.ArgString, Description: "a name"},
		agent.ToolArgument{Name: "flag", Type: agent.ArgBool, Description: "a flag"},
	)

	schema, err := toolSchema(tool)
	require.NoError(t, err)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, false, schema["additionalProperties"])
	assert.ElementsMatch(t, []string{"id", "amount", "name", "flag"}, schema["required"])

	props := schema["properties"].(map[string]any)
	assert.Equal(t, "number", props["id"].(map[string]any)["type"])
	assert.Equal(t, "number", props["amount"].(map[string]any)["type"])
	assert.Equal(t, "string", props["name"].(map[string]any)["type"])
	assert.Equal(t, "boolean", props["flag"].(map[string]any)["type"])
}

func TestToolSchemaDateTime(t *testing.T) {
	tool := testTool(t,
		agent.ToolArgument{Name: "date", Type: agent.ArgDateTime, Description: "when"},
	)
	schema, err := toolSchema(tool)
	require.NoError(t, err)

	prop := schema["properties"].(map[string]any)["date"].(map[string]any)
	assert.Equal(t, "string", prop["type"])
	assert.Contains(t, prop["description"], DateTimeLayout)
	assert.Contains(t, prop["description"], "30-05-2025 16:54:43")
}

func TestToolSchemaList(t *testing.T) {
	tool := testTool(t,
		agent.ToolArgument{Name: "ids", Type: agent.ArgList, Description: "which"},
	)
	schema, err := toolSchema(tool)
	require.NoError(t, err)

	prop := schema["properties"].(map[string]any)["ids"].(map[string]any)
	assert.Equal(t, "array", prop["type"])
	assert.Equal(t, map[string]any{"type": "number"}, prop["items"])
}

func TestDecodeParameters(t *testing.T) {
	tool := testTool(t,
		agent.ToolArgument{Name: "id", Type: agent.ArgInt, Description: "an id"},
		agent.ToolArgument{Name: "amount", Type: agent.ArgFloat, Description: "an amount"},
		agent.ToolArgument{Name: "name", Type: agent.ArgString, Description: "a name"},
		agent.ToolArgument{Name: "flag", Type: agent.ArgBool, Description: "a flag"},
		agent.ToolArgument{Name: "date", Type: agent.ArgDateTime, Description: "when"},
		agent.ToolArgument{Name: "ids", Type: agent.ArgList, Description: "which"},
	)

	params, err := decodeParameters(tool, map[string]any{
		"id":     float64(12),
		"amount": float64(3.5),
		"name":   "coffee",
		"flag":   true,
		"date":   "30-05-2025 16:54:43",
		"ids":    []any{float64(1), float64(2)},
	})
	require.NoError(t, err)

	assert.Equal(t, 12, params["id"])
	assert.Equal(t, 3.5, params["amount"])
	assert.Equal(t, "coffee", params["name"])
	assert.Equal(t, true, params["flag"])
	assert.Equal(t, time.Date(2025, 5, 30, 16, 54, 43, 0, time.UTC), params["date"])
	assert.Equal(t, []any{float64(1), float64(2)}, params["ids"])
}

func TestDecodeParametersStringCoercion(t *testing.T) {
	tool := testTool(t,
		agent.ToolArgument{Name: "id", Type: agent.ArgInt, Description: "an id"},
		agent.ToolArgument{Name: "amount", Type: agent.ArgFloat, Description: "an amount"},
		agent.ToolArgument{Name: "flag", Type: agent.ArgBool, Description: "a flag"},
		agent.ToolArgument{Name: "ids", Type: agent.ArgList, Description: "which"},
	)

	params, err := decodeParameters(tool, map[string]any{
		"id":     " 42 ",
		"amount": "3.25",
		"flag":   "True",
		"ids":    "[1, 2, 3]",
	})
	require.NoError(t, err)

	assert.Equal(t, 42, params["id"])
	assert.Equal(t, 3.25, params["amount"])
	assert.Equal(t, true, params["flag"])
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, params["ids"])
}

func TestDecodeParametersRejects(t *testing.T) {
	intTool := testTool(t, agent.ToolArgument{Name: "id", Type: agent.ArgInt, Description: "an id"})

	_, err := decodeParameters(intTool, map[string]any{})
	require.ErrorContains(t, err, "missing argument")

	_, err = decodeParameters(intTool, map[string]any{"id": "twelve"})
	require.ErrorContains(t, err, "not a valid int")

	dateTool := testTool(t, agent.ToolArgument{Name: "date", Type: agent.ArgDateTime, Description: "when"})
	_, err = decodeParameters(dateTool, map[string]any{"date": "2025-05-30T16:54:43Z"})
	require.ErrorContains(t, err, "does not match layout")
}

func TestEncodeParametersRoundTripsDateTime(t *testing.T) {
	encoded := encodeParameters(map[string]any{
		"date":   time.Date(2025, 5, 30, 16, 54, 43, 0, time.UTC),
		"amount": 3.5,
	})
	assert.Contains(t, encoded, `"date":"30-05-2025 16:54:43"`)
	assert.Contains(t, encoded, `"amount":3.5`)
}

func TestResultContent(t *testing.T) {
	call := agent.ToolCall{Name: "probe", ID: "call_1"}
	assert.Equal(t, "42", resultContent(agent.ToolResult{Call: call, Result: 42, Success: true}))
	assert.Equal(t, "it broke", resultContent(agent.ToolResult{Call: call, Success: false, ExcMessage: "it broke"}))
}

func TestFindTool(t *testing.T) {
	tools := []agent.Tool{testTool(t)}

	tool, err := findTool(tools, "test_tool")
	require.NoError(t, err)
	assert.Equal(t, "test_tool", tool.Name)

	_, err = findTool(tools, "other")
	require.ErrorContains(t, err, "was not offered")
}
