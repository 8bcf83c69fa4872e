package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopToolFunc(ctx context.Context, params map[string]any) (any, error) {
	return nil, nil
}

func TestNewToolDefaults(t *testing.T) {
	tool, err := NewTool("echo", "Echoes.", []ToolArgument{
		{Name: "text", Type: ArgString, Description: "text to echo"},
	}, nopToolFunc)
	require.NoError(t, err)

	assert.Equal(t, "echo", tool.Name)
	assert.False(t, tool.Terminating)
	assert.Equal(t, []string{DefaultScope}, tool.Scopes)
	assert.Equal(t, "Echoes.\nTerminating: false.", tool.Description)
}

func TestNewToolOptions(t *testing.T) {
	tool, err := NewTool("finish", "Finishes.", nil, nopToolFunc,
		Terminating(), Scopes("memory"))
	require.NoError(t, err)

	assert.True(t, tool.Terminating)
	assert.Equal(t, []string{"memory"}, tool.Scopes)
	assert.Equal(t, "Finishes.\nTerminating: true.", tool.Description)
}

func TestNewToolValidation(t *testing.T) {
	var invalidErr *InvalidToolError

	_, err := NewTool("", "x", nil, nopToolFunc)
	require.ErrorAs(t, err, &invalidErr)

	_, err = NewTool("x", "x", nil, nil)
	require.ErrorAs(t, err, &invalidErr)

	_, err = NewTool("x", "x", nil, nopToolFunc, Scopes())
	require.ErrorAs(t, err, &invalidErr)

	_, err = NewTool("x", "x", []ToolArgument{
		{Name: "a", Type: ArgType("complex128"), Description: "d"},
	}, nopToolFunc)
	require.ErrorAs(t, err, &invalidErr)

	_, err = NewTool("x", "x", []ToolArgument{
		{Name: "a", Type: ArgInt, Description: ""},
	}, nopToolFunc)
	require.ErrorAs(t, err, &invalidErr)
}

func TestToolIsAskUser(t *testing.T) {
	ask, err := NewTool(AskUserToolName, "Asks.", []ToolArgument{
		{Name: "message", Type: ArgString, Description: "m"},
	}, nopToolFunc)
	require.NoError(t, err)
	assert.True(t, ask.IsAskUser())

	other, err := NewTool("other", "Other.", nil, nopToolFunc)
	require.NoError(t, err)
	assert.False(t, other.IsAskUser())
}

func TestToolCallKey(t *testing.T) {
	call := ToolCall{Name: "add_expense", ID: "call_1"}
	assert.Equal(t, "add_expense", call.Key())
	assert.Equal(t, "add_expense", ToolResult{Call: call}.Key())
}
