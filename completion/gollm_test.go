package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitGollmModel(t *testing.T) {
	provider, model := splitGollmModel("anthropic/claude-sonnet-4-5")
	assert.Equal(t, "anthropic", provider)
	assert.Equal(t, "claude-sonnet-4-5", model)

	provider, model = splitGollmModel("gpt-4o")
	assert.Equal(t, "openai", provider)
	assert.Equal(t, "gpt-4o", model)
}

func TestParseGollmToolCallArray(t *testing.T) {
	name, args, err := parseGollmToolCall(`[{"name": "add_expense", "arguments": {"amount": 3.5}}]`)
	require.NoError(t, err)
	assert.Equal(t, "add_expense", name)
	assert.Equal(t, map[string]any{"amount": 3.5}, args)
}

func TestParseGollmToolCallSingleObject(t *testing.T) {
	name, args, err := parseGollmToolCall(`{"name": "finish", "arguments": {}}`)
	require.NoError(t, err)
	assert.Equal(t, "finish", name)
	assert.Empty(t, args)
}

func TestParseGollmToolCallWithLeadingText(t *testing.T) {
	name, _, err := parseGollmToolCall("Sure, recording that now.\n" + `[{"name": "list_categories", "arguments": {}}]`)
	require.NoError(t, err)
	assert.Equal(t, "list_categories", name)
}

func TestParseGollmToolCallNoCall(t *testing.T) {
	_, _, err := parseGollmToolCall("just some prose")
	require.ErrorContains(t, err, "no tool call")
}
