package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCoalescesSameRoleText(t *testing.T) {
	chat := NewChat()
	chat.AppendUserText("first")
	chat.AppendUserText("second")

	entries := chat.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, EntryText, entries[0].Kind)
	assert.Equal(t, RoleUser, entries[0].Text.Role)
	assert.Equal(t, "first\nsecond", entries[0].Text.Content)
}

func TestChatRoleChangeStartsNewEntry(t *testing.T) {
	chat := NewChat()
	chat.AppendUserText("question")
	chat.AppendAgentText("answer")
	chat.AppendUserText("follow-up")
	chat.AppendAgentText("again")
	chat.AppendAgentText("and again")

	entries := chat.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "question", entries[0].Text.Content)
	assert.Equal(t, "answer", entries[1].Text.Content)
	assert.Equal(t, "follow-up", entries[2].Text.Content)
	assert.Equal(t, "again\nand again", entries[3].Text.Content)
}

func TestChatToolEntriesNeverCoalesce(t *testing.T) {
	chat := NewChat()
	chat.AppendUserText("spent 5 eur on coffee")
	chat.AppendToolCall(ToolCall{Name: "list_categories", ID: "call_1"})
	chat.AppendToolResult(ToolResult{Call: ToolCall{Name: "list_categories", ID: "call_1"}, Result: "ok", Success: true})
	chat.AppendToolCall(ToolCall{Name: "list_categories", ID: "call_2"})

	entries := chat.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, EntryToolCall, entries[1].Kind)
	assert.Equal(t, EntryToolResult, entries[2].Kind)
	assert.Equal(t, EntryToolCall, entries[3].Kind)

	// Text after a tool entry starts a fresh text entry.
	chat.AppendUserText("yes")
	assert.Equal(t, 5, chat.Len())
}

func TestChatEntriesIsACopy(t *testing.T) {
	chat := NewChat()
	chat.AppendUserText("one")
	entries := chat.Entries()
	chat.AppendAgentText("two")
	assert.Len(t, entries, 1)
	assert.Equal(t, 2, chat.Len())
}

func TestChatEntriesSnapshotUnaffectedByCoalescing(t *testing.T) {
	chat := NewChat()
	chat.AppendUserText("first")
	entries := chat.Entries()

	// Coalescing into the last text entry must not mutate the snapshot.
	chat.AppendUserText("second")
	assert.Equal(t, "first", entries[0].Text.Content)
	assert.Equal(t, "first\nsecond", chat.Entries()[0].Text.Content)
}
