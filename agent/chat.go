package agent

import "sync"

// Role identifies who produced a text entry in the transcript.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// EntryKind discriminates between transcript entry types.
type EntryKind string

const (
	EntryText       EntryKind = "text"
	EntryToolCall   EntryKind = "tool_call"
	EntryToolResult EntryKind = "tool_result"
)

// TextMessage is a plain text turn from the user or the agent.
type TextMessage struct {
	Role    Role
	Content string
}

// Entry is a single transcript entry: a text message, a tool call, or a
// tool result. Exactly one of the pointer fields is set, matching Kind.
type Entry struct {
	Kind   EntryKind
	Text   *TextMessage
	Call   *ToolCall
	Result *ToolResult
}

// Chat is the ordered, append-only conversation transcript consumed by
// the completion backend. Consecutive same-role text is coalesced into a
// single entry so a burst of short user messages reads as one turn.
type Chat struct {
	mu      sync.Mutex
	entries []Entry
}

// NewChat creates an empty transcript.
func NewChat() *Chat {
	return &Chat{}
}

// AppendUserText appends user text, concatenating with a newline when the
// last entry is also user text.
func (c *Chat) AppendUserText(text string) {
	c.appendText(RoleUser, text)
}

// AppendAgentText appends assistant text with the same coalescing rule.
func (c *Chat) AppendAgentText(text string) {
	c.appendText(RoleAssistant, text)
}

func (c *Chat) appendText(role Role, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.entries); n > 0 {
		last := c.entries[n-1]
		if last.Kind == EntryText && last.Text.Role == role {
			last.Text.Content += "\n" + text
			return
		}
	}
	c.entries = append(c.entries, Entry{Kind: EntryText, Text: &TextMessage{Role: role, Content: text}})
}

// AppendToolCall appends a tool call as a new entry, never coalesced.
func (c *Chat) AppendToolCall(call ToolCall) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{Kind: EntryToolCall, Call: &call})
}

// AppendToolResult appends a tool result as a new entry, never coalesced.
func (c *Chat) AppendToolResult(result ToolResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{Kind: EntryToolResult, Result: &result})
}

// Entries returns a copy of the transcript, oldest first. Iterating the
// copy does not consume or observe later appends. Text messages are
// copied by value because a later append may coalesce into the last one.
func (c *Chat) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		if e.Kind == EntryText {
			text := *e.Text
			e.Text = &text
		}
		out[i] = e
	}
	return out
}

// Len returns the number of transcript entries.
func (c *Chat) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
