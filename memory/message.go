package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Role is the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Valid reports whether r is one of the four chat roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// ToolCall is a tool invocation requested by the assistant.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the tool name and its raw JSON argument string.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry of the conversation history.
//
// Content is a pointer so that "absent" (an assistant turn carrying only
// tool calls) is distinct from the empty string.
type Message struct {
	Role       Role
	Content    *string
	Name       string
	ToolCallID string
	ToolCalls  []ToolCall
}

// Payload is the message object as returned by a completion endpoint.
type Payload struct {
	Role       string     `json:"role,omitempty"`
	Content    *string    `json:"content,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

func System(text string) Message { return Message{Role: RoleSystem, Content: &text} }

func User(text string) Message { return Message{Role: RoleUser, Content: &text} }

func Assistant(text string) Message { return Message{Role: RoleAssistant, Content: &text} }

// Text returns the content, or "" when the message has none.
func (m Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

// HasToolCalls reports whether the message requests any tool execution.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// ToWire returns the minimal wire object: role always, every other field
// only when set. Some endpoints reject explicit nulls on certain roles.
func (m Message) ToWire() map[string]any {
	out := map[string]any{"role": string(m.Role)}
	if m.Content != nil {
		out["content"] = *m.Content
	}
	if m.Name != "" {
		out["name"] = m.Name
	}
	if m.ToolCallID != "" {
		out["tool_call_id"] = m.ToolCallID
	}
	if len(m.ToolCalls) > 0 {
		out["tool_calls"] = m.ToolCalls
	}
	return out
}

// FromWire builds a Message from an endpoint payload. A missing or
// unrecognised role means the endpoint is answering, so it becomes assistant.
func FromWire(p Payload) Message {
	role := Role(p.Role)
	if !role.Valid() {
		role = RoleAssistant
	}
	var calls []ToolCall
	if len(p.ToolCalls) > 0 {
		calls = make([]ToolCall, len(p.ToolCalls))
		copy(calls, p.ToolCalls)
	}
	return Message{
		Role:       role,
		Content:    p.Content,
		Name:       p.Name,
		ToolCallID: p.ToolCallID,
		ToolCalls:  calls,
	}
}

func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToWire())
}

func (m *Message) UnmarshalJSON(b []byte) error {
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*m = FromWire(p)
	return nil
}

// FormatToolResult wraps a tool outcome as a role=tool message answering
// toolCallID. Strings pass through verbatim; anything else is rendered as
// compact JSON.
func FormatToolResult(toolName, toolCallID string, result any) Message {
	var content string
	switch v := result.(type) {
	case string:
		content = v
	default:
		content = compactJSON(v)
	}
	return Message{
		Role:       RoleTool,
		Name:       toolName,
		ToolCallID: toolCallID,
		Content:    &content,
	}
}

func compactJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
