package provider_test

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/petasbytes/react-agent/internal/config"
	"github.com/petasbytes/react-agent/internal/provider"
	"github.com/petasbytes/react-agent/memory"
)

type anthropicRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	System    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type      string          `json:"type"`
			Text      string          `json:"text,omitempty"`
			ID        string          `json:"id,omitempty"`
			Name      string          `json:"name,omitempty"`
			Input     json.RawMessage `json:"input,omitempty"`
			ToolUseID string          `json:"tool_use_id,omitempty"`
		} `json:"content"`
	} `json:"messages"`
	Tools []struct {
		Name        string `json:"name"`
		InputSchema struct {
			Type       string         `json:"type"`
			Properties map[string]any `json:"properties"`
			Required   []string       `json:"required"`
		} `json:"input_schema"`
	} `json:"tools"`
	ToolChoice struct {
		Type string `json:"type"`
	} `json:"tool_choice"`
}

const anthropicToolUse = `{
	"id": "msg_1", "type": "message", "role": "assistant", "model": "test-model",
	"content": [
		{"type": "text", "text": "Let me check."},
		{"type": "tool_use", "id": "tu_1", "name": "rag_search", "input": {"query": "go"}}
	],
	"stop_reason": "tool_use",
	"usage": {"input_tokens": 10, "output_tokens": 5}
}`

func TestAnthropic_RequestShape(t *testing.T) {
	capReq := &capture{}
	c := newCompleter(t, config.ProviderAnthropic, &fakeTransport{respStatus: 200, respBody: []byte(anthropicToolUse), captured: capReq})

	if _, err := c.Complete(context.Background(), sampleHistory(), sampleDefs(), provider.ToolChoiceAuto); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !strings.HasSuffix(capReq.url, "/messages") {
		t.Fatalf("url: %s", capReq.url)
	}

	var rb anthropicRequest
	if err := json.Unmarshal(capReq.body, &rb); err != nil {
		t.Fatalf("decode body: %v\n%s", err, capReq.body)
	}
	if rb.Model != "test-model" || rb.MaxTokens != 256 {
		t.Fatalf("model/max_tokens: %s", capReq.body)
	}
	if len(rb.System) != 1 || rb.System[0].Text != "be brief" {
		t.Fatalf("system: %s", capReq.body)
	}
	// user, assistant(tool_use x2), user(tool_result x2)
	if len(rb.Messages) != 3 {
		t.Fatalf("want 3 messages, got %d: %s", len(rb.Messages), capReq.body)
	}
	asst := rb.Messages[1]
	if asst.Role != "assistant" || len(asst.Content) != 2 || asst.Content[0].Type != "tool_use" {
		t.Fatalf("assistant turn: %s", capReq.body)
	}
	var wrapped map[string]any
	if err := json.Unmarshal(asst.Content[1].Input, &wrapped); err != nil || wrapped["input"] != "not json" {
		t.Fatalf("malformed arguments should be wrapped: %s", asst.Content[1].Input)
	}
	results := rb.Messages[2]
	if results.Role != "user" || len(results.Content) != 2 {
		t.Fatalf("tool results should be grouped in one user turn: %s", capReq.body)
	}
	if results.Content[0].Type != "tool_result" || results.Content[0].ToolUseID != "c1" || results.Content[1].ToolUseID != "c2" {
		t.Fatalf("tool results: %s", capReq.body)
	}
	if len(rb.Tools) != 2 || rb.Tools[0].Name != "rag_search" || rb.Tools[0].InputSchema.Type != "object" {
		t.Fatalf("tools: %s", capReq.body)
	}
	for _, tool := range rb.Tools {
		if _, ok := tool.InputSchema.Properties["query"]; !ok {
			t.Fatalf("%s: query property missing: %s", tool.Name, capReq.body)
		}
		if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "query" {
			t.Fatalf("%s: required should be [query], got %v", tool.Name, tool.InputSchema.Required)
		}
	}
	if rb.ToolChoice.Type != "auto" {
		t.Fatalf("tool_choice: %s", capReq.body)
	}
}

func TestAnthropic_NonObjectArgumentsWrapped(t *testing.T) {
	capReq := &capture{}
	c := newCompleter(t, config.ProviderAnthropic, &fakeTransport{respStatus: 200, respBody: []byte(anthropicToolUse), captured: capReq})
	history := []memory.Message{
		memory.User("q"),
		{Role: memory.RoleAssistant, ToolCalls: []memory.ToolCall{
			{ID: "n1", Type: "function", Function: memory.FunctionCall{Name: "rag_search", Arguments: "null"}},
			{ID: "n2", Type: "function", Function: memory.FunctionCall{Name: "rag_search", Arguments: "[1]"}},
			{ID: "n3", Type: "function", Function: memory.FunctionCall{Name: "rag_search", Arguments: ""}},
		}},
		memory.FormatToolResult("rag_search", "n1", "r1"),
		memory.FormatToolResult("rag_search", "n2", "r2"),
		memory.FormatToolResult("rag_search", "n3", "r3"),
	}
	if _, err := c.Complete(context.Background(), history, nil, provider.ToolChoiceAuto); err != nil {
		t.Fatalf("complete: %v", err)
	}
	var rb anthropicRequest
	if err := json.Unmarshal(capReq.body, &rb); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	blocks := rb.Messages[1].Content
	if len(blocks) != 3 {
		t.Fatalf("want 3 tool_use blocks: %s", capReq.body)
	}
	want := []string{`{"input":"null"}`, `{"input":"[1]"}`, `{}`}
	for i, b := range blocks {
		var got, exp any
		if err := json.Unmarshal(b.Input, &got); err != nil {
			t.Fatalf("block %d input: %v", i, err)
		}
		_ = json.Unmarshal([]byte(want[i]), &exp)
		if _, ok := got.(map[string]any); !ok || !reflect.DeepEqual(got, exp) {
			t.Fatalf("block %d: want %s, got %s", i, want[i], b.Input)
		}
	}
}

func TestAnthropic_ToolChoiceNone(t *testing.T) {
	capReq := &capture{}
	c := newCompleter(t, config.ProviderAnthropic, &fakeTransport{respStatus: 200, respBody: []byte(anthropicToolUse), captured: capReq})
	if _, err := c.Complete(context.Background(), sampleHistory(), sampleDefs(), provider.ToolChoiceNone); err != nil {
		t.Fatalf("complete: %v", err)
	}
	var rb anthropicRequest
	if err := json.Unmarshal(capReq.body, &rb); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if rb.ToolChoice.Type != "none" || len(rb.Tools) != 2 {
		t.Fatalf("want tools listed with tool_choice none: %s", capReq.body)
	}
}

func TestAnthropic_DecodesToolUse(t *testing.T) {
	c := newCompleter(t, config.ProviderAnthropic, &fakeTransport{respStatus: 200, respBody: []byte(anthropicToolUse)})
	msg, err := c.Complete(context.Background(), []memory.Message{memory.User("q")}, sampleDefs(), provider.ToolChoiceAuto)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if msg.Role != memory.RoleAssistant || msg.Text() != "Let me check." {
		t.Fatalf("message: %+v", msg)
	}
	if len(msg.ToolCalls) != 1 || msg.ToolCalls[0].ID != "tu_1" || msg.ToolCalls[0].Type != "function" {
		t.Fatalf("tool calls: %+v", msg.ToolCalls)
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(msg.ToolCalls[0].Function.Arguments), &args); err != nil || args["query"] != "go" {
		t.Fatalf("arguments: %q", msg.ToolCalls[0].Function.Arguments)
	}
}

func TestAnthropic_EmptyContentIsEmptyAnswer(t *testing.T) {
	resp := `{"id":"msg_2","type":"message","role":"assistant","model":"m","content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`
	c := newCompleter(t, config.ProviderAnthropic, &fakeTransport{respStatus: 200, respBody: []byte(resp)})
	msg, err := c.Complete(context.Background(), []memory.Message{memory.User("q")}, nil, provider.ToolChoiceNone)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if msg.HasToolCalls() || msg.Text() != "" {
		t.Fatalf("want empty answer, got %+v", msg)
	}
}

func TestAnthropic_HTTPErrorNotRetried(t *testing.T) {
	calls := 0
	rt := roundTripFunc(func() { calls++ })
	c := newCompleter(t, config.ProviderAnthropic, rt)
	_, err := c.Complete(context.Background(), []memory.Message{memory.User("q")}, nil, provider.ToolChoiceAuto)
	if err == nil || !strings.Contains(err.Error(), "anthropic messages") {
		t.Fatalf("want wrapped error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("want exactly one attempt, got %d", calls)
	}
}
