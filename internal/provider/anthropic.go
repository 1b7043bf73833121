package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/petasbytes/react-agent/memory"
	"github.com/petasbytes/react-agent/tools"
)

const DefaultAnthropicMaxTokens = 1024

// Anthropic translates the chat history onto the Messages API.
//
// Mapping:
//
//	system            -> params.System
//	user              -> user(text)
//	assistant         -> assistant(text?, tool_use...)
//	tool, tool, ...   -> one user(tool_result...)
type Anthropic struct {
	client      *anthropic.Client
	model       anthropic.Model
	maxTokens   int64
	temperature float64
}

func NewAnthropic(client *anthropic.Client, model string, maxTokens int64, temperature float64) *Anthropic {
	if maxTokens <= 0 {
		maxTokens = DefaultAnthropicMaxTokens
	}
	return &Anthropic{client: client, model: anthropic.Model(model), maxTokens: maxTokens, temperature: temperature}
}

func (a *Anthropic) Complete(ctx context.Context, history []memory.Message, defs []tools.Definition, choice ToolChoice) (memory.Message, error) {
	system, msgs := toAnthropicMessages(history)
	params := anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Messages:    msgs,
		Temperature: anthropic.Float(a.temperature),
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(defs) > 0 {
		params.Tools = toAnthropicTools(defs)
		if choice == ToolChoiceNone {
			params.ToolChoice = anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
		} else {
			params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
		}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return memory.Message{}, fmt.Errorf("anthropic messages: %w", err)
	}
	var (
		texts []string
		p     = memory.Payload{Role: string(memory.RoleAssistant)}
	)
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			texts = append(texts, v.Text)
		case anthropic.ToolUseBlock:
			args := v.JSON.Input.Raw()
			if args == "" {
				args = "{}"
			}
			p.ToolCalls = append(p.ToolCalls, memory.ToolCall{
				ID:       v.ID,
				Type:     "function",
				Function: memory.FunctionCall{Name: v.Name, Arguments: args},
			})
		}
	}
	if len(texts) > 0 || len(p.ToolCalls) == 0 {
		content := strings.Join(texts, "\n")
		p.Content = &content
	}
	return memory.FromWire(p), nil
}

func toAnthropicMessages(history []memory.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var (
		system  []anthropic.TextBlockParam
		out     []anthropic.MessageParam
		results []anthropic.ContentBlockParamUnion
	)
	flush := func() {
		if len(results) > 0 {
			out = append(out, anthropic.NewUserMessage(results...))
			results = nil
		}
	}
	for _, m := range history {
		if m.Role != memory.RoleTool {
			flush()
		}
		switch m.Role {
		case memory.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Text()})
		case memory.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text())))
		case memory.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Text() != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Text()))
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{
					ID:    tc.ID,
					Name:  tc.Function.Name,
					Input: toolInput(tc.Function.Arguments),
				}})
			}
			// The API rejects empty assistant turns.
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		case memory.RoleTool:
			results = append(results, anthropic.NewToolResultBlock(m.ToolCallID, m.Text(), false))
		}
	}
	flush()
	return system, out
}

// toolInput returns the arguments as an object; tool_use input must be one.
func toolInput(raw string) any {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return map[string]any{"input": raw}
	}
	return json.RawMessage(raw)
}

func toAnthropicTools(defs []tools.Definition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, d := range defs {
		var schema anthropic.ToolInputSchemaParam
		if p := d.Function.Parameters; p != nil {
			schema.Properties = p.Properties
			schema.Required = p.Required
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        d.Function.Name,
			Description: anthropic.String(d.Function.Description),
			InputSchema: schema,
		}})
	}
	return out
}
