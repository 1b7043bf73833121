package provider

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/petasbytes/react-agent/memory"
	"github.com/petasbytes/react-agent/tools"
)

// OpenAI talks to any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
}

func NewOpenAI(client *openai.Client, model string, temperature float64) *OpenAI {
	return &OpenAI{client: client, model: model, temperature: float32(temperature)}
}

func (o *OpenAI) Complete(ctx context.Context, history []memory.Message, defs []tools.Definition, choice ToolChoice) (memory.Message, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    toOpenAIMessages(history),
		Temperature: o.temperature,
	}
	// tools and tool_choice are omitted together; some endpoints reject a
	// tool_choice without tools.
	if len(defs) > 0 {
		req.Tools = toOpenAITools(defs)
		req.ToolChoice = string(choice)
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return memory.Message{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return memory.Message{}, ErrNoChoices
	}
	return fromOpenAIMessage(resp.Choices[0].Message), nil
}

func toOpenAIMessages(history []memory.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		msg := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Text(),
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func toOpenAITools(defs []tools.Definition) []openai.Tool {
	out := make([]openai.Tool, 0, len(defs))
	for _, d := range defs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Function.Name,
				Description: d.Function.Description,
				Parameters:  d.Function.Parameters,
			},
		})
	}
	return out
}

// fromOpenAIMessage goes through the wire payload so decoding rules live in
// one place. The SDK reports a null content as "", which is treated as absent
// when the turn carries tool calls.
func fromOpenAIMessage(m openai.ChatCompletionMessage) memory.Message {
	p := memory.Payload{Role: m.Role, Name: m.Name, ToolCallID: m.ToolCallID}
	if m.Content != "" || len(m.ToolCalls) == 0 {
		content := m.Content
		p.Content = &content
	}
	for _, tc := range m.ToolCalls {
		typ := string(tc.Type)
		if typ == "" {
			typ = string(openai.ToolTypeFunction)
		}
		p.ToolCalls = append(p.ToolCalls, memory.ToolCall{
			ID:   tc.ID,
			Type: typ,
			Function: memory.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return memory.FromWire(p)
}
