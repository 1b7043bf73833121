// Package provider adapts chat-completion endpoints to the agent's message
// model.
//
// A Completer is stateless beyond its fixed configuration: every call sends
// the full history and the tool definitions, and returns the first choice's
// message. Errors are returned wrapped and never retried.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sashabaranov/go-openai"

	"github.com/petasbytes/react-agent/internal/config"
	"github.com/petasbytes/react-agent/memory"
	"github.com/petasbytes/react-agent/tools"
)

// ToolChoice controls whether the model may request tools on a call.
type ToolChoice string

const (
	ToolChoiceAuto ToolChoice = "auto"
	ToolChoiceNone ToolChoice = "none"
)

var (
	ErrNoChoices       = errors.New("completion returned no choices")
	ErrUnknownProvider = errors.New("unknown provider")
)

// Completer requests one assistant message for a history.
type Completer interface {
	Complete(ctx context.Context, history []memory.Message, defs []tools.Definition, choice ToolChoice) (memory.Message, error)
}

// New builds the backend named by cfg.Provider. A nil httpClient uses the
// SDK default.
func New(cfg config.Config, httpClient *http.Client) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		oc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		if httpClient != nil {
			oc.HTTPClient = httpClient
		}
		return NewOpenAI(openai.NewClientWithConfig(oc), cfg.Model, cfg.Temperature), nil
	case config.ProviderAnthropic:
		opts := []anthropicopt.RequestOption{anthropicopt.WithMaxRetries(0)}
		if cfg.APIKey != "" {
			opts = append(opts, anthropicopt.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropicopt.WithBaseURL(cfg.BaseURL))
		}
		if httpClient != nil {
			opts = append(opts, anthropicopt.WithHTTPClient(httpClient))
		}
		c := anthropic.NewClient(opts...)
		return NewAnthropic(&c, cfg.Model, int64(cfg.MaxTokens), cfg.Temperature), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
}
