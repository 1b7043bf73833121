package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/petasbytes/react-agent/internal/provider"
	"github.com/petasbytes/react-agent/internal/telemetry"
	"github.com/petasbytes/react-agent/memory"
	"github.com/petasbytes/react-agent/tools"
)

const (
	DefaultMaxTurns = 8

	DefaultSystemPrompt = "You are a helpful ReAct agent. Think step by step. " +
		"If tools are useful, call them using the available functions. " +
		"When you are ready to answer, reply directly to the user."

	// NoAnswer is returned when even the tool-free fallback comes back empty.
	NoAnswer = "Reached maximum iterations without a final answer."
)

// Status says how a run ended.
type Status string

const (
	StatusAnswered Status = "answered"
	StatusFallback Status = "fallback"
	StatusNoAnswer Status = "no_answer"
)

// Outcome is the full result of one run.
type Outcome struct {
	RunID   string
	Answer  string
	Status  Status
	Turns   int
	History []memory.Message
}

type Runner struct {
	client       provider.Completer
	reg          *tools.Registry
	maxTurns     int
	systemPrompt string
	logger       *slog.Logger
	events       *telemetry.Sink
}

type Option func(*Runner)

// WithMaxTurns bounds the tool-enabled iterations. Values <= 0 keep the default.
func WithMaxTurns(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxTurns = n
		}
	}
}

func WithSystemPrompt(p string) Option {
	return func(r *Runner) {
		if p != "" {
			r.systemPrompt = p
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithEvents attaches a JSONL sink. A nil sink disables emission.
func WithEvents(s *telemetry.Sink) Option {
	return func(r *Runner) { r.events = s }
}

// New returns a Runner. The registry is only read, so one registry can serve
// many runners.
func New(client provider.Completer, reg *tools.Registry, opts ...Option) *Runner {
	if reg == nil {
		reg = tools.NewRegistry()
	}
	r := &Runner{
		client:       client,
		reg:          reg,
		maxTurns:     DefaultMaxTurns,
		systemPrompt: DefaultSystemPrompt,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run answers query and returns only the final text.
func (r *Runner) Run(ctx context.Context, query string) (string, error) {
	out, err := r.Converse(ctx, query)
	if err != nil {
		return "", err
	}
	return out.Answer, nil
}

// Converse answers query and returns the answer with the run's full history.
// Completion errors and cancellation end the run with an error; tool
// failures never do.
func (r *Runner) Converse(ctx context.Context, query string) (Outcome, error) {
	runID, ok := telemetry.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = telemetry.WithRunID(ctx, runID)
	}
	log := r.logger.With("run_id", runID)
	start := time.Now()

	out := Outcome{
		RunID: runID,
		History: []memory.Message{
			memory.System(r.systemPrompt),
			memory.User(query),
		},
	}
	defs := r.reg.Definitions()

	finish := func(status Status, answer string, err error) (Outcome, error) {
		out.Status = status
		out.Answer = answer
		fields := map[string]any{
			"run_id":      runID,
			"turns":       out.Turns,
			"messages":    len(out.History),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			fields["status"] = "error"
			fields["error"] = err.Error()
			log.Warn("run failed", "turns", out.Turns, "err", err)
			r.events.Emit("run_done", fields)
			return out, err
		}
		fields["status"] = string(status)
		fields["error"] = nil
		log.Debug("run done", "status", status, "turns", out.Turns)
		r.events.Emit("run_done", fields)
		return out, nil
	}

	for out.Turns < r.maxTurns {
		if err := ctx.Err(); err != nil {
			return finish("", "", err)
		}
		out.Turns++

		msg, err := r.complete(ctx, out.History, defs, provider.ToolChoiceAuto, out.Turns)
		if err != nil {
			return finish("", "", err)
		}
		out.History = append(out.History, msg)

		if !msg.HasToolCalls() {
			return finish(StatusAnswered, msg.Text(), nil)
		}
		log.Debug("tool calls requested", "turn", out.Turns, "count", len(msg.ToolCalls))
		out.History = append(out.History, r.dispatch(ctx, msg.ToolCalls)...)
	}

	if err := ctx.Err(); err != nil {
		return finish("", "", err)
	}
	log.Debug("turn budget exhausted, forcing a direct answer", "max_turns", r.maxTurns)
	msg, err := r.complete(ctx, out.History, defs, provider.ToolChoiceNone, out.Turns+1)
	if err != nil {
		return finish("", "", err)
	}
	out.History = append(out.History, msg)
	if msg.Text() == "" {
		return finish(StatusNoAnswer, NoAnswer, nil)
	}
	return finish(StatusFallback, msg.Text(), nil)
}

func (r *Runner) complete(ctx context.Context, history []memory.Message, defs []tools.Definition, choice provider.ToolChoice, turn int) (memory.Message, error) {
	runID, _ := telemetry.RunIDFromContext(ctx)
	start := time.Now()
	msg, err := r.client.Complete(ctx, history, defs, choice)

	fields := map[string]any{
		"run_id":      runID,
		"turn":        turn,
		"tool_choice": string(choice),
		"messages":    len(history),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["error"] = err.Error()
		r.events.Emit("completion", fields)
		return memory.Message{}, fmt.Errorf("turn %d: %w", turn, err)
	}
	fields["error"] = nil
	fields["tool_calls"] = len(msg.ToolCalls)
	r.events.Emit("completion", fields)
	return msg, nil
}
