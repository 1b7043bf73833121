package runner

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/petasbytes/react-agent/internal/telemetry"
	"github.com/petasbytes/react-agent/memory"
)

// dispatch runs every call concurrently and returns one tool message per
// call, in request order regardless of completion order.
func (r *Runner) dispatch(ctx context.Context, calls []memory.ToolCall) []memory.Message {
	results := make([]memory.Message, len(calls))
	var g errgroup.Group
	for i, call := range calls {
		g.Go(func() error {
			results[i] = r.execute(ctx, call)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Runner) execute(ctx context.Context, call memory.ToolCall) memory.Message {
	name := call.Function.Name
	args := parseArguments(call.Function.Arguments)

	start := time.Now()
	res := r.reg.Execute(ctx, name, args)
	rendered := res.Render()

	runID, _ := telemetry.RunIDFromContext(ctx)
	// Sizes only; raw arguments and outputs stay out of the event log.
	fields := map[string]any{
		"run_id":      runID,
		"tool_name":   name,
		"duration_ms": time.Since(start).Milliseconds(),
		"input_size":  len(call.Function.Arguments),
		"output_size": len(rendered),
		"error":       nil,
	}
	if !res.Success {
		fields["error"] = "tool error"
		r.logger.Debug("tool failed", "run_id", runID, "tool", name, "err", res.Error)
	}
	r.events.Emit("tool_exec", fields)

	return memory.FormatToolResult(name, call.ID, rendered)
}

// parseArguments decodes the model's argument string. Empty means no
// arguments; anything that is not a JSON object is passed through raw under
// "input" so the tool can still see it.
func parseArguments(raw string) map[string]any {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
		return map[string]any{"input": raw}
	}
	return args
}
