package tools

import (
	"context"
)

// Registry maps tool names to tools. Register during startup; afterwards the
// registry is read-only and safe to share across concurrent runs.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry returns a registry holding ts, registered in order.
func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(ts))}
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

// Register adds t, replacing any tool with the same name. A replaced tool
// keeps its original position in Definitions.
func (r *Registry) Register(t Tool) {
	if r.tools == nil {
		r.tools = make(map[string]Tool)
	}
	name := t.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Definitions returns one advertised definition per tool, in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, DefinitionOf(r.tools[name]))
	}
	return out
}

// Execute runs the named tool. It never returns an error and never panics:
// unknown tools, returned errors and recovered panics all become a failed Result.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (res Result) {
	t, ok := r.tools[name]
	if !ok {
		return Failf("Tool '%s' not found", name)
	}

	defer func() {
		if p := recover(); p != nil {
			res = Failf("%v", p)
		}
	}()

	out, err := t.Invoke(ctx, args)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	return out
}
