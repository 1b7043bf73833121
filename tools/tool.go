package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Tool is one capability the model may call.
//
// Invoke reports expected failures (missing configuration, bad arguments,
// upstream errors) as a Result with Success=false and a nil error. A non-nil
// error is an unexpected fault; the Registry converts it. Implementations
// must not keep per-call mutable state.
type Tool interface {
	Name() string
	Description() string
	Parameters() *jsonschema.Schema
	Invoke(ctx context.Context, args map[string]any) (Result, error)
}

// Result is the outcome of a tool invocation.
type Result struct {
	Success  bool
	Output   any
	Error    string
	Metadata map[string]any
}

// OK returns a successful result.
func OK(output any) Result { return Result{Success: true, Output: output} }

// Failf returns a failed result with a formatted error message.
func Failf(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Render returns the compact JSON form fed back to the model:
// {"success":..,"output":..,"error":..,"metadata":{..}}. error is null when empty.
func (r Result) Render() string {
	var errField *string
	if r.Error != "" {
		errField = &r.Error
	}
	meta := r.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	payload := struct {
		Success  bool           `json:"success"`
		Output   any            `json:"output"`
		Error    *string        `json:"error"`
		Metadata map[string]any `json:"metadata"`
	}{r.Success, r.Output, errField, meta}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		// Output was not serialisable; keep the envelope and stringify it.
		payload.Output = fmt.Sprint(r.Output)
		buf.Reset()
		_ = enc.Encode(payload)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// Definition is the advertisement of one tool in the completion request:
// {"type":"function","function":{"name","description","parameters"}}.
type Definition struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes the callable behind a Definition.
type FunctionDefinition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// DefinitionOf builds the advertised definition for t.
func DefinitionOf(t Tool) Definition {
	return Definition{
		Type: "function",
		Function: FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		},
	}
}
