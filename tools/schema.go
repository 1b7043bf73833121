package tools

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateSchema derives an inline JSON Schema object from the input struct T.
// Fields without omitempty are required; use jsonschema_description and
// jsonschema:"default=..." tags to document them.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	var v T
	s := reflector.Reflect(v)
	// The model only needs the object schema, not the meta-schema URI.
	s.Version = ""
	return s
}

// DecodeArgs converts a model-supplied argument map into T. Unknown keys are
// ignored, matching how models tend to over-supply arguments.
func DecodeArgs[T any](args map[string]any) (T, error) {
	var out T
	if len(args) == 0 {
		return out, nil
	}
	b, err := json.Marshal(args)
	if err != nil {
		return out, fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("invalid arguments: %w", err)
	}
	return out, nil
}
