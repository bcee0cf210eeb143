package tools

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema is a JSON Schema document in its decoded, provider-neutral form.
type Schema map[string]any

// GenerateSchema reflects T into an inline object schema. Fields without
// omitempty are required and unrecognised properties are forbidden.
func GenerateSchema[T any]() Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	b, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		panic(fmt.Sprintf("tools: marshal schema for %T: %v", v, err))
	}
	var s Schema
	if err := json.Unmarshal(b, &s); err != nil {
		panic(fmt.Sprintf("tools: decode schema for %T: %v", v, err))
	}
	delete(s, "$schema")
	delete(s, "$id")
	return s
}

// Properties returns the schema's property map, or an empty map.
func (s Schema) Properties() map[string]any {
	if p, ok := s["properties"].(map[string]any); ok {
		return p
	}
	return map[string]any{}
}

// Required returns the names of required properties.
func (s Schema) Required() []string {
	var out []string
	switch v := s["required"].(type) {
	case []string:
		out = append(out, v...)
	case []any:
		for _, x := range v {
			if name, ok := x.(string); ok {
				out = append(out, name)
			}
		}
	}
	return out
}
