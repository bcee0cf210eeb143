package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petasbytes/fsagent/internal/fsops"
)

// Registry is a fixed, name-indexed set of tool definitions.
// It is built once and never mutated, so it is safe to share.
type Registry struct {
	defs   []ToolDefinition
	byName map[string]int
}

// NewRegistry indexes defs by name. Later duplicates replace earlier ones.
func NewRegistry(defs ...ToolDefinition) *Registry {
	r := &Registry{byName: make(map[string]int, len(defs))}
	for _, d := range defs {
		if i, ok := r.byName[d.Name]; ok {
			r.defs[i] = d
			continue
		}
		r.byName[d.Name] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	return r
}

// Default returns the registry wired for the agent: read_file and write_file.
func Default(fs *fsops.FS) *Registry {
	return NewRegistry(NewReadFileTool(fs), NewWriteFileTool(fs))
}

// Definitions returns the tool definitions in registration order.
func (r *Registry) Definitions() []ToolDefinition {
	return append([]ToolDefinition(nil), r.defs...)
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (ToolDefinition, bool) {
	i, ok := r.byName[name]
	if !ok {
		return ToolDefinition{}, false
	}
	return r.defs[i], true
}

// Execute runs the named tool with raw JSON input.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) (string, error) {
	def, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return def.Function(ctx, input)
}
