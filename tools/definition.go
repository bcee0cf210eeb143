package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ToolDefinition describes one tool exposed to the model.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema Schema
	Function    func(ctx context.Context, input json.RawMessage) (string, error)
}

// ErrUnknownTool is returned by Registry.Execute for names it does not hold.
var ErrUnknownTool = errors.New("unknown tool")

// ArgumentError reports tool input that does not match the tool's schema:
// unknown properties, missing required properties, or wrong types.
type ArgumentError struct {
	Tool string
	Err  error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid arguments: %v", e.Tool, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }
