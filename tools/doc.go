// Package tools defines tool contracts and implementations.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - File tools: read_file, write_file, both confined to a sandbox via fsops.
//   - Registry: name-indexed lookup and execution.
package tools
