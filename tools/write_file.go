package tools

import (
	"context"
	"encoding/json"

	"github.com/petasbytes/fsagent/internal/fsops"
)

const WriteFileName = "write_file"

// WriteFileInput carries Content as a pointer so an explicit empty string is
// distinguishable from a missing argument.
type WriteFileInput struct {
	FilePath string  `json:"file_path" validate:"required" jsonschema_description:"Where to write (e.g., 'out/summary.txt')."`
	Content  *string `json:"content" validate:"required" jsonschema_description:"Text to write into the file."`
}

var WriteFileInputSchema = GenerateSchema[WriteFileInput]()

// NewWriteFileTool returns the write_file definition bound to fs.
func NewWriteFileTool(fs *fsops.FS) ToolDefinition {
	return ToolDefinition{
		Name:        WriteFileName,
		Description: "Write UTF-8 text content to a file (creates directories if needed).",
		InputSchema: WriteFileInputSchema,
		Function: func(_ context.Context, input json.RawMessage) (string, error) {
			in, err := decodeArgs[WriteFileInput](WriteFileName, input)
			if err != nil {
				return "", err
			}
			return fs.WriteFile(in.FilePath, *in.Content)
		},
	}
}
