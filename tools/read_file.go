package tools

import (
	"context"
	"encoding/json"

	"github.com/petasbytes/fsagent/internal/fsops"
)

const ReadFileName = "read_file"

type ReadFileInput struct {
	FilePath string `json:"file_path" validate:"required" jsonschema_description:"Path to the file to read (e.g., 'data/input.txt')."`
}

var ReadFileInputSchema = GenerateSchema[ReadFileInput]()

// NewReadFileTool returns the read_file definition bound to fs.
func NewReadFileTool(fs *fsops.FS) ToolDefinition {
	return ToolDefinition{
		Name:        ReadFileName,
		Description: "Read text content from a UTF-8 file relative to the working directory.",
		InputSchema: ReadFileInputSchema,
		Function: func(_ context.Context, input json.RawMessage) (string, error) {
			in, err := decodeArgs[ReadFileInput](ReadFileName, input)
			if err != nil {
				return "", err
			}
			return fs.ReadFile(in.FilePath)
		},
	}
}
