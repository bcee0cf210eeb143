package fsops

import (
	"os"
	"unicode/utf8"

	"github.com/petasbytes/fsagent/internal/safety"
)

// ReadFile reads a UTF-8 text file addressed by a path inside the sandbox.
// It validates the path via safety and returns a ToolError on policy violations.
func (f *FS) ReadFile(path string) (string, error) {
	absPath, err := f.sb.Resolve(path)
	if err != nil {
		return "", err // propagate ToolError unchanged
	}

	fi, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", safety.ToolError{Code: safety.CodeNotAFile, Message: "path is a directory"}
	}

	b, err := os.ReadFile(absPath)
	if err != nil {
		return "", err // standard error for I/O issues (not policy)
	}
	if !utf8.Valid(b) {
		return "", safety.ToolError{Code: safety.CodeNotUTF8, Message: "file is not valid UTF-8 text"}
	}
	return string(b), nil
}
