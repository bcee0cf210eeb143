package fsops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/petasbytes/fsagent/internal/metrics"
)

// WriteFile writes content to a file addressed by a path inside the sandbox,
// overwriting any existing file and creating parent directories as needed.
// It returns a confirmation naming the character count and the sandbox-relative path.
func (f *FS) WriteFile(path, content string) (string, error) {
	absPath, err := f.sb.Resolve(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(absPath, []byte(content), 0o644); err != nil {
		return "", err
	}

	chars := metrics.CountFeatures(content).Runes
	return fmt.Sprintf("Wrote %d chars to %s", chars, f.sb.Rel(absPath)), nil
}
