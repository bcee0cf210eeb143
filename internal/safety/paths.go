// Package safety provides helpers for sandboxed file access.
package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Error codes carried by ToolError.
const (
	CodeOutsideSandbox = "ERR_PATH_OUTSIDE_SANDBOX"
	CodeNotAFile       = "ERR_NOT_A_FILE"
	CodeNotUTF8        = "ERR_NOT_UTF8"
)

// ToolError is a machine-readable error body for surfacing back to the agent as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a compact, single-line JSON string to keep tool observations small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// Sandbox confines file operations to a single root directory.
// The root is absolute and symlink-resolved, and never changes after construction.
type Sandbox struct {
	root string
}

// NewSandbox resolves root to an absolute sandbox root. An empty root means the
// current working directory.
func NewSandbox(root string) (*Sandbox, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		root = cwd
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("abs(root): %w", err)
	}

	// Resolve symlinks where possible so future boundary checks are reliable.
	// If EvalSymlinks fails (e.g., non-existent), fall back to the absolute path as-is.
	if r, err := filepath.EvalSymlinks(root); err == nil {
		root = r
	}
	return &Sandbox{root: root}, nil
}

// Root returns the absolute sandbox root.
func (s *Sandbox) Root() string { return s.root }

// Resolve maps a caller-supplied path onto an absolute path inside the sandbox.
// Relative paths are joined onto the root; absolute paths are accepted only if
// they already point inside it. Parent traversal and symlink escapes are
// rejected with ERR_PATH_OUTSIDE_SANDBOX.
func (s *Sandbox) Resolve(path string) (string, error) {
	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(s.root, candidate)
	}
	candidate = resolveExisting(filepath.Clean(candidate))

	// Boundary check using filepath.Rel (robust against partial prefix matches)
	if !s.contains(candidate) {
		return "", ToolError{Code: CodeOutsideSandbox, Message: "requested path resolves outside the sandbox root"}
	}
	return candidate, nil
}

// Rel returns abs relative to the sandbox root using forward slashes.
func (s *Sandbox) Rel(abs string) string {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

func (s *Sandbox) contains(abs string) bool {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveExisting resolves symlinks on the deepest existing ancestor of p and
// rejoins the not-yet-existing tail. This reveals escapes through a symlinked
// parent even when the leaf (or several levels of it) will only be created later.
func resolveExisting(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	var tail []string
	dir := p
	for {
		parent := filepath.Dir(dir)
		tail = append([]string{filepath.Base(dir)}, tail...)
		if parent == dir {
			return p
		}
		if resolved, err := filepath.EvalSymlinks(parent); err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...)
		}
		dir = parent
	}
}
