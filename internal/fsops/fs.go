package fsops

import "github.com/petasbytes/fsagent/internal/safety"

// FS performs file I/O addressed by paths inside a sandbox.
type FS struct {
	sb *safety.Sandbox
}

// New returns an FS bound to sb.
func New(sb *safety.Sandbox) *FS {
	return &FS{sb: sb}
}

// Sandbox returns the sandbox FS validates against.
func (f *FS) Sandbox() *safety.Sandbox { return f.sb }
