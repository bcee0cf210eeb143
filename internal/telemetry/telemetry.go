// Package telemetry writes structured run events as JSON lines.
//
// Events never carry raw task text, file contents, or tool arguments; callers
// pass sizes and counts instead (see metrics.CountFeatures).
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultDir is used when no artifacts directory is configured.
const DefaultDir = ".agent"

// EventsFile is the file name events are appended to inside the artifacts directory.
const EventsFile = "events.jsonl"

// Sink appends events to <dir>/events.jsonl. A nil *Sink discards events.
type Sink struct {
	dir    string
	errOut io.Writer
	mu     sync.Mutex
}

// NewSink returns a sink writing under dir, or nil when enabled is false.
func NewSink(dir string, enabled bool) *Sink {
	if !enabled {
		return nil
	}
	if dir == "" {
		dir = DefaultDir
	}
	return &Sink{dir: dir, errOut: os.Stderr}
}

// Path returns the events file path, or "" for a nil sink.
func (s *Sink) Path() string {
	if s == nil {
		return ""
	}
	return filepath.Join(s.dir, EventsFile)
}

// Emit writes a single JSON line. It augments fields with RFC3339Nano time and
// the event name. Failures are reported on stderr and never returned.
func (s *Sink) Emit(name string, fields map[string]any) {
	if s == nil {
		return
	}

	// Make a shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		fmt.Fprintf(s.errOut, "telemetry: marshal: %v\n", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		fmt.Fprintf(s.errOut, "telemetry: mkdir %s: %v\n", s.dir, err)
		return
	}

	path := s.Path()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(s.errOut, "telemetry: open %s: %v\n", path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		fmt.Fprintf(s.errOut, "telemetry: write %s: %v\n", path, err)
		return
	}
}
