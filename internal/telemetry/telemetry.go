// Package telemetry writes opt-in JSONL events describing agent runs.
//
// Events never carry raw prompts, tool arguments or tool output; only names,
// sizes, durations and error strings.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventsFile is the file name used inside the sink directory.
const EventsFile = "events.jsonl"

// Sink appends events to <Dir>/events.jsonl. A nil *Sink discards everything,
// so callers never need to check whether observation is enabled.
type Sink struct {
	dir string

	mu sync.Mutex
}

// NewSink returns a sink writing under dir, or nil when enabled is false.
func NewSink(enabled bool, dir string) *Sink {
	if !enabled {
		return nil
	}
	if dir == "" {
		dir = ".agent"
	}
	return &Sink{dir: dir}
}

// Path returns the events file location, or "" for a nil sink.
func (s *Sink) Path() string {
	if s == nil {
		return ""
	}
	return filepath.Join(s.dir, EventsFile)
}

// Emit writes a single JSON line, adding RFC3339Nano time and the event name.
// Failures are reported on stderr and otherwise ignored.
func (s *Sink) Emit(name string, fields map[string]any) {
	if s == nil {
		return
	}

	// Shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: marshal: %v\n", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: mkdir %s: %v\n", s.dir, err)
		return
	}

	path := s.Path()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: open %s: %v\n", path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: write %s: %v\n", path, err)
	}
}
