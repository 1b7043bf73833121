package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// WriteTranscript writes msgs as indented JSON to path, creating parent
// directories as needed. Each message is encoded in its wire form.
func WriteTranscript(path string, msgs []Message) error {
	if msgs == nil {
		msgs = []Message{}
	}
	b, err := json.MarshalIndent(msgs, "", " ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}
