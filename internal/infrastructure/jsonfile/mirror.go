package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Mirror appends created records to a local JSON array file. It is an
// optional sidecar; callers treat failures as non-fatal.
type Mirror struct {
	path string
	mu   sync.Mutex
}

func NewMirror(path string) *Mirror {
	return &Mirror{path: path}
}

// Append reads the current array, appends the record and rewrites the file.
func (m *Mirror) Append(record interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var records []json.RawMessage

	data, err := os.ReadFile(m.path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("parse mirror file %s: %w", m.path, err)
		}
	case os.IsNotExist(err):
		records = []json.RawMessage{}
	default:
		return fmt.Errorf("read mirror file %s: %w", m.path, err)
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	records = append(records, raw)

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mirror file: %w", err)
	}

	if err := os.WriteFile(m.path, out, 0o644); err != nil {
		return fmt.Errorf("write mirror file %s: %w", m.path, err)
	}
	return nil
}
