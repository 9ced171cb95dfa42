// Package store persists the merged snapshots as pretty-printed UTF-8 JSON
// files. Writes go through a temp file and an atomic rename, so the
// read-only API process only ever sees a fully-written file.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"MarketRadar/internal/model"
)

// SnapshotStore is the per-ticker record store.
type SnapshotStore struct {
	Path string
}

// NewSnapshotStore creates a store at the given path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{Path: path}
}

// Load reads the snapshot from disk. A missing file degrades to an empty
// snapshot, not an error.
func (s *SnapshotStore) Load() (model.Snapshot, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Snapshot{}, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	snap := model.Snapshot{}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return snap, nil
}

// Save atomically replaces the on-disk snapshot.
func (s *SnapshotStore) Save(snap model.Snapshot) error {
	return writeJSONFile(s.Path, snap)
}

// Age returns the time since the last write, and whether the file exists.
func (s *SnapshotStore) Age() (time.Duration, bool) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return 0, false
	}
	return time.Since(info.ModTime()), true
}

// Fresh reports whether the store was written within maxAge. Advisory only:
// this is a mtime check, not a lock against overlapping runs.
func (s *SnapshotStore) Fresh(maxAge time.Duration) bool {
	age, exists := s.Age()
	return exists && age < maxAge
}

// writeJSONFile marshals v with unescaped CJK and two-space indentation,
// then renames the temp file over the target.
func writeJSONFile(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
