// Package store provides the single-writer, human-readable JSON
// persistence helpers used by the TSK recorder: write to a temp file then
// rename, so a crash mid-write never leaves a truncated file behind. The
// Hebbian matrix, families, entity tracker and epoch trackers write their
// own files without it.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteJSON marshals v as indented JSON and atomically replaces path.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}

// ReadJSON unmarshals path into v. A missing file reports ok=false rather
// than an error, since "never persisted yet" is the expected first-run
// state for every durable subsystem.
func ReadJSON(path string, v any) (ok bool, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("store: unmarshal %s: %w", path, err)
	}
	return true, nil
}
