package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONFile is one target of WriteJSONFiles.
type JSONFile struct {
	Path  string
	Value any
}

// WriteJSON atomically writes v as indented JSON to path.
func WriteJSON(path string, v any) error {
	return WriteJSONFiles([]JSONFile{{Path: path, Value: v}})
}

// WriteJSONFiles writes every file to a temp file first and renames them
// only once all were written. A failed marshal or write leaves every
// target untouched.
func WriteJSONFiles(files []JSONFile) error {
	staged := make([]string, 0, len(files))
	cleanup := func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}

	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
			cleanup()
			return fmt.Errorf("storage error creating directories: %w", err)
		}
		data, err := json.MarshalIndent(f.Value, "", "  ")
		if err != nil {
			cleanup()
			return fmt.Errorf("storage error marshalling JSON: %w", err)
		}
		tmpPath := f.Path + ".tmp"
		if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
			cleanup()
			return fmt.Errorf("storage error writing temp file: %w", err)
		}
		staged = append(staged, tmpPath)
	}

	for i, f := range files {
		if err := os.Rename(staged[i], f.Path); err != nil {
			staged = staged[i:]
			cleanup()
			return fmt.Errorf("storage error renaming temp file: %w", err)
		}
	}
	return nil
}
