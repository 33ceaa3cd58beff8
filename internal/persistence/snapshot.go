// Package persistence provides atomic gob snapshots for in-process stores.
// A snapshot is written to a temporary file in the target directory and
// renamed into place, so a crash mid-write never corrupts the previous
// snapshot.
package persistence

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// SaveSnapshot gob-encodes object and atomically replaces the file at
// filePath with the result, creating parent directories as needed.
func SaveSnapshot(filePath string, object interface{}) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(filePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if err := gob.NewEncoder(tmp).Encode(object); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to gob encode to %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace snapshot %s: %w", filePath, err)
	}
	return nil
}

// LoadSnapshot decodes a gob snapshot from filePath into objectPointer. If
// the file does not exist it returns os.ErrNotExist, so callers can treat a
// missing snapshot as a fresh start.
func LoadSnapshot(filePath string, objectPointer interface{}) error {
	file, err := os.Open(filePath) // #nosec G304 -- filePath is controlled by application, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return os.ErrNotExist
		}
		return fmt.Errorf("failed to open snapshot %s: %w", filePath, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := gob.NewDecoder(file).Decode(objectPointer); err != nil {
		return fmt.Errorf("failed to gob decode snapshot %s: %w", filePath, err)
	}
	return nil
}
