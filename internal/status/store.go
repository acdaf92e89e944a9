// Package status persists per-upload progress records.
//
// Records are written atomically (write-temp-then-rename) so a concurrent
// reader never observes a partially written record. No cross-process
// locking is needed: exactly one orchestrator instance owns a given upload
// id at a time by construction.
package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/setcast/internal/models"
)

// ErrNotFound is returned by Read when no record exists for an upload id.
var ErrNotFound = errors.New("status record not found")

// Store is a file-backed status record store, one JSON record per upload id.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create status directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Update overwrites the record for uploadID. Each phase transition replaces
// the whole record; the caller carries the accumulated detail map forward
// so later writes never drop earlier keys.
func (s *Store) Update(uploadID string, status models.StatusKind, message string, detail map[string]any) error {
	record := models.UploadStatusRecord{
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Detail:    detail,
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, uploadID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp status file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write status record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close status record: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(uploadID)); err != nil {
		return fmt.Errorf("failed to publish status record: %w", err)
	}
	return nil
}

// Read returns the current record for uploadID, or [ErrNotFound].
func (s *Store) Read(uploadID string) (*models.UploadStatusRecord, error) {
	data, err := os.ReadFile(s.path(uploadID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read status record: %w", err)
	}

	var record models.UploadStatusRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse status record: %w", err)
	}
	return &record, nil
}

func (s *Store) path(uploadID string) string {
	return filepath.Join(s.dir, uploadID+".json")
}
