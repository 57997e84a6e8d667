// Package snapshot keeps the last test run listing fetched from the service
// on disk, so demo and offline modes can show it instead of sample data.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flinketl/etldash/model"
	"github.com/rs/zerolog"
)

// Store reads and writes a snapshot file.
type Store struct {
	logger zerolog.Logger
	path   string
}

// New creates a store backed by the file at path.
func New(logger zerolog.Logger, path string) *Store {
	return &Store{
		logger: logger,
		path:   path,
	}
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the snapshot. The error wraps os.ErrNotExist when no snapshot
// has been saved yet.
func (s *Store) Load() ([]model.TestRun, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var runs []model.TestRun
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", s.path, err)
	}

	s.logger.Debug().Str("path", s.path).Int("runs", len(runs)).Msg("Loaded snapshot")
	return runs, nil
}

// Save replaces the snapshot with runs. The file is written next to the
// target and renamed into place.
func (s *Store) Save(runs []model.TestRun) error {
	if runs == nil {
		runs = []model.TestRun{}
	}
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	s.logger.Debug().Str("path", s.path).Int("runs", len(runs)).Msg("Saved snapshot")
	return nil
}
