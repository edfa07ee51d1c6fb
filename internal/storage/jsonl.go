package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// JSONLStore appends one JSON document per line to a dataset file.
type JSONLStore struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewJSONLStore opens (or creates) the dataset file at path for appending.
func NewJSONLStore(path string) (*JSONLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	return &JSONLStore{path: path, file: f}, nil
}

// Path returns the dataset file path.
func (s *JSONLStore) Path() string {
	return s.path
}

// SaveBatch encodes the whole batch, writes it in one call and syncs the file.
func (s *JSONLStore) SaveBatch(ctx context.Context, runID string, records []domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range documents(runID, records) {
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return ErrClosed
	}
	if _, err := s.file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync dataset: %w", err)
	}
	return nil
}

// Close closes the dataset file.
func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
