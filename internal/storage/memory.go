package storage

import (
	"context"
	"sync"

	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	docs    []Document
	batches int
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SaveBatch appends the batch.
func (s *MemoryStore) SaveBatch(ctx context.Context, runID string, records []domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.docs = append(s.docs, documents(runID, records)...)
	s.batches++
	return nil
}

// Documents returns a copy of everything stored so far.
func (s *MemoryStore) Documents() []Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Batches returns the number of SaveBatch calls that succeeded.
func (s *MemoryStore) Batches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches
}

// Close marks the store closed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
