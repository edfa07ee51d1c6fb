// Package storage persists accepted records. Every backend treats one SaveBatch call
// as one durable write: it either stores the whole batch or returns an error.
package storage

import (
	"context"
	"errors"

	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
)

//go:generate mockgen -destination=../../testutils/mocks/storage/mock_store.go -package=storage . RecordStore

// RecordStore is an append-only sink of records.
type RecordStore interface {
	// SaveBatch durably writes records produced by run runID.
	SaveBatch(ctx context.Context, runID string, records []domain.Record) error
	// Close releases backend resources.
	Close() error
}

// Backend names accepted in storage.backend.
const (
	BackendJSONL         = "jsonl"
	BackendMemory        = "memory"
	BackendElasticsearch = "elasticsearch"
	BackendPostgres      = "postgres"
)

var (
	// ErrUnknownBackend is returned for an unsupported storage.backend value.
	ErrUnknownBackend = errors.New("unknown storage backend")
	// ErrClosed is returned when writing to a closed store.
	ErrClosed = errors.New("store is closed")
)

// Document is a stored record stamped with the run that produced it.
type Document struct {
	RunID string `json:"run_id" db:"run_id"`
	domain.Record
}

func documents(runID string, records []domain.Record) []Document {
	docs := make([]Document, len(records))
	for i, r := range records {
		docs[i] = Document{RunID: runID, Record: r}
	}
	return docs
}
