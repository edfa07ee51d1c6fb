package storage

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/procrawler/internal/config"
	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
)

// New builds the record store selected by cfg.Backend.
func New(ctx context.Context, cfg *config.StorageConfig, log logger.Interface) (RecordStore, error) {
	log = log.WithComponent("storage")

	switch cfg.Backend {
	case BackendJSONL, "":
		store, err := NewJSONLStore(cfg.JSONL.Path)
		if err != nil {
			return nil, err
		}
		log.Info("Using JSONL dataset", "path", store.Path())
		return store, nil

	case BackendMemory:
		log.Info("Using in-memory store")
		return NewMemoryStore(), nil

	case BackendElasticsearch:
		client, err := NewElasticsearchClient(
			cfg.Elasticsearch.Addresses,
			cfg.Elasticsearch.Username,
			cfg.Elasticsearch.Password,
		)
		if err != nil {
			return nil, err
		}
		log.Info("Using Elasticsearch store", "index", cfg.Elasticsearch.Index)
		return NewElasticsearchStore(client, cfg.Elasticsearch.Index, log), nil

	case BackendPostgres:
		db, err := NewPostgresConnection(cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		store := NewPostgresStore(db)
		if cfg.Postgres.AutoMigrate {
			if schemaErr := store.EnsureSchema(ctx); schemaErr != nil {
				_ = store.Close()
				return nil, schemaErr
			}
		}
		log.Info("Using PostgreSQL store")
		return store, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
