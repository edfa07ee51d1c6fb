package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 10
	// DefaultMaxIdleConns is the default maximum number of idle connections
	DefaultMaxIdleConns = 5
	// DefaultConnMaxLifetime is the default maximum lifetime of a connection
	DefaultConnMaxLifetime = 5 * time.Minute
	// DefaultPingTimeout is the default timeout for pinging the database
	DefaultPingTimeout = 5 * time.Second
)

const createProfessionalsTable = `
CREATE TABLE IF NOT EXISTS professionals (
	id              BIGSERIAL PRIMARY KEY,
	run_id          TEXT NOT NULL,
	name            TEXT,
	address         TEXT,
	city            TEXT,
	state           TEXT,
	zip             TEXT,
	country         TEXT,
	phone           TEXT,
	latitude        DOUBLE PRECISION,
	longitude       DOUBLE PRECISION,
	rating          DOUBLE PRECISION,
	review_count    INTEGER,
	description     TEXT,
	profile_url     TEXT,
	image_url       TEXT,
	professional_id TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const insertProfessional = `
INSERT INTO professionals (
	run_id, name, address, city, state, zip, country, phone, latitude, longitude,
	rating, review_count, description, profile_url, image_url, professional_id
) VALUES (
	:run_id, :name, :address, :city, :state, :zip, :country, :phone, :latitude, :longitude,
	:rating, :review_count, :description, :profile_url, :image_url, :professional_id
)`

// PostgresStore writes each batch in one transaction.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an open connection.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresConnection opens a pooled connection and pings it.
func NewPostgresConnection(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}
	return db, nil
}

// EnsureSchema creates the professionals table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createProfessionalsTable); err != nil {
		return fmt.Errorf("failed to create professionals table: %w", err)
	}
	return nil
}

// SaveBatch inserts every record of the batch or none of them.
func (s *PostgresStore) SaveBatch(ctx context.Context, runID string, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, doc := range documents(runID, records) {
		if _, execErr := tx.NamedExecContext(ctx, insertProfessional, doc); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert professional: %w", execErr)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("failed to commit batch: %w", commitErr)
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
