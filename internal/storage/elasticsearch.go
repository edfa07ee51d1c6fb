package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
)

// DefaultBulkIndexTimeout bounds one bulk request.
const DefaultBulkIndexTimeout = 30 * time.Second

// ElasticsearchStore indexes each batch with a single _bulk request.
type ElasticsearchStore struct {
	client  *es.Client
	index   string
	timeout time.Duration
	logger  logger.Interface
}

// NewElasticsearchStore wraps an existing client.
func NewElasticsearchStore(client *es.Client, index string, log logger.Interface) *ElasticsearchStore {
	return &ElasticsearchStore{
		client:  client,
		index:   index,
		timeout: DefaultBulkIndexTimeout,
		logger:  log,
	}
}

// NewElasticsearchClient creates a client and verifies the cluster answers a ping.
func NewElasticsearchClient(addresses []string, username, password string) (*es.Client, error) {
	client, err := es.NewClient(es.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	res, err := client.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error pinging Elasticsearch: %s", res.String())
	}
	return client, nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

// SaveBatch indexes the batch and waits for it to become visible.
// Any failed item fails the whole batch.
func (s *ElasticsearchStore) SaveBatch(ctx context.Context, runID string, records []domain.Record) error {
	if s.client == nil {
		return errors.New("elasticsearch client is not initialized")
	}
	if len(records) == 0 {
		return nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, doc := range documents(runID, records) {
		meta := map[string]any{"index": map[string]any{"_index": s.index, "_id": uuid.NewString()}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("failed to encode bulk action: %w", err)
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to marshal document for indexing: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.client.Bulk(
		bytes.NewReader(body.Bytes()),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("failed to execute bulk request: %w", err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			s.logger.Error("Failed to close response body", "error", closeErr, "index", s.index)
		}
	}()

	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var parsed bulkResponse
	if decodeErr := json.NewDecoder(res.Body).Decode(&parsed); decodeErr != nil {
		return fmt.Errorf("failed to decode bulk response: %w", decodeErr)
	}
	if parsed.Errors {
		return firstItemError(parsed)
	}

	s.logger.Debug("Bulk indexed records", "index", s.index, "count", len(records), "run_id", runID)
	return nil
}

func firstItemError(parsed bulkResponse) error {
	failed := 0
	var first string
	for _, item := range parsed.Items {
		for _, result := range item {
			if result.Error == nil {
				continue
			}
			failed++
			if first == "" {
				first = result.Error.Type + ": " + result.Error.Reason
			}
		}
	}
	return fmt.Errorf("bulk indexing failed for %d item(s): %s", failed, first)
}

// Close is a no-op; the HTTP client has nothing to release.
func (s *ElasticsearchStore) Close() error {
	return nil
}
