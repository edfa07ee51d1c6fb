package config

import (
	"strings"
)

// Storage defaults
const (
	DefaultStorageBackend     = "jsonl"
	DefaultJSONLPath          = "dataset/records.jsonl"
	DefaultElasticsearchIndex = "professionals"
	DefaultElasticsearchURL   = "http://localhost:9200"
)

// StorageConfig selects and configures the record store.
type StorageConfig struct {
	// Backend is one of jsonl, memory, elasticsearch, postgres
	Backend       string              `mapstructure:"backend"       yaml:"backend"`
	JSONL         JSONLConfig         `mapstructure:"jsonl"         yaml:"jsonl"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch" yaml:"elasticsearch"`
	Postgres      PostgresConfig      `mapstructure:"postgres"      yaml:"postgres"`
}

// JSONLConfig configures the dataset file store.
type JSONLConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// ElasticsearchConfig configures the bulk-indexing store.
type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses" yaml:"addresses"`
	Username  string   `mapstructure:"username"  yaml:"username"`
	Password  string   `json:"-"                 mapstructure:"password" yaml:"password"`
	Index     string   `mapstructure:"index"     yaml:"index"`
}

// PostgresConfig configures the transactional store.
type PostgresConfig struct {
	DSN string `json:"-" mapstructure:"dsn" yaml:"dsn"`
	// AutoMigrate creates the professionals table on startup
	AutoMigrate bool `mapstructure:"auto_migrate" yaml:"auto_migrate"`
}

// NewStorageConfig returns the default storage configuration.
func NewStorageConfig() *StorageConfig {
	return &StorageConfig{
		Backend: DefaultStorageBackend,
		JSONL:   JSONLConfig{Path: DefaultJSONLPath},
		Elasticsearch: ElasticsearchConfig{
			Addresses: []string{DefaultElasticsearchURL},
			Index:     DefaultElasticsearchIndex,
		},
		Postgres: PostgresConfig{AutoMigrate: true},
	}
}

// ParseAddresses splits a comma-separated address list.
func ParseAddresses(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case "jsonl":
		if c.JSONL.Path == "" {
			return &ValidationError{Field: "storage.jsonl.path", Value: c.JSONL.Path, Reason: "is required"}
		}
	case "memory":
	case "elasticsearch":
		if len(c.Elasticsearch.Addresses) == 0 {
			return &ValidationError{Field: "storage.elasticsearch.addresses", Value: c.Elasticsearch.Addresses, Reason: "is required"}
		}
		if c.Elasticsearch.Index == "" {
			return &ValidationError{Field: "storage.elasticsearch.index", Value: c.Elasticsearch.Index, Reason: "is required"}
		}
	case "postgres":
		if c.Postgres.DSN == "" {
			return &ValidationError{Field: "storage.postgres.dsn", Value: "", Reason: "is required"}
		}
	default:
		return &ValidationError{Field: "storage.backend", Value: c.Backend, Reason: "must be jsonl, memory, elasticsearch or postgres"}
	}
	return nil
}
