package config_test

import (
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/procrawler/internal/config"
	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultParallelism, cfg.Crawler.MaxConcurrency)
	assert.Equal(t, config.DefaultMaxRetries, cfg.Crawler.MaxRetries)
	assert.Equal(t, config.DefaultRequestTimeout, cfg.Crawler.RequestTimeout)
	assert.Equal(t, "jsonl", cfg.Storage.Backend)
	assert.Equal(t, config.DefaultJSONLPath, cfg.Storage.JSONL.Path)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, logger.InfoLevel, cfg.Logger.Level)
}

func TestLoad_Overrides(t *testing.T) {
	t.Parallel()

	v := viper.New()
	config.SetDefaults(v)
	v.Set("app.debug", true)
	v.Set("crawler.request_timeout", "15s")
	v.Set("storage.backend", "elasticsearch")
	v.Set("storage.elasticsearch.addresses", "http://es1:9200, http://es2:9200")
	v.Set("input.results_wanted", 12)
	v.Set("input.startUrls", []any{"https://www.houzz.com/professionals/architects"})

	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, logger.DebugLevel, cfg.Logger.Level)
	assert.Equal(t, 15*time.Second, cfg.Crawler.RequestTimeout)
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.Storage.Elasticsearch.Addresses)

	in, err := cfg.Input.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 12, in.ResultsWanted)
	assert.Equal(t, []string{"https://www.houzz.com/professionals/architects"}, in.StartURLs)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "valid defaults", mutate: func(*config.Config) {}},
		{
			name:    "zero concurrency",
			mutate:  func(c *config.Config) { c.Crawler.MaxConcurrency = 0 },
			wantErr: true,
		},
		{
			name:    "unknown backend",
			mutate:  func(c *config.Config) { c.Storage.Backend = "s3" },
			wantErr: true,
		},
		{
			name:    "postgres without dsn",
			mutate:  func(c *config.Config) { c.Storage.Backend = "postgres" },
			wantErr: true,
		},
		{
			name: "postgres with dsn",
			mutate: func(c *config.Config) {
				c.Storage.Backend = "postgres"
				c.Storage.Postgres.DSN = "postgres://localhost/procrawler"
			},
		},
		{
			name:   "memory backend",
			mutate: func(c *config.Config) { c.Storage.Backend = "memory" },
		},
		{
			name:    "empty server address",
			mutate:  func(c *config.Config) { c.Server.Address = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, config.ErrConfigInvalid)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewCrawlerConfig_Options(t *testing.T) {
	t.Parallel()

	cfg := config.NewCrawlerConfig(
		config.WithMaxConcurrency(2),
		config.WithMaxRetries(0),
		config.WithRetryDelay(time.Millisecond),
		config.WithRequestTimeout(time.Second),
		config.WithProxyURLs("http://proxy:8000"),
	)

	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"http://proxy:8000"}, cfg.ProxyURLs)
	require.NoError(t, cfg.Validate())
}
