// Package config loads procrawler configuration from defaults, a YAML file and
// the environment, and resolves loosely typed run input.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
	"github.com/spf13/viper"
)

// App defaults
const (
	DefaultAppName     = "procrawler"
	DefaultEnvironment = "development"
)

// AppConfig holds process-wide settings.
type AppConfig struct {
	Name        string `mapstructure:"name"        yaml:"name"`
	Environment string `mapstructure:"environment" yaml:"environment"`
	Debug       bool   `mapstructure:"debug"       yaml:"debug"`
}

// Config represents the application configuration.
type Config struct {
	App     AppConfig     `mapstructure:"app"     yaml:"app"`
	Logger  logger.Config `mapstructure:"logger"  yaml:"logger"`
	Crawler CrawlerConfig `mapstructure:"crawler" yaml:"crawler"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Server  ServerConfig  `mapstructure:"server"  yaml:"server"`
	// Input is the default run input; command flags and API bodies override it.
	Input RawInput `mapstructure:"input" yaml:"input"`
}

// NewDefault returns a configuration populated with defaults only.
func NewDefault() *Config {
	return &Config{
		App: AppConfig{Name: DefaultAppName, Environment: DefaultEnvironment},
		Logger: logger.Config{
			Level:    logger.InfoLevel,
			Encoding: "json",
			Output:   "stderr",
		},
		Crawler: *NewCrawlerConfig(),
		Storage: *NewStorageConfig(),
		Server:  *NewServerConfig(),
	}
}

// SetDefaults registers default values on v so that environment variables and
// config files only need to name what they change.
func SetDefaults(v *viper.Viper) {
	d := NewDefault()

	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("app.environment", d.App.Environment)
	v.SetDefault("app.debug", d.App.Debug)

	v.SetDefault("logger.level", string(d.Logger.Level))
	v.SetDefault("logger.encoding", d.Logger.Encoding)
	v.SetDefault("logger.output", d.Logger.Output)
	v.SetDefault("logger.development", d.Logger.Development)

	v.SetDefault("crawler.max_concurrency", d.Crawler.MaxConcurrency)
	v.SetDefault("crawler.max_retries", d.Crawler.MaxRetries)
	v.SetDefault("crawler.retry_delay", d.Crawler.RetryDelay)
	v.SetDefault("crawler.request_timeout", d.Crawler.RequestTimeout)
	v.SetDefault("crawler.user_agent", d.Crawler.UserAgent)
	v.SetDefault("crawler.use_random_user_agent", d.Crawler.UseRandomUserAgent)
	v.SetDefault("crawler.use_referer", d.Crawler.UseReferer)

	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.jsonl.path", d.Storage.JSONL.Path)
	v.SetDefault("storage.elasticsearch.addresses", d.Storage.Elasticsearch.Addresses)
	v.SetDefault("storage.elasticsearch.index", d.Storage.Elasticsearch.Index)
	v.SetDefault("storage.postgres.auto_migrate", d.Storage.Postgres.AutoMigrate)

	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
}

// BindEnv enables automatic environment lookup and binds the conventional
// variable names that do not follow the key.path → KEY_PATH scheme.
func BindEnv(v *viper.Viper) error {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindings := map[string][]string{
		"app.environment":                 {"APP_ENV"},
		"app.debug":                       {"APP_DEBUG"},
		"logger.level":                    {"LOG_LEVEL"},
		"logger.encoding":                 {"LOG_FORMAT"},
		"storage.backend":                 {"STORAGE_BACKEND"},
		"storage.jsonl.path":              {"DATASET_PATH"},
		"storage.elasticsearch.addresses": {"ELASTICSEARCH_HOSTS", "ELASTICSEARCH_ADDRESSES"},
		"storage.elasticsearch.username":  {"ELASTICSEARCH_USERNAME"},
		"storage.elasticsearch.password":  {"ELASTIC_PASSWORD", "ELASTICSEARCH_PASSWORD"},
		"storage.elasticsearch.index":     {"ELASTICSEARCH_INDEX_NAME"},
		"storage.postgres.dsn":            {"POSTGRES_DSN", "DATABASE_URL"},
		"crawler.max_concurrency":         {"CRAWLER_MAX_CONCURRENCY"},
		"crawler.proxy_urls":              {"CRAWLER_PROXY_URLS"},
		"server.address":                  {"SERVER_ADDRESS"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", strings.Join(envs, "/"), err)
		}
	}
	return nil
}

// Load decodes v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := NewDefault()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigLoadFailed, err)
	}

	cfg.Storage.Elasticsearch.Addresses = ParseAddresses(strings.Join(cfg.Storage.Elasticsearch.Addresses, ","))
	cfg.Crawler.ProxyURLs = ParseAddresses(strings.Join(cfg.Crawler.ProxyURLs, ","))
	if cfg.App.Debug {
		cfg.Logger.Level = logger.DebugLevel
		cfg.Logger.Development = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates every section.
func (c *Config) Validate() error {
	return errors.Join(
		c.Crawler.Validate(),
		c.Storage.Validate(),
		c.Server.Validate(),
	)
}
