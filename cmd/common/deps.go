// Package common provides shared utilities for command implementations.
package common

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonesrussell/north-cloud/procrawler/internal/config"
	"github.com/jonesrussell/north-cloud/procrawler/internal/crawler"
	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
	"github.com/jonesrussell/north-cloud/procrawler/internal/metrics"
	"github.com/jonesrussell/north-cloud/procrawler/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
)

// CommandDeps holds common dependencies for all commands.
type CommandDeps struct {
	Logger logger.Interface
	Config *config.Config
}

// Validate ensures all required dependencies are present.
func (d CommandDeps) Validate() error {
	if d.Logger == nil {
		return ErrLoggerRequired
	}
	if d.Config == nil {
		return ErrConfigRequired
	}
	return nil
}

// NewCommandDeps loads configuration from the global viper instance and builds the logger.
func NewCommandDeps() (*CommandDeps, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	deps := &CommandDeps{
		Logger: log.With("app", cfg.App.Name, "env", cfg.App.Environment),
		Config: cfg,
	}
	if validateErr := deps.Validate(); validateErr != nil {
		return nil, validateErr
	}
	return deps, nil
}

// Runtime is a ready crawler with its store and metrics registry.
type Runtime struct {
	Crawler  *crawler.Crawler
	Store    storage.RecordStore
	Registry *prometheus.Registry
}

// NewRuntime opens the configured store and builds a crawler over it.
func NewRuntime(ctx context.Context, deps *CommandDeps) (*Runtime, error) {
	store, err := storage.New(ctx, &deps.Config.Storage, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("create storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c := crawler.New(&deps.Config.Crawler, store, deps.Logger, crawler.WithMetrics(metrics.New(reg)))
	return &Runtime{Crawler: c, Store: store, Registry: reg}, nil
}

// MetricsHandler serves the runtime's registry.
func (r *Runtime) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}

// Close releases the store.
func (r *Runtime) Close() error {
	return r.Store.Close()
}
