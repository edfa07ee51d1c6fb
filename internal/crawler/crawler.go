// Package crawler drives a listing crawl: it seeds one pagination chain per
// start URL, hands every fetched page to the Handler and stops enqueueing once
// the run is done or aborted.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	colly "github.com/gocolly/colly/v2"
	"github.com/google/uuid"
	"github.com/jonesrussell/north-cloud/procrawler/internal/config"
	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
	"github.com/jonesrussell/north-cloud/procrawler/internal/extract"
	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
	"github.com/jonesrussell/north-cloud/procrawler/internal/metrics"
	"github.com/jonesrussell/north-cloud/procrawler/internal/pagination"
	"github.com/jonesrussell/north-cloud/procrawler/internal/storage"
)

// Status is the final state of a run.
type Status string

// Run statuses.
const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusEmpty     Status = "empty"
	StatusAborted   Status = "aborted"
)

// Summary reports the outcome of a run.
type Summary struct {
	RunID      string       `json:"run_id"`
	Status     Status       `json:"status"`
	Input      config.Input `json:"input"`
	Stats      Stats        `json:"stats"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at,omitzero"`
	Error      string       `json:"error,omitempty"`
	// Err is the error that aborted the run.
	Err error `json:"-"`
}

// Duration returns how long the run took.
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Crawler runs listing crawls against a record store.
type Crawler struct {
	cfg       *config.CrawlerConfig
	store     storage.RecordStore
	chain     *extract.Chain
	metrics   *metrics.Metrics
	logger    logger.Interface
	transport http.RoundTripper
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithMetrics reports run, page and record counters to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Crawler) {
		c.metrics = m
	}
}

// WithChain replaces the default extraction chain.
func WithChain(chain *extract.Chain) Option {
	return func(c *Crawler) {
		c.chain = chain
	}
}

// WithTransport sets the HTTP transport used by the collector.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Crawler) {
		c.transport = rt
	}
}

// New creates a crawler. cfg may be nil for defaults.
func New(cfg *config.CrawlerConfig, store storage.RecordStore, log logger.Interface, opts ...Option) *Crawler {
	if cfg == nil {
		cfg = config.NewCrawlerConfig()
	}
	log = log.WithComponent("crawler")
	c := &Crawler{
		cfg:    cfg,
		store:  store,
		logger: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.chain == nil {
		c.chain = extract.Default(log.WithComponent("extract"))
	}
	return c
}

// Run crawls every start URL of in and blocks until all pagination chains end.
// A store failure aborts the run: the summary has StatusAborted and the
// returned error wraps ErrRunAborted.
func (c *Crawler) Run(ctx context.Context, in config.Input) (*Summary, error) {
	return c.RunWithID(ctx, uuid.NewString(), in)
}

// RunWithID is Run with a caller-chosen run id.
func (c *Crawler) RunWithID(ctx context.Context, runID string, in config.Input) (*Summary, error) {
	summary := &Summary{
		RunID:     runID,
		Status:    StatusRunning,
		Input:     in,
		StartedAt: time.Now(),
	}
	if len(in.StartURLs) == 0 {
		return summary, ErrNoStartURLs
	}

	log := c.logger.With("run_id", runID)
	state := NewState(runID, in.ResultsWanted, in.Dedupe)
	pager := pagination.NewController(in.ResultsWanted, in.MaxPages)
	handler := NewHandler(c.chain, state, c.store, pager, c.metrics, log)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	collector, err := c.newCollector(runCtx, in.ProxyURLs, log)
	if err != nil {
		return summary, err
	}

	collector.OnError(c.onError(runCtx, state, log))
	collector.OnHTML("html", func(e *colly.HTMLElement) {
		if runCtx.Err() != nil || len(e.DOM.Nodes) == 0 {
			return
		}
		task := taskFromRequest(e.Request)
		doc := goquery.NewDocumentFromNode(e.DOM.Nodes[0])

		result, handleErr := handler.HandlePage(runCtx, doc, task)
		if handleErr != nil {
			if errors.Is(handleErr, ErrStoreWrite) {
				log.Error("Aborting run", "error", handleErr)
				cancel()
			}
			return
		}
		// Another chain may have filled the target since this page committed.
		if result.Next == nil || runCtx.Err() != nil || state.Aborted() || state.TargetReached() {
			return
		}
		if enqueueErr := enqueue(collector, *result.Next, e.Request.URL.String()); enqueueErr != nil {
			log.Warn("Failed to enqueue next page", "url", result.Next.URL, "error", enqueueErr)
		}
	})

	c.metrics.RunStarted()
	target := strconv.Itoa(in.ResultsWanted)
	if in.Unbounded() {
		target = "unbounded"
	}
	if in.CollectDetails {
		log.Debug("Detail page collection is not supported, ignoring collectDetails")
	}
	log.Info("Starting crawl",
		"start_urls", len(in.StartURLs),
		"results_wanted", target,
		"max_pages", in.MaxPages,
		"dedupe", in.Dedupe,
	)

	for _, u := range in.StartURLs {
		task := domain.CrawlTask{
			URL:     u,
			PageNo:  0,
			BaseURL: pagination.CanonicalBaseURL(u),
			Label:   domain.LabelList,
		}
		if seedErr := enqueue(collector, task, ""); seedErr != nil {
			log.Warn("Failed to enqueue start URL", "url", u, "error", seedErr)
		}
	}
	collector.Wait()

	summary.FinishedAt = time.Now()
	summary.Stats = state.Stats()
	summary.Status, summary.Err = finalStatus(ctx, state)
	if summary.Err != nil {
		summary.Error = summary.Err.Error()
	}
	c.metrics.RunFinished(string(summary.Status))

	log.Info(fmt.Sprintf("Finished. Saved %d professionals", summary.Stats.Saved),
		"status", string(summary.Status),
		"pages", summary.Stats.Pages,
		"duration", summary.Duration().String(),
	)

	if summary.Status == StatusAborted {
		return summary, fmt.Errorf("%w: %w", ErrRunAborted, summary.Err)
	}
	return summary, nil
}

func finalStatus(ctx context.Context, state *State) (Status, error) {
	if err := state.Err(); err != nil {
		return StatusAborted, err
	}
	if err := ctx.Err(); err != nil {
		return StatusAborted, err
	}
	if state.Saved() == 0 {
		return StatusEmpty, nil
	}
	return StatusCompleted, nil
}
