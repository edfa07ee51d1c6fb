package api

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonesrussell/north-cloud/procrawler/internal/config"
	"github.com/jonesrussell/north-cloud/procrawler/internal/crawler"
	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
)

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Runner executes one crawl run.
type Runner interface {
	RunWithID(ctx context.Context, runID string, in config.Input) (*crawler.Summary, error)
}

// RunManager starts runs in the background and keeps their summaries.
type RunManager struct {
	runner Runner
	logger logger.Interface

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.RWMutex
	runs map[string]*crawler.Summary
}

// NewRunManager creates a manager whose runs are canceled by Shutdown.
func NewRunManager(runner Runner, log logger.Interface) *RunManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &RunManager{
		runner: runner,
		logger: log,
		ctx:    ctx,
		cancel: cancel,
		runs:   make(map[string]*crawler.Summary),
	}
}

// Start launches a run and returns its initial summary.
func (m *RunManager) Start(in config.Input) crawler.Summary {
	runID := uuid.NewString()
	pending := &crawler.Summary{
		RunID:     runID,
		Status:    crawler.StatusRunning,
		Input:     in,
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	m.runs[runID] = pending
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		summary, err := m.runner.RunWithID(m.ctx, runID, in)
		if err != nil {
			m.logger.Error("Run failed", "run_id", runID, "error", err)
		}
		if summary == nil {
			summary = &crawler.Summary{RunID: runID, Status: crawler.StatusAborted, Input: in, StartedAt: pending.StartedAt}
		}
		if summary.FinishedAt.IsZero() {
			summary.FinishedAt = time.Now()
		}
		if summary.Status == crawler.StatusRunning {
			summary.Status = crawler.StatusAborted
		}
		if err != nil && summary.Error == "" {
			summary.Error = err.Error()
		}

		m.mu.Lock()
		m.runs[runID] = summary
		m.mu.Unlock()
	}()

	return *pending
}

// Get returns a copy of the summary for runID.
func (m *RunManager) Get(runID string) (crawler.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.runs[runID]
	if !ok {
		return crawler.Summary{}, ErrRunNotFound
	}
	return *s, nil
}

// List returns all summaries, newest first.
func (m *RunManager) List() []crawler.Summary {
	m.mu.RLock()
	out := make([]crawler.Summary, 0, len(m.runs))
	for _, s := range m.runs {
		out = append(out, *s)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b crawler.Summary) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	return out
}

// Wait blocks until every started run has finished.
func (m *RunManager) Wait() {
	m.wg.Wait()
}

// Shutdown cancels running crawls and waits for them, or for ctx.
func (m *RunManager) Shutdown(ctx context.Context) error {
	m.cancel()
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
