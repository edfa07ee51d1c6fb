package crawler

import (
	"context"
	"errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
	"github.com/jonesrussell/north-cloud/procrawler/internal/extract"
	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
	"github.com/jonesrussell/north-cloud/procrawler/internal/metrics"
	"github.com/jonesrussell/north-cloud/procrawler/internal/pagination"
	"github.com/jonesrussell/north-cloud/procrawler/internal/storage"
)

// Stage is the last step a page reached in HandlePage.
type Stage string

// Page stages.
const (
	StageFetched    Stage = "FETCHED"
	StageExtracted  Stage = "EXTRACTED"
	StageFiltered   Stage = "FILTERED"
	StageStored     Stage = "STORED"
	StageEnqueued   Stage = "ENQUEUED"
	StageTerminated Stage = "TERMINATED"
)

// Page outcomes reported to metrics.
const (
	outcomeStored   = "stored"
	outcomeFiltered = "filtered"
	outcomeEmpty    = "empty"
	outcomeFailed   = "failed"
	outcomeSkipped  = "skipped"
)

// PageResult is the outcome of handling one page.
type PageResult struct {
	Task      domain.CrawlTask
	Stage     Stage
	Strategy  string
	Extracted int
	Commit    CommitResult
	// Next is the follow-up task, set only when Stage is StageEnqueued.
	Next *domain.CrawlTask
}

// Handler runs extraction, commit and pagination for fetched listing pages.
type Handler struct {
	chain   *extract.Chain
	state   *State
	store   storage.RecordStore
	pager   *pagination.Controller
	metrics *metrics.Metrics
	logger  logger.Interface
}

// NewHandler creates a page handler. m may be nil.
func NewHandler(
	chain *extract.Chain,
	state *State,
	store storage.RecordStore,
	pager *pagination.Controller,
	m *metrics.Metrics,
	log logger.Interface,
) *Handler {
	return &Handler{
		chain:   chain,
		state:   state,
		store:   store,
		pager:   pager,
		metrics: m,
		logger:  log,
	}
}

// HandlePage processes one fetched page. The returned error is non-nil only
// when the commit failed; errors wrapping ErrStoreWrite are fatal to the run.
func (h *Handler) HandlePage(ctx context.Context, doc *goquery.Document, task domain.CrawlTask) (PageResult, error) {
	result := PageResult{Task: task, Stage: StageFetched}

	if task.Label != domain.LabelList {
		h.logger.Debug("Skipping page with unknown label", "label", string(task.Label), "url", task.URL)
		h.metrics.Page(outcomeSkipped)
		result.Stage = StageTerminated
		return result, nil
	}

	h.logger.Info("Processing page",
		"label", string(task.Label),
		"page", task.PageNo+1,
		"url", task.URL,
	)

	extracted := h.chain.Run(doc, task.URL)
	result.Strategy = extracted.Strategy
	result.Extracted = len(extracted.Records)
	if extracted.Empty() {
		h.logger.Warn("No professionals found on page", "page", task.PageNo+1, "url", task.URL)
		h.state.PageEmpty()
		h.metrics.Page(outcomeEmpty)
		result.Stage = StageTerminated
		return result, nil
	}
	result.Stage = StageExtracted
	h.metrics.Strategy(extracted.Strategy)

	commit, err := h.state.Commit(ctx, extracted.Records, h.store)
	result.Commit = commit
	h.recordCommit(commit)
	if err != nil {
		result.Stage = StageTerminated
		if errors.Is(err, ErrStoreWrite) {
			h.metrics.StoreWrite(false)
			h.metrics.Page(outcomeFailed)
			h.logger.Error("Failed to save professionals",
				"error", err,
				"page", task.PageNo+1,
				"url", task.URL,
				"batch_size", commit.Candidates-commit.Capped-commit.Duplicates-commit.Keyless,
			)
		}
		return result, err
	}
	result.Stage = StageFiltered
	if commit.Keyless > 0 {
		h.logger.Warn("Dropped professionals without an identity key",
			"count", commit.Keyless,
			"page", task.PageNo+1,
			"url", task.URL,
		)
	}

	if len(commit.Accepted) > 0 {
		h.metrics.StoreWrite(true)
		h.metrics.Page(outcomeStored)
		result.Stage = StageStored
		h.logger.Info("Saved professionals",
			"count", len(commit.Accepted),
			"total", commit.SavedTotal,
			"target", h.pager.TargetCount,
		)
	} else {
		h.metrics.Page(outcomeFiltered)
	}

	next := h.pager.Next(task, commit.SavedTotal, result.Extracted)
	if next == nil {
		h.logger.Info("Pagination stopped",
			"saved", commit.SavedTotal,
			"page", task.PageNo+1,
			"max_pages", h.pager.MaxPages,
			"extracted", result.Extracted,
		)
		result.Stage = StageTerminated
		return result, nil
	}

	h.logger.Info("Enqueuing next page", "url", next.URL, "page", next.PageNo+1)
	result.Next = next
	result.Stage = StageEnqueued
	return result, nil
}

func (h *Handler) recordCommit(commit CommitResult) {
	h.metrics.Records(metrics.RecordAccepted, len(commit.Accepted))
	h.metrics.Records(metrics.RecordDuplicate, commit.Duplicates)
	h.metrics.Records(metrics.RecordKeyless, commit.Keyless)
	h.metrics.Records(metrics.RecordCapped, commit.Capped)
}
