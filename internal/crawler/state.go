package crawler

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonesrussell/north-cloud/procrawler/internal/dedup"
	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
	"github.com/jonesrussell/north-cloud/procrawler/internal/storage"
)

// CommitResult describes what happened to one page's candidates.
type CommitResult struct {
	// Candidates is the number of records the page produced.
	Candidates int
	// Capped were cut because the results target was reached.
	Capped int
	// Duplicates were already in the ledger.
	Duplicates int
	// Keyless carried no identity key and were dropped.
	Keyless int
	// Accepted were written to the store.
	Accepted []domain.Record
	// SavedTotal is the run's saved count after this commit.
	SavedTotal int
}

// Stats are run counters kept alongside the saved count.
type Stats struct {
	Saved       int `json:"saved"`
	Pages       int `json:"pages"`
	EmptyPages  int `json:"empty_pages"`
	FailedPages int `json:"failed_pages"`
	Duplicates  int `json:"duplicates"`
	Keyless     int `json:"keyless"`
	Capped      int `json:"capped"`
}

// State is the shared mutable state of one run: the saved count, the dedup
// ledger and the abort flag. All of it is guarded by a single mutex, and a
// commit holds that mutex from the cap computation through the store write.
type State struct {
	mu      sync.Mutex
	runID   string
	target  int
	dedupe  bool
	ledger  *dedup.Ledger
	stats   Stats
	aborted bool
	err     error
}

// NewState creates the state for run runID.
func NewState(runID string, target int, dedupe bool) *State {
	return &State{
		runID:  runID,
		target: target,
		dedupe: dedupe,
		ledger: dedup.NewLedger(),
	}
}

// Commit caps records to the remaining target, filters them through the ledger
// (unless dedupe is off), writes the survivors as one batch and credits the
// saved count only after the write succeeds.
func (s *State) Commit(ctx context.Context, records []domain.Record, store storage.RecordStore) (CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := CommitResult{Candidates: len(records), SavedTotal: s.stats.Saved}
	if s.aborted {
		return res, ErrRunAborted
	}
	s.stats.Pages++

	remaining := max(0, s.target-s.stats.Saved)
	candidates := records
	if len(candidates) > remaining {
		candidates = candidates[:remaining]
	}
	res.Capped = len(records) - len(candidates)

	accepted := make([]domain.Record, 0, len(candidates))
	for _, r := range candidates {
		if !s.dedupe {
			accepted = append(accepted, r)
			continue
		}
		if _, _, ok := dedup.IdentityKey(r); !ok {
			res.Keyless++
			continue
		}
		if !s.ledger.Accept(r) {
			res.Duplicates++
			continue
		}
		accepted = append(accepted, r)
	}

	s.stats.Capped += res.Capped
	s.stats.Duplicates += res.Duplicates
	s.stats.Keyless += res.Keyless

	if len(accepted) == 0 {
		return res, nil
	}

	if err := store.SaveBatch(ctx, s.runID, accepted); err != nil {
		wrapped := fmt.Errorf("%w: %w", ErrStoreWrite, err)
		s.abortLocked(wrapped)
		return res, wrapped
	}

	s.stats.Saved += len(accepted)
	res.Accepted = accepted
	res.SavedTotal = s.stats.Saved
	return res, nil
}

// PageEmpty counts a page that yielded no candidates.
func (s *State) PageEmpty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Pages++
	s.stats.EmptyPages++
}

// PageFailed counts a page whose fetch failed after retries.
func (s *State) PageFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.FailedPages++
}

// abortLocked marks the run as aborted. The first error wins.
func (s *State) abortLocked(err error) {
	if !s.aborted {
		s.aborted = true
		s.err = err
	}
}

// Aborted reports whether the run was aborted.
func (s *State) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

// Err returns the error that aborted the run, if any.
func (s *State) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Saved returns the number of records written so far.
func (s *State) Saved() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.Saved
}

// TargetReached reports whether the results target has been met.
func (s *State) TargetReached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.Saved >= s.target
}

// Stats returns a snapshot of the run counters.
func (s *State) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
