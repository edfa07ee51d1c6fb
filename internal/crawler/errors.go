package crawler

import "errors"

var (
	// ErrStoreWrite wraps a failed record store write. It ends the run.
	ErrStoreWrite = errors.New("record store write failed")

	// ErrRunAborted is returned for commits attempted after the run was aborted,
	// and by Run when the run did not finish normally.
	ErrRunAborted = errors.New("crawl run aborted")

	// ErrNoStartURLs is returned when a run has nothing to seed.
	ErrNoStartURLs = errors.New("no start URLs")
)
