// Package pagination decides whether a listing chain continues and computes follow-up page URLs.
package pagination

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
)

const (
	// RecordsPerPage is the site's fixed listing page size.
	RecordsPerPage = 15
	// OffsetParam is the query parameter carrying the record offset.
	OffsetParam = "fi"
)

// CanonicalBaseURL strips the query string and fragment from a listing URL.
func CanonicalBaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		base, _, _ := strings.Cut(raw, "?")
		return base
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// NextPageURL sets the offset parameter for pageNumber on the canonical base URL.
func NextPageURL(baseURL string, pageNumber int) string {
	offset := strconv.Itoa(pageNumber * RecordsPerPage)
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + "?" + OffsetParam + "=" + offset
	}
	q := u.Query()
	q.Set(OffsetParam, offset)
	u.RawQuery = q.Encode()
	return u.String()
}

// ShouldContinue reports whether another page should be requested. A page shorter
// than RecordsPerPage is the last one.
func ShouldContinue(savedCount, targetCount, pageNumber, maxPages, extractedThisPage int) bool {
	return savedCount < targetCount &&
		pageNumber+1 < maxPages &&
		extractedThisPage >= RecordsPerPage
}

// Controller emits at most one follow-up task per processed page.
type Controller struct {
	TargetCount int
	MaxPages    int
}

// NewController creates a controller for the given run limits.
func NewController(targetCount, maxPages int) *Controller {
	return &Controller{TargetCount: targetCount, MaxPages: maxPages}
}

// Next returns the follow-up task for task, or nil when the chain ends.
func (c *Controller) Next(task domain.CrawlTask, savedCount, extractedThisPage int) *domain.CrawlTask {
	if !ShouldContinue(savedCount, c.TargetCount, task.PageNo, c.MaxPages, extractedThisPage) {
		return nil
	}
	base := task.BaseURL
	if base == "" {
		base = CanonicalBaseURL(task.URL)
	}
	next := task.PageNo + 1
	return &domain.CrawlTask{
		URL:     NextPageURL(base, next),
		PageNo:  next,
		BaseURL: base,
		Label:   domain.LabelList,
	}
}
