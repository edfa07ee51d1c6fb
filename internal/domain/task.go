package domain

// Label distinguishes listing pages from other page kinds. Only LabelList is crawled.
type Label string

// LabelList marks a paginated listing page.
const LabelList Label = "LIST"

// CrawlTask is one page fetch with its pagination metadata.
type CrawlTask struct {
	URL     string `json:"url"`
	PageNo  int    `json:"page_no"`
	BaseURL string `json:"base_url"`
	Label   Label  `json:"label"`
}

// Context keys used to carry a CrawlTask through the fetch substrate.
const (
	CtxLabel   = "label"
	CtxPageNo  = "page_no"
	CtxBaseURL = "base_url"
	// CtxReferer holds the URL of the page that enqueued the task.
	CtxReferer = "referer"
)
