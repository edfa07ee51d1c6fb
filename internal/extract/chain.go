// Package extract turns a parsed listing page into candidate records. Three strategies
// are tried in fixed trust order and the first one that yields records wins.
package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
)

// Strategy extracts candidate records from one page. Implementations never return
// errors: anything they cannot parse yields no records.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document, pageURL string) []domain.Record
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc struct {
	Label string
	Fn    func(doc *goquery.Document, pageURL string) []domain.Record
}

// Name returns the strategy label.
func (f StrategyFunc) Name() string { return f.Label }

// Extract calls the wrapped function.
func (f StrategyFunc) Extract(doc *goquery.Document, pageURL string) []domain.Record {
	return f.Fn(doc, pageURL)
}

// Result is the outcome of running a chain on one page.
type Result struct {
	// Strategy is the name of the strategy that produced Records, empty when none did.
	Strategy string
	Records  []domain.Record
}

// Empty reports whether no strategy produced records.
func (r Result) Empty() bool {
	return len(r.Records) == 0
}

// Chain runs strategies in order and stops at the first non-empty result.
type Chain struct {
	strategies []Strategy
	logger     logger.Interface
}

// NewChain creates a chain over the given strategies, in priority order.
func NewChain(log logger.Interface, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, logger: log}
}

// Default returns the structured-context, linked-data, markup chain.
func Default(log logger.Interface) *Chain {
	return NewChain(log,
		NewStructuredContext(log),
		NewLinkedData(log),
		NewMarkup(log),
	)
}

// Run applies the strategies to doc. Later strategies are not invoked once one succeeds.
func (c *Chain) Run(doc *goquery.Document, pageURL string) Result {
	if doc == nil {
		return Result{}
	}
	for _, s := range c.strategies {
		records := s.Extract(doc, pageURL)
		if len(records) > 0 {
			c.logger.Info("Extracted professionals",
				"strategy", s.Name(),
				"count", len(records),
				"url", pageURL,
			)
			return Result{Strategy: s.Name(), Records: records}
		}
		c.logger.Debug("Strategy yielded nothing", "strategy", s.Name(), "url", pageURL)
	}
	return Result{}
}
