package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	colly "github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
	"github.com/gocolly/colly/v2/proxy"
	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
)

// retryCountKey is the request context key for the retry count kept in OnError.
const retryCountKey = "retry_count"

// newCollector builds an async collector bound to ctx.
func (c *Crawler) newCollector(ctx context.Context, proxyURLs []string, log logger.Interface) (*colly.Collector, error) {
	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.Async(true),
	}
	if !c.cfg.UseRandomUserAgent && c.cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(c.cfg.UserAgent))
	}

	collector := colly.NewCollector(opts...)
	if c.transport != nil {
		collector.WithTransport(c.transport)
	}
	collector.SetRequestTimeout(c.cfg.RequestTimeout)
	// Every request starts without cookies, like a fresh browser session.
	collector.DisableCookies()

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: c.cfg.MaxConcurrency,
	}); err != nil {
		return nil, fmt.Errorf("failed to set limit rule: %w", err)
	}

	if c.cfg.UseRandomUserAgent {
		extensions.RandomUserAgent(collector)
	}
	if c.cfg.UseReferer {
		collector.OnRequest(func(r *colly.Request) {
			if referer := r.Ctx.Get(domain.CtxReferer); referer != "" {
				r.Headers.Set("Referer", referer)
			}
		})
	}

	proxies := append(append([]string{}, c.cfg.ProxyURLs...), proxyURLs...)
	if len(proxies) > 0 {
		rp, err := proxy.RoundRobinProxySwitcher(proxies...)
		if err != nil {
			return nil, fmt.Errorf("failed to create proxy switcher: %w", err)
		}
		collector.SetProxyFunc(rp)
		log.Info("Proxy rotation enabled", "proxy_count", len(proxies))
	}

	return collector, nil
}

// newRequestContext stores task metadata and the enqueuing page on a fresh colly context.
func newRequestContext(task domain.CrawlTask, referer string) *colly.Context {
	ctx := colly.NewContext()
	ctx.Put(domain.CtxLabel, string(task.Label))
	ctx.Put(domain.CtxPageNo, task.PageNo)
	ctx.Put(domain.CtxBaseURL, task.BaseURL)
	if referer != "" {
		ctx.Put(domain.CtxReferer, referer)
	}
	return ctx
}

// taskFromRequest rebuilds the task a request was enqueued for. Missing
// metadata defaults to a first listing page.
func taskFromRequest(r *colly.Request) domain.CrawlTask {
	task := domain.CrawlTask{
		URL:   r.URL.String(),
		Label: domain.LabelList,
	}
	if label := r.Ctx.Get(domain.CtxLabel); label != "" {
		task.Label = domain.Label(label)
	}
	if n, ok := r.Ctx.GetAny(domain.CtxPageNo).(int); ok {
		task.PageNo = n
	}
	task.BaseURL = r.Ctx.Get(domain.CtxBaseURL)
	return task
}

// enqueue schedules task on collector with its metadata attached. referer is
// empty for start URLs.
func enqueue(collector *colly.Collector, task domain.CrawlTask, referer string) error {
	return collector.Request("GET", task.URL, nil, newRequestContext(task, referer), nil)
}

// onError retries failed requests up to MaxRetries times. A request that still
// fails counts as an empty page for its pagination chain.
func (c *Crawler) onError(ctx context.Context, state *State, log logger.Interface) colly.ErrorCallback {
	return func(r *colly.Response, visitErr error) {
		pageURL := r.Request.URL.String()
		if ctx.Err() != nil || errors.Is(visitErr, context.Canceled) {
			log.Debug("Request canceled", "url", pageURL)
			return
		}

		count := 0
		if n, ok := r.Request.Ctx.GetAny(retryCountKey).(int); ok {
			count = n
		}
		if count < c.cfg.MaxRetries {
			r.Request.Ctx.Put(retryCountKey, count+1)
			log.Warn("Request failed, retrying",
				"url", pageURL,
				"status", r.StatusCode,
				"attempt", count+1,
				"error", visitErr,
			)
			if c.cfg.RetryDelay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(c.cfg.RetryDelay):
				}
			}
			if retryErr := r.Request.Retry(); retryErr != nil {
				log.Warn("Retry failed", "url", pageURL, "error", retryErr)
			} else {
				return
			}
		}

		log.Error("Request failed after retries",
			"url", pageURL,
			"status", r.StatusCode,
			"retries", count,
			"error", visitErr,
		)
		state.PageFailed()
		c.metrics.Page(outcomeFailed)
	}
}
