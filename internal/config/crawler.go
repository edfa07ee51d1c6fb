package config

import (
	"time"
)

// Crawler defaults. Concurrency, retries and the request timeout match the
// behaviour listing sites tolerate without a session pool.
const (
	DefaultParallelism    = 5
	DefaultMaxRetries     = 3
	DefaultRequestTimeout = 90 * time.Second
	DefaultUserAgent      = "procrawler/1.0"
	DefaultRetryDelay     = 2 * time.Second
)

// CrawlerConfig holds fetch substrate settings.
type CrawlerConfig struct {
	// MaxConcurrency is the colly parallelism limit
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`
	// MaxRetries is how often a failed request is retried before the page counts as empty
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
	// RetryDelay is the pause before a retry
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	// RequestTimeout bounds one fetch
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	// UserAgent is used when UseRandomUserAgent is false
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
	// UseRandomUserAgent enables the colly RandomUserAgent extension
	UseRandomUserAgent bool `mapstructure:"use_random_user_agent" yaml:"use_random_user_agent"`
	// UseReferer sends the enqueuing listing page as the Referer header
	UseReferer bool `mapstructure:"use_referer" yaml:"use_referer"`
	// ProxyURLs are rotated round-robin; run input proxies are appended
	ProxyURLs []string `mapstructure:"proxy_urls" yaml:"proxy_urls"`
}

// NewCrawlerConfig creates a crawler configuration with the given options.
func NewCrawlerConfig(opts ...CrawlerOption) *CrawlerConfig {
	cfg := &CrawlerConfig{
		MaxConcurrency:     DefaultParallelism,
		MaxRetries:         DefaultMaxRetries,
		RetryDelay:         DefaultRetryDelay,
		RequestTimeout:     DefaultRequestTimeout,
		UserAgent:          DefaultUserAgent,
		UseRandomUserAgent: true,
		UseReferer:         true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// CrawlerOption is a function that configures a crawler configuration.
type CrawlerOption func(*CrawlerConfig)

// WithMaxConcurrency sets the maximum concurrency.
func WithMaxConcurrency(concurrency int) CrawlerOption {
	return func(c *CrawlerConfig) {
		c.MaxConcurrency = concurrency
	}
}

// WithMaxRetries sets the retry count.
func WithMaxRetries(retries int) CrawlerOption {
	return func(c *CrawlerConfig) {
		c.MaxRetries = retries
	}
}

// WithRetryDelay sets the delay between retries.
func WithRetryDelay(delay time.Duration) CrawlerOption {
	return func(c *CrawlerConfig) {
		c.RetryDelay = delay
	}
}

// WithRequestTimeout sets the request timeout.
func WithRequestTimeout(timeout time.Duration) CrawlerOption {
	return func(c *CrawlerConfig) {
		c.RequestTimeout = timeout
	}
}

// WithProxyURLs sets the proxy rotation list.
func WithProxyURLs(urls ...string) CrawlerOption {
	return func(c *CrawlerConfig) {
		c.ProxyURLs = urls
	}
}

// Validate validates the crawler configuration.
func (c *CrawlerConfig) Validate() error {
	if c.MaxConcurrency < 1 {
		return &ValidationError{Field: "crawler.max_concurrency", Value: c.MaxConcurrency, Reason: "must be positive"}
	}
	if c.MaxRetries < 0 {
		return &ValidationError{Field: "crawler.max_retries", Value: c.MaxRetries, Reason: "must be non-negative"}
	}
	if c.RequestTimeout < 0 {
		return &ValidationError{Field: "crawler.request_timeout", Value: c.RequestTimeout, Reason: "must be non-negative"}
	}
	if c.RetryDelay < 0 {
		return &ValidationError{Field: "crawler.retry_delay", Value: c.RetryDelay, Reason: "must be non-negative"}
	}
	return nil
}
