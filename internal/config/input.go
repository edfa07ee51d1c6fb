package config

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/jonesrussell/north-cloud/procrawler/internal/normalize"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Run input defaults
const (
	DefaultResultsWanted = 50
	DefaultMaxPages      = 10
	// UnboundedMaxPages is the page ceiling when max_pages is not numeric.
	UnboundedMaxPages = 999
	// DirectoryURL is the listing root used when no start URL is supplied.
	DirectoryURL = normalize.SiteURL + "/professionals"
)

// ProxyConfiguration lists proxies supplied with the run input.
type ProxyConfiguration struct {
	ProxyURLs []string `json:"proxyUrls,omitempty" mapstructure:"proxyUrls" yaml:"proxyUrls"`
}

// RawInput is run input as supplied by a user. Numeric fields stay loosely
// typed until Resolve applies the defaulting rules.
type RawInput struct {
	Profession         string              `json:"profession,omitempty"         mapstructure:"profession"         yaml:"profession"`
	Location           string              `json:"location,omitempty"           mapstructure:"location"           yaml:"location"`
	ResultsWanted      any                 `json:"results_wanted,omitempty"     mapstructure:"results_wanted"     yaml:"results_wanted"`
	MaxPages           any                 `json:"max_pages,omitempty"          mapstructure:"max_pages"          yaml:"max_pages"`
	Dedupe             *bool               `json:"dedupe,omitempty"             mapstructure:"dedupe"             yaml:"dedupe"`
	CollectDetails     *bool               `json:"collectDetails,omitempty"     mapstructure:"collectDetails"     yaml:"collectDetails"`
	StartURLs          []any               `json:"startUrls,omitempty"          mapstructure:"startUrls"          yaml:"startUrls"`
	StartURL           string              `json:"startUrl,omitempty"           mapstructure:"startUrl"           yaml:"startUrl"`
	URL                string              `json:"url,omitempty"                mapstructure:"url"                yaml:"url"`
	ProxyConfiguration *ProxyConfiguration `json:"proxyConfiguration,omitempty" mapstructure:"proxyConfiguration" yaml:"proxyConfiguration"`
}

// Input is resolved run input.
type Input struct {
	Profession    string   `json:"profession,omitempty"`
	Location      string   `json:"location,omitempty"`
	ResultsWanted int      `json:"results_wanted"`
	MaxPages      int      `json:"max_pages"`
	Dedupe        bool     `json:"dedupe"`
	StartURLs     []string `json:"start_urls"`
	ProxyURLs     []string `json:"proxy_urls,omitempty"`
	// CollectDetails is accepted for compatibility; detail pages are never crawled.
	CollectDetails bool `json:"collect_details,omitempty"`
}

// Unbounded reports whether no results target applies.
func (in Input) Unbounded() bool {
	return in.ResultsWanted == math.MaxInt
}

// DecodeInput decodes a loosely typed map (JSON body, YAML file, viper section).
func DecodeInput(raw map[string]any) (*RawInput, error) {
	var in RawInput
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &in,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if decodeErr := decoder.Decode(raw); decodeErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, decodeErr)
	}
	// mapstructure leaves a null member unset; keep it apart from a missing key.
	if v, ok := raw["results_wanted"]; ok && v == nil {
		in.ResultsWanted = nullBound{}
	}
	if v, ok := raw["max_pages"]; ok && v == nil {
		in.MaxPages = nullBound{}
	}
	return &in, nil
}

// LoadInputFile reads run input from a YAML or JSON file.
func LoadInputFile(path string) (*RawInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input file %s: %w", path, err)
	}
	raw := map[string]any{}
	if unmarshalErr := yaml.Unmarshal(data, &raw); unmarshalErr != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidInput, path, unmarshalErr)
	}
	return DecodeInput(raw)
}

// Resolve applies defaults and bounds and collects the start URLs.
func (r *RawInput) Resolve() (Input, error) {
	if r == nil {
		r = &RawInput{}
	}

	in := Input{
		Profession:    strings.TrimSpace(r.Profession),
		Location:      strings.TrimSpace(r.Location),
		ResultsWanted: resolveBound(r.ResultsWanted, DefaultResultsWanted, math.MaxInt),
		MaxPages:      resolveBound(r.MaxPages, DefaultMaxPages, UnboundedMaxPages),
		Dedupe:        r.Dedupe == nil || *r.Dedupe,
	}
	in.CollectDetails = r.CollectDetails != nil && *r.CollectDetails
	if r.ProxyConfiguration != nil {
		in.ProxyURLs = append(in.ProxyURLs, r.ProxyConfiguration.ProxyURLs...)
	}

	urls, err := r.startURLs()
	if err != nil {
		return Input{}, err
	}
	if len(urls) == 0 {
		urls = []string{DefaultStartURL(in.Profession, in.Location)}
	}
	in.StartURLs = urls
	return in, nil
}

// startURLs gathers startUrls entries (strings or {url} objects), then startUrl, then url.
func (r *RawInput) startURLs() ([]string, error) {
	var urls []string
	for _, item := range r.StartURLs {
		switch v := item.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				urls = append(urls, s)
			}
		case nil:
		default:
			var entry struct {
				URL string `mapstructure:"url"`
			}
			if err := mapstructure.WeakDecode(v, &entry); err != nil {
				continue
			}
			if s := strings.TrimSpace(entry.URL); s != "" {
				urls = append(urls, s)
			}
		}
	}
	if s := strings.TrimSpace(r.StartURL); s != "" {
		urls = append(urls, s)
	}
	if s := strings.TrimSpace(r.URL); s != "" {
		urls = append(urls, s)
	}

	for _, u := range urls {
		parsed, err := url.Parse(u)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return nil, fmt.Errorf("%w: start URL %q is not an absolute http(s) URL", ErrInvalidInput, u)
		}
	}
	return urls, nil
}

// DefaultStartURL builds the listing URL for a profession and location.
// A location without a profession is ignored.
func DefaultStartURL(profession, location string) string {
	prof := normalize.Slugify(profession)
	loc := normalize.Slugify(location)
	switch {
	case prof != "" && loc != "":
		return DirectoryURL + "/" + prof + "/" + loc
	case prof != "":
		return DirectoryURL + "/" + prof
	default:
		return DirectoryURL
	}
}

// nullBound marks a bound that was present in the input with a null value.
type nullBound struct{}

// resolveBound returns def when v was never supplied. Otherwise v is coerced
// to a number: null, blank strings and false count as 0, true as 1, and
// anything that is not a finite number means unbounded. The result is at
// least 1.
func resolveBound(v any, def, unbounded int) int {
	if v == nil {
		return def
	}

	var f float64
	switch n := v.(type) {
	case nullBound:
		f = 0
	case bool:
		if n {
			f = 1
		}
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float64:
		f = n
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			break
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return unbounded
		}
		f = parsed
	default:
		return unbounded
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return unbounded
	}
	if f >= math.MaxInt {
		return math.MaxInt
	}
	return max(1, int(f))
}

// Merge returns a copy of r with every field that o sets taken from o.
func (r *RawInput) Merge(o *RawInput) *RawInput {
	out := RawInput{}
	if r != nil {
		out = *r
	}
	if o == nil {
		return &out
	}
	if o.Profession != "" {
		out.Profession = o.Profession
	}
	if o.Location != "" {
		out.Location = o.Location
	}
	if o.ResultsWanted != nil {
		out.ResultsWanted = o.ResultsWanted
	}
	if o.MaxPages != nil {
		out.MaxPages = o.MaxPages
	}
	if o.Dedupe != nil {
		out.Dedupe = o.Dedupe
	}
	if o.CollectDetails != nil {
		out.CollectDetails = o.CollectDetails
	}
	if len(o.StartURLs) > 0 {
		out.StartURLs = o.StartURLs
	}
	if o.StartURL != "" {
		out.StartURL = o.StartURL
	}
	if o.URL != "" {
		out.URL = o.URL
	}
	if o.ProxyConfiguration != nil {
		out.ProxyConfiguration = o.ProxyConfiguration
	}
	return &out
}
