package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
	"github.com/jonesrussell/north-cloud/procrawler/internal/normalize"
)

const (
	// StrategyLinkedData names the JSON-LD strategy.
	StrategyLinkedData = "linked_data"

	linkedDataSelector = `script[type="application/ld+json"]`
	localBusinessType  = "LocalBusiness"
)

// LinkedData maps schema.org LocalBusiness entries embedded as JSON-LD.
type LinkedData struct {
	logger logger.Interface
}

// NewLinkedData creates the linked-data strategy.
func NewLinkedData(log logger.Interface) *LinkedData {
	return &LinkedData{logger: log}
}

// Name returns the strategy name.
func (s *LinkedData) Name() string { return StrategyLinkedData }

// Extract parses every JSON-LD block independently; a block that fails to parse is skipped.
func (s *LinkedData) Extract(doc *goquery.Document, pageURL string) []domain.Record {
	var records []domain.Record

	doc.Find(linkedDataSelector).Each(func(i int, script *goquery.Selection) {
		text := strings.TrimSpace(script.Text())
		if text == "" {
			return
		}
		parsed, err := decodeJSON(text)
		if err != nil {
			s.logger.Debug("Skipping unparsable JSON-LD block", "index", i, "error", err, "url", pageURL)
			return
		}
		for _, entry := range flattenEntries(parsed) {
			if !isLocalBusiness(entry) {
				continue
			}
			records = append(records, buildLocalBusiness(entry, pageURL))
		}
	})

	return records
}

// flattenEntries accepts a single object, an array of objects, or a @graph container.
func flattenEntries(parsed any) []node {
	var out []node
	switch v := parsed.(type) {
	case []any:
		for _, item := range v {
			out = append(out, flattenEntries(item)...)
		}
	case map[string]any:
		out = append(out, found(v))
		if graph, ok := found(v).Get("@graph").Array(); ok {
			for _, item := range graph {
				out = append(out, flattenEntries(item)...)
			}
		}
	}
	return out
}

func isLocalBusiness(entry node) bool {
	t := entry.Get("@type")
	if !t.found {
		t = entry.Get("type")
	}
	if s, ok := t.value.(string); ok {
		return s == localBusinessType
	}
	if arr, ok := t.Array(); ok {
		for _, item := range arr {
			if s, isString := item.(string); isString && s == localBusinessType {
				return true
			}
		}
	}
	return false
}

func buildLocalBusiness(e node, pageURL string) domain.Record {
	rec := domain.Record{
		Name:        e.Get("name").String(),
		Phone:       e.Get("telephone").String(),
		Latitude:    e.Path("geo", "latitude").Float(),
		Longitude:   e.Path("geo", "longitude").Float(),
		Rating:      e.Path("aggregateRating", "ratingValue").Float(),
		ReviewCount: e.Path("aggregateRating", "reviewCount").Int(),
		Description: e.Get("description").String(),
		ProfileURL:  absoluteLink(coalesce(e.Get("url").String(), firstOf(e.Get("sameAs"))), pageURL),
		ImageURL:    absoluteLink(imageLink(e.Get("image")), pageURL),
	}

	address := e.Get("address")
	if _, isObject := address.Object(); isObject {
		rec.Address = address.Get("streetAddress").String()
		rec.City = address.Get("addressLocality").String()
		rec.State = address.Get("addressRegion").String()
		rec.Zip = address.Get("postalCode").String()
		rec.Country = countryName(address.Get("addressCountry"))
	} else {
		rec.Address = address.String()
	}
	return rec
}

// firstOf returns the node itself when it is a scalar, or its first element when it is an array.
func firstOf(n node) *string {
	if arr, ok := n.Array(); ok {
		if len(arr) == 0 {
			return nil
		}
		return found(arr[0]).String()
	}
	return n.String()
}

// imageLink handles the string, array and ImageObject encodings of schema.org image.
func imageLink(n node) *string {
	if arr, ok := n.Array(); ok {
		if len(arr) == 0 {
			return nil
		}
		n = found(arr[0])
	}
	if _, isObject := n.Object(); isObject {
		return n.Get("url").String()
	}
	return n.String()
}

// countryName handles addressCountry given as text or as a Country object.
func countryName(n node) *string {
	if _, isObject := n.Object(); isObject {
		return n.Get("name").String()
	}
	return n.String()
}

func absoluteLink(link *string, base string) *string {
	if link == nil {
		return nil
	}
	return normalize.ToAbsoluteURL(*link, base)
}
