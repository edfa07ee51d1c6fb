// Package normalize converts raw listing values into canonical record fields.
// Nothing here returns an error: malformed input degrades to nil or the zero value.
package normalize

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SiteURL is the listing site root used to resolve relative links and build canonical paths.
const SiteURL = "https://www.houzz.com"

// Canonical profile paths, joined onto SiteURL.
const (
	profileSlugPath = "/pro/"
	profileIDPath   = "/professionals/pf~"
)

// ratingScale is the divisor for ratings encoded as rating*10.
const ratingScale = 10

var (
	decimalPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
	integerPattern = regexp.MustCompile(`\d+`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// ToAbsoluteURL resolves href against base. It returns nil for empty or malformed input.
func ToAbsoluteURL(href, base string) *string {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil
	}
	if base == "" {
		base = SiteURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	resolved := baseURL.ResolveReference(ref)
	if resolved.Scheme == "" || resolved.Host == "" {
		return nil
	}
	abs := resolved.String()
	return &abs
}

// CleanText strips script, style, noscript and iframe nodes from an HTML fragment
// and returns its text with whitespace runs collapsed.
func CleanText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return CollapseSpace(fragment)
	}
	doc.Find("script, style, noscript, iframe").Remove()
	return CollapseSpace(doc.Text())
}

// CollapseSpace replaces every whitespace run with a single space and trims the result.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// DecodeTenthsRating converts a rating stored as rating*10 (49) into its decimal form (4.9).
func DecodeTenthsRating(v *int) *float64 {
	if v == nil {
		return nil
	}
	rating := float64(*v) / ratingScale
	return &rating
}

// BuildProfileURL picks, in order: the link made absolute, the slug path, the id path.
// It returns nil only when all three inputs are empty.
func BuildProfileURL(link, slug, fallbackID string) *string {
	if abs := ToAbsoluteURL(link, SiteURL); abs != nil {
		return abs
	}
	if slug = strings.TrimSpace(slug); slug != "" {
		u := SiteURL + profileSlugPath + url.PathEscape(slug)
		return &u
	}
	if fallbackID = strings.TrimSpace(fallbackID); fallbackID != "" {
		u := SiteURL + profileIDPath + url.PathEscape(fallbackID)
		return &u
	}
	return nil
}

// Slugify lowercases s and replaces whitespace runs with hyphens.
func Slugify(s string) string {
	return spacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
}

// NonEmpty returns a pointer to the trimmed string, or nil when it is empty.
func NonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// StringFrom coerces a JSON scalar into a non-empty string pointer.
func StringFrom(v any) *string {
	switch t := v.(type) {
	case string:
		return NonEmpty(t)
	case float64:
		return NonEmpty(strconv.FormatFloat(t, 'f', -1, 64))
	case json.Number:
		return NonEmpty(t.String())
	case bool:
		return NonEmpty(strconv.FormatBool(t))
	default:
		return nil
	}
}

// FloatFrom coerces a JSON number or numeric string into a float pointer.
func FloatFrom(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// IntFrom coerces a JSON number or numeric string into an int pointer.
// Fractional values are truncated.
func IntFrom(v any) *int {
	f := FloatFrom(v)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

// FirstNumber returns the first decimal number found in text.
func FirstNumber(text string) *float64 {
	match := decimalPattern.FindString(text)
	if match == "" {
		return nil
	}
	return FloatFrom(match)
}

// FirstInteger returns the first run of digits found in text.
func FirstInteger(text string) *int {
	match := integerPattern.FindString(text)
	if match == "" {
		return nil
	}
	i, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &i
}
