package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
	"github.com/jonesrussell/north-cloud/procrawler/internal/normalize"
)

// StrategyMarkup names the card-markup heuristic strategy.
const StrategyMarkup = "markup"

// Card selectors. Class-substring selectors are fallbacks for renamed classes.
const (
	cardSelector           = ".hz-pro-ctl"
	nameSelector           = "span.hz-track-me"
	ratingSelector         = "span.hz-star-rating"
	ratingFallbackSelector = `[class*="rating"]`
	reviewSelector         = "span.hz-star-rate__review-string"
	reviewFallbackSelector = `[class*="review"]`
)

const (
	minAddressFragmentLen = 4
	starGlyph             = "★"
	reviewWord            = "Review"
	// Address lines are the second and third qualifying fragments; the first is the name.
	addressFirstFragment = 1
	addressLastFragment  = 3
)

// Markup reads professional cards straight from the listing markup.
type Markup struct {
	logger logger.Interface
}

// NewMarkup creates the markup heuristic strategy.
func NewMarkup(log logger.Interface) *Markup {
	return &Markup{logger: log}
}

// Name returns the strategy name.
func (s *Markup) Name() string { return StrategyMarkup }

// Extract returns one record per card that has a name or a profile link.
func (s *Markup) Extract(doc *goquery.Document, pageURL string) []domain.Record {
	var records []domain.Record
	dropped := 0

	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		rec := buildCard(card, pageURL)
		if rec.Name == nil && rec.ProfileURL == nil {
			dropped++
			return
		}
		records = append(records, rec)
	})

	if dropped > 0 {
		s.logger.Debug("Dropped empty professional cards", "count", dropped, "url", pageURL)
	}
	return records
}

func buildCard(card *goquery.Selection, pageURL string) domain.Record {
	name := normalize.NonEmpty(fragmentText(card.Find(nameSelector).First()))
	if name == nil {
		name = normalize.NonEmpty(fragmentText(card.Find("span").First()))
	}

	ratingText := firstNonEmptyText(card, ratingSelector, ratingFallbackSelector)
	reviewText := firstNonEmptyText(card, reviewSelector, reviewFallbackSelector)

	var fragments []string
	card.Find("span").Each(func(_ int, span *goquery.Selection) {
		text := fragmentText(span)
		if utf8.RuneCountInString(text) < minAddressFragmentLen ||
			strings.Contains(text, starGlyph) ||
			strings.Contains(text, reviewWord) {
			return
		}
		fragments = append(fragments, text)
	})

	var address *string
	if len(fragments) > addressFirstFragment {
		last := min(len(fragments), addressLastFragment)
		address = normalize.NonEmpty(strings.Join(fragments[addressFirstFragment:last], ", "))
	}

	var profileURL *string
	if href, ok := card.Attr("href"); ok {
		profileURL = normalize.ToAbsoluteURL(href, pageURL)
	}

	rec := domain.Record{
		Name:       name,
		Address:    address,
		ProfileURL: profileURL,
	}
	if ratingText != "" {
		rec.Rating = normalize.FirstNumber(ratingText)
	}
	if reviewText != "" {
		rec.ReviewCount = normalize.FirstInteger(reviewText)
	}
	return rec
}

// fragmentText returns the cleaned text of a selection's markup.
func fragmentText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return normalize.CollapseSpace(sel.Text())
	}
	return normalize.CleanText(html)
}

// firstNonEmptyText returns the collapsed text of the first selector that has any.
func firstNonEmptyText(card *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if text := normalize.CollapseSpace(card.Find(sel).Text()); text != "" {
			return text
		}
	}
	return ""
}
