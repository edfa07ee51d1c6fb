package extract_test

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
	"github.com/jonesrussell/north-cloud/procrawler/internal/extract"
	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredContext(t *testing.T) {
	t.Parallel()

	s := extract.NewStructuredContext(logger.NewNoOp())
	records := s.Extract(page(t, structuredContextScript), pageURL)
	require.Len(t, records, 2, "non-object entities are skipped")

	beta := records[0]
	assert.Equal(t, "9", *beta.ProfessionalID)
	assert.Equal(t, "Fallback Name", *beta.Name)
	assert.Equal(t, "https://www.houzz.com/pro/beta-builders", *beta.ProfileURL)
	assert.Equal(t, "https://st.hzcdn.com/logo.png", *beta.ImageURL)
	assert.InDelta(t, 4.5, *beta.Rating, 1e-9)
	assert.Equal(t, 8, *beta.ReviewCount)
	assert.Nil(t, beta.City)

	acme := records[1]
	assert.Equal(t, "10", *acme.ProfessionalID)
	assert.Equal(t, "Acme Kitchens", *acme.Name)
	assert.Equal(t, "12 Oak St", *acme.Address)
	assert.Equal(t, "Austin", *acme.City)
	assert.Equal(t, "TX", *acme.State)
	assert.Equal(t, "78701", *acme.Zip)
	assert.Equal(t, "US", *acme.Country)
	assert.Equal(t, "(512) 555-0100", *acme.Phone)
	assert.InDelta(t, 30.27, *acme.Latitude, 1e-9)
	assert.InDelta(t, -97.74, *acme.Longitude, 1e-9)
	assert.InDelta(t, 4.9, *acme.Rating, 1e-9)
	assert.Equal(t, 37, *acme.ReviewCount)
	assert.Equal(t, "Kitchens since 1998", *acme.Description)
	assert.Equal(t, "https://www.houzz.com/pro/acme-kitchens", *acme.ProfileURL)
	assert.Equal(t, "https://st.hzcdn.com/fimgs/abc123_0-w240-h240-b0-p0.jpg", *acme.ImageURL)
}

func TestStructuredContextFallsThrough(t *testing.T) {
	t.Parallel()

	s := extract.NewStructuredContext(logger.NewNoOp())

	tests := []struct {
		name string
		html string
	}{
		{name: "container absent", html: `<div>nothing here</div>`},
		{name: "container empty", html: `<script id="hz-ctx"></script>`},
		{name: "malformed json", html: `<script id="hz-ctx">{"data":</script>`},
		{name: "stores missing", html: `<script id="hz-ctx">{"data":{}}</script>`},
		{name: "store is not an object", html: `<script id="hz-ctx">{"data":{"stores":{"data":{"ProfessionalStore":{"data":[1,2]}}}}}</script>`},
		{name: "empty entity collection", html: `<script id="hz-ctx">{"data":{"stores":{"data":{"ProfessionalStore":{"data":{}}}}}}</script>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Empty(t, s.Extract(page(t, tt.html), pageURL))
		})
	}
}

func TestStructuredContextProfileFallsBackToID(t *testing.T) {
	t.Parallel()

	html := `<script id="hz-ctx">{"data":{"stores":{"data":{"ProfessionalStore":{"data":{"77":{"name":"Solo"}}}}}}}</script>`
	records := extract.NewStructuredContext(logger.NewNoOp()).Extract(page(t, html), pageURL)
	require.Len(t, records, 1)
	assert.Equal(t, "https://www.houzz.com/professionals/pf~77", *records[0].ProfileURL)
	assert.Nil(t, records[0].ImageURL)
	assert.Nil(t, records[0].Rating)
}

func TestStructuredContextLargeNumericUserID(t *testing.T) {
	t.Parallel()

	html := `<script id="hz-ctx">{"data":{"stores":{"data":{
  "ProfessionalStore":{"data":{"5":{"userId":9007199254740993,"numReviews":3}}},
  "UserStore":{"data":{
    "9007199254740992":{"displayName":"Wrong User"},
    "9007199254740993":{"displayName":"Big Id Builders","userName":"big-id-builders"}
  }}
}}}}</script>`

	records := extract.NewStructuredContext(logger.NewNoOp()).Extract(page(t, html), pageURL)
	require.Len(t, records, 1)
	assert.Equal(t, "Big Id Builders", *records[0].Name)
	assert.Equal(t, "https://www.houzz.com/pro/big-id-builders", *records[0].ProfileURL)
	assert.Equal(t, 3, *records[0].ReviewCount)
}

func TestLinkedData(t *testing.T) {
	t.Parallel()

	s := extract.NewLinkedData(logger.NewNoOp())
	records := s.Extract(page(t, linkedDataScripts), pageURL)
	require.Len(t, records, 2)

	gamma := records[0]
	assert.Equal(t, "Gamma Remodel", *gamma.Name)
	assert.Equal(t, "512-555-0199", *gamma.Phone)
	assert.Equal(t, "1 Main St", *gamma.Address)
	assert.Equal(t, "Austin", *gamma.City)
	assert.Equal(t, "TX", *gamma.State)
	assert.Equal(t, "78702", *gamma.Zip)
	assert.Equal(t, "US", *gamma.Country)
	assert.InDelta(t, 30.1, *gamma.Latitude, 1e-9)
	assert.InDelta(t, -97.7, *gamma.Longitude, 1e-9)
	assert.InDelta(t, 4.8, *gamma.Rating, 1e-9)
	assert.Equal(t, 12, *gamma.ReviewCount)
	assert.Equal(t, "https://www.houzz.com/pro/gamma", *gamma.ProfileURL)
	assert.Equal(t, "https://img.test/g.jpg", *gamma.ImageURL)
	assert.Nil(t, gamma.ProfessionalID)

	delta := records[1]
	assert.Equal(t, "Delta Design", *delta.Name)
	assert.Equal(t, "5 Elm St", *delta.Address)
	assert.Nil(t, delta.City)
	assert.Equal(t, "https://delta.test", *delta.ProfileURL)
}

func TestLinkedDataIgnoresOtherTypes(t *testing.T) {
	t.Parallel()

	html := `<script type="application/ld+json">{"@type":"Organization","name":"Not a business"}</script>`
	assert.Empty(t, extract.NewLinkedData(logger.NewNoOp()).Extract(page(t, html), pageURL))
}

func TestMarkup(t *testing.T) {
	t.Parallel()

	s := extract.NewMarkup(logger.NewNoOp())
	records := s.Extract(page(t, markupCards), pageURL)
	require.Len(t, records, 2, "cards without name or link are dropped")

	epsilon := records[0]
	assert.Equal(t, "Epsilon Homes", *epsilon.Name)
	assert.InDelta(t, 4.7, *epsilon.Rating, 1e-9)
	assert.Equal(t, 23, *epsilon.ReviewCount)
	assert.Equal(t, "701 Pine Rd, Austin, TX 78703", *epsilon.Address)
	assert.Equal(t, "https://www.houzz.com/pro/epsilon", *epsilon.ProfileURL)
	assert.Nil(t, epsilon.City)
	assert.Nil(t, epsilon.ImageURL)

	zeta := records[1]
	assert.Equal(t, "Zeta Build", *zeta.Name)
	assert.InDelta(t, 4.2, *zeta.Rating, 1e-9)
	assert.Equal(t, 5, *zeta.ReviewCount)
	assert.Nil(t, zeta.Address)
	assert.Equal(t, "https://other.test/zeta", *zeta.ProfileURL)
}

type spy struct {
	name    string
	calls   int
	records []domain.Record
}

func (s *spy) strategy() extract.Strategy {
	return extract.StrategyFunc{
		Label: s.name,
		Fn: func(_ *goquery.Document, _ string) []domain.Record {
			s.calls++
			return s.records
		},
	}
}

func TestChainShortCircuits(t *testing.T) {
	t.Parallel()

	linked := &spy{name: "linked"}
	markup := &spy{name: "markup"}
	chain := extract.NewChain(logger.NewNoOp(),
		extract.NewStructuredContext(logger.NewNoOp()),
		linked.strategy(),
		markup.strategy(),
	)

	result := chain.Run(page(t, structuredContextScript, linkedDataScripts, markupCards), pageURL)
	assert.Equal(t, extract.StrategyStructuredContext, result.Strategy)
	assert.Len(t, result.Records, 2)
	assert.Zero(t, linked.calls)
	assert.Zero(t, markup.calls)
}

func TestChainFallsBackInOrder(t *testing.T) {
	t.Parallel()

	chain := extract.Default(logger.NewNoOp())

	result := chain.Run(page(t, `<script id="hz-ctx">{broken</script>`, linkedDataScripts, markupCards), pageURL)
	assert.Equal(t, extract.StrategyLinkedData, result.Strategy)

	result = chain.Run(page(t, markupCards), pageURL)
	assert.Equal(t, extract.StrategyMarkup, result.Strategy)
	assert.Len(t, result.Records, 2)

	result = chain.Run(page(t, `<p>no listings</p>`), pageURL)
	assert.True(t, result.Empty())
	assert.Empty(t, result.Strategy)

	assert.True(t, chain.Run(nil, pageURL).Empty())
}

func TestChainStopsAtFirstNonEmpty(t *testing.T) {
	t.Parallel()

	name := "x"
	first := &spy{name: "first"}
	second := &spy{name: "second", records: []domain.Record{{Name: &name}}}
	third := &spy{name: "third", records: []domain.Record{{Name: &name}}}

	result := extract.NewChain(logger.NewNoOp(), first.strategy(), second.strategy(), third.strategy()).
		Run(page(t, "<p></p>"), pageURL)

	assert.Equal(t, "second", result.Strategy)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Zero(t, third.calls)
}
