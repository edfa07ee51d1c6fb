package pagination_test

import (
	"testing"

	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
	"github.com/jonesrussell/north-cloud/procrawler/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPageURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://example.test/professionals/x?fi=30",
		pagination.NextPageURL("https://example.test/professionals/x", 2))

	// Parameters on the request URL never leak into the next page when the stored base is used.
	requestURL := "https://example.test/professionals/x?fi=15&sort=reviews"
	base := pagination.CanonicalBaseURL(requestURL)
	assert.Equal(t, "https://example.test/professionals/x", base)
	assert.Equal(t, "https://example.test/professionals/x?fi=30", pagination.NextPageURL(base, 2))

	assert.Equal(t, "://bad?fi=15", pagination.NextPageURL("://bad", 1))
}

func TestCanonicalBaseURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://www.houzz.com/professionals/kitchen-remodeling/austin-tx",
		pagination.CanonicalBaseURL("https://www.houzz.com/professionals/kitchen-remodeling/austin-tx?fi=45#top"))
	assert.Equal(t, "://bad", pagination.CanonicalBaseURL("://bad?fi=15"))
}

func TestShouldContinue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		saved     int
		target    int
		pageNo    int
		maxPages  int
		extracted int
		want      bool
	}{
		{name: "full page under target", saved: 15, target: 20, pageNo: 0, maxPages: 3, extracted: 15, want: true},
		{name: "target met on full page", saved: 10, target: 10, pageNo: 0, maxPages: 10, extracted: 15, want: false},
		{name: "short page is last", saved: 7, target: 50, pageNo: 0, maxPages: 10, extracted: 7, want: false},
		{name: "page ceiling reached", saved: 30, target: 50, pageNo: 2, maxPages: 3, extracted: 15, want: false},
		{name: "single page budget", saved: 0, target: 50, pageNo: 0, maxPages: 1, extracted: 15, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := pagination.ShouldContinue(tt.saved, tt.target, tt.pageNo, tt.maxPages, tt.extracted)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestControllerNext(t *testing.T) {
	t.Parallel()

	c := pagination.NewController(20, 3)
	task := domain.CrawlTask{
		URL:     "https://www.houzz.com/professionals/kitchen-remodeling/austin-tx",
		PageNo:  0,
		BaseURL: "https://www.houzz.com/professionals/kitchen-remodeling/austin-tx",
		Label:   domain.LabelList,
	}

	next := c.Next(task, 15, 15)
	require.NotNil(t, next)
	assert.Equal(t, 1, next.PageNo)
	assert.Equal(t, task.BaseURL, next.BaseURL)
	assert.Equal(t, domain.LabelList, next.Label)
	assert.Equal(t, "https://www.houzz.com/professionals/kitchen-remodeling/austin-tx?fi=15", next.URL)

	assert.Nil(t, c.Next(task, 20, 15), "target reached")
	assert.Nil(t, c.Next(task, 5, 7), "short page")

	task.BaseURL = ""
	task.URL = "https://www.houzz.com/professionals/x?fi=0"
	next = c.Next(task, 0, 15)
	require.NotNil(t, next)
	assert.Equal(t, "https://www.houzz.com/professionals/x", next.BaseURL)
}
