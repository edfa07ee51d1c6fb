package crawler_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonesrussell/north-cloud/procrawler/internal/crawler"
	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
	"github.com/jonesrussell/north-cloud/procrawler/internal/extract"
	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
	"github.com/jonesrussell/north-cloud/procrawler/internal/pagination"
	"github.com/jonesrussell/north-cloud/procrawler/internal/storage"
	storagemocks "github.com/jonesrussell/north-cloud/procrawler/testutils/mocks/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const startURL = "https://www.houzz.com/professionals/kitchen-remodeling/austin-tx"

func firstTask() domain.CrawlTask {
	return domain.CrawlTask{
		URL:     startURL,
		PageNo:  0,
		BaseURL: pagination.CanonicalBaseURL(startURL),
		Label:   domain.LabelList,
	}
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func newHandler(state *crawler.State, store storage.RecordStore, target, maxPages int) *crawler.Handler {
	log := logger.NewNoOp()
	return crawler.NewHandler(extract.Default(log), state, store, pagination.NewController(target, maxPages), nil, log)
}

func TestHandlePage_FullPageEnqueuesNext(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	state := crawler.NewState("run", 20, true)
	h := newHandler(state, store, 20, 3)

	res, err := h.HandlePage(context.Background(), parse(t, listingPage(1, 15)), firstTask())
	require.NoError(t, err)

	assert.Equal(t, crawler.StageEnqueued, res.Stage)
	assert.Equal(t, extract.StrategyStructuredContext, res.Strategy)
	assert.Equal(t, 15, res.Extracted)
	assert.Len(t, res.Commit.Accepted, 15)
	assert.Equal(t, 15, state.Saved())
	assert.Equal(t, 1, store.Batches())

	require.NotNil(t, res.Next)
	assert.Equal(t, 1, res.Next.PageNo)
	assert.Equal(t, startURL, res.Next.BaseURL)
	assert.Equal(t, domain.LabelList, res.Next.Label)
	next, err := url.Parse(res.Next.URL)
	require.NoError(t, err)
	assert.Equal(t, "15", next.Query().Get(pagination.OffsetParam))
}

func TestHandlePage_SecondPageWithoutDedupeIsCapped(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	state := crawler.NewState("run", 20, false)
	h := newHandler(state, store, 20, 3)
	ctx := context.Background()

	first, err := h.HandlePage(ctx, parse(t, listingPage(1, 15)), firstTask())
	require.NoError(t, err)
	require.NotNil(t, first.Next)

	// ids 11..20: five repeats and five new entities
	second, err := h.HandlePage(ctx, parse(t, listingPage(11, 10)), *first.Next)
	require.NoError(t, err)

	assert.Equal(t, 10, second.Extracted)
	assert.Len(t, second.Commit.Accepted, 5)
	assert.Equal(t, 5, second.Commit.Capped)
	assert.Equal(t, 20, state.Saved())
	assert.Nil(t, second.Next)
	assert.Equal(t, crawler.StageTerminated, second.Stage)
}

func TestHandlePage_StopsAtMaxPages(t *testing.T) {
	t.Parallel()

	state := crawler.NewState("run", 100, true)
	h := newHandler(state, storage.NewMemoryStore(), 100, 2)

	task := firstTask()
	task.PageNo = 1
	task.URL = pagination.NextPageURL(task.BaseURL, 1)

	res, err := h.HandlePage(context.Background(), parse(t, listingPage(16, 15)), task)
	require.NoError(t, err)
	assert.Nil(t, res.Next)
	assert.Equal(t, crawler.StageTerminated, res.Stage)
	assert.Equal(t, 15, state.Saved())
}

func TestHandlePage_AllDuplicatesStillPaginates(t *testing.T) {
	t.Parallel()

	state := crawler.NewState("run", 100, true)
	h := newHandler(state, storage.NewMemoryStore(), 100, 5)
	ctx := context.Background()

	_, err := h.HandlePage(ctx, parse(t, listingPage(1, 15)), firstTask())
	require.NoError(t, err)

	res, err := h.HandlePage(ctx, parse(t, listingPage(1, 15)), firstTask())
	require.NoError(t, err)
	assert.Empty(t, res.Commit.Accepted)
	assert.Equal(t, 15, res.Commit.Duplicates)
	assert.Equal(t, crawler.StageEnqueued, res.Stage)
	assert.Equal(t, 15, state.Saved())
}

func TestHandlePage_EmptyPageTerminates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := storagemocks.NewMockRecordStore(ctrl)
	state := crawler.NewState("run", 20, true)
	h := newHandler(state, store, 20, 3)

	res, err := h.HandlePage(context.Background(), parse(t, "<html><body><p>Nothing here</p></body></html>"), firstTask())
	require.NoError(t, err)
	assert.Equal(t, crawler.StageTerminated, res.Stage)
	assert.Nil(t, res.Next)
	assert.Equal(t, 1, state.Stats().EmptyPages)
}

func TestHandlePage_UnknownLabelIsSkipped(t *testing.T) {
	t.Parallel()

	called := false
	spy := extract.StrategyFunc{Label: "spy", Fn: func(*goquery.Document, string) []domain.Record {
		called = true
		return professionals(1, 1)
	}}
	log := logger.NewNoOp()
	state := crawler.NewState("run", 20, true)
	h := crawler.NewHandler(extract.NewChain(log, spy), state, storage.NewMemoryStore(),
		pagination.NewController(20, 3), nil, log)

	task := firstTask()
	task.Label = "DETAIL"
	res, err := h.HandlePage(context.Background(), parse(t, listingPage(1, 1)), task)
	require.NoError(t, err)
	assert.Equal(t, crawler.StageTerminated, res.Stage)
	assert.False(t, called)
	assert.Zero(t, state.Saved())
}

func TestHandlePage_StoreFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := storagemocks.NewMockRecordStore(ctrl)
	store.EXPECT().SaveBatch(gomock.Any(), "run", gomock.Len(15)).Return(errors.New("connection reset"))

	state := crawler.NewState("run", 20, true)
	h := newHandler(state, store, 20, 3)

	res, err := h.HandlePage(context.Background(), parse(t, listingPage(1, 15)), firstTask())
	require.ErrorIs(t, err, crawler.ErrStoreWrite)
	assert.Equal(t, crawler.StageTerminated, res.Stage)
	assert.Nil(t, res.Next)
	assert.Zero(t, state.Saved())
	assert.True(t, state.Aborted())
}

func TestHandlePage_LogsKeylessRecords(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewFromZap(zap.New(core))

	html := `<script type="application/ld+json">[
  {"@type":"LocalBusiness","name":"Named Pro","url":"/pro/named-pro"},
  {"@type":"LocalBusiness","telephone":"512-555-0000"}
]</script>`

	state := crawler.NewState("run", 20, true)
	store := storage.NewMemoryStore()
	h := crawler.NewHandler(extract.Default(log), state, store, pagination.NewController(20, 3), nil, log)

	res, err := h.HandlePage(context.Background(), parse(t, html), firstTask())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Commit.Keyless)
	assert.Len(t, store.Documents(), 1)

	dropped := logs.FilterMessage("Dropped professionals without an identity key").All()
	require.Len(t, dropped, 1)
	assert.Equal(t, zapcore.WarnLevel, dropped[0].Level)
	assert.EqualValues(t, 1, dropped[0].ContextMap()["count"])
}
