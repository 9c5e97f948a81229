package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"feather-finance/internal/dto"
	"feather-finance/internal/repository"
	"feather-finance/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRSS struct {
	items map[string][]dto.NewsItem
	err   error
}

func (f *fakeRSS) Enabled() bool { return true }

func (f *fakeRSS) FetchNews(_ context.Context, ticker string) ([]dto.NewsItem, error) {
	return f.items[ticker], f.err
}

type fakeArticles struct {
	content map[string]string
}

func (f *fakeArticles) FetchContent(_ context.Context, articleURL string) (string, error) {
	content, ok := f.content[articleURL]
	if !ok {
		return "", errors.New("status 404")
	}
	return content, nil
}

var ingestionNow = time.Date(2024, 11, 1, 22, 0, 0, 0, time.UTC)

func newTestIngestion(r repos, finnhub *fakeFinnhub, rss *fakeRSS, articles *fakeArticles, fetchContent bool) IngestionService {
	opts := IngestionOptions{
		MaxConcurrent:       2,
		FetchArticleContent: fetchContent,
		Now:                 func() time.Time { return ingestionNow },
	}
	var rssRepo repository.RSSNewsRepository
	if rss != nil {
		rssRepo = rss
	}
	var articleRepo repository.ArticleContentRepository
	if articles != nil {
		articleRepo = articles
	}
	return NewIngestionService(r.stocks, r.stockData, r.news, finnhub, rssRepo, articleRepo, opts, logger.NewNop())
}

func TestIngestCandles(t *testing.T) {
	r := newRepos(t)
	finnhub := &fakeFinnhub{
		candles: map[string][]dto.Candle{
			"AAPL": {
				{Timestamp: 1730332800, Open: 230.1, High: 233.5, Low: 229.4, Close: 232.2, Volume: 1000},
				{Timestamp: 1730419200, Open: 232.2, High: 234.0, Low: 231.0, Close: 233.9, Volume: 1200},
				// high below close is dropped
				{Timestamp: 1730505600, Open: 233.9, High: 230.0, Low: 229.0, Close: 235.0, Volume: 900},
			},
		},
		failing: map[string]bool{"TSLA": true},
	}
	svc := newTestIngestion(r, finnhub, nil, nil, false)
	ctx := context.Background()

	results, err := svc.IngestCandles(ctx, []string{"aapl", "MSFT", "TSLA"}, 30, "D")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "AAPL", results[0].Ticker)
	assert.Equal(t, dto.IngestionStatusSuccess, results[0].Status)
	assert.Equal(t, 3, results[0].Fetched)
	assert.Equal(t, int64(2), results[0].RowsWritten)

	assert.Equal(t, "MSFT", results[1].Ticker)
	assert.Equal(t, dto.IngestionStatusSkipped, results[1].Status)

	assert.Equal(t, "TSLA", results[2].Ticker)
	assert.Equal(t, dto.IngestionStatusFailed, results[2].Status)
	assert.Contains(t, results[2].Error, "status 500")

	// a second run finds every bar already stored
	results, err = svc.IngestCandles(ctx, []string{"AAPL"}, 30, "D")
	require.NoError(t, err)
	assert.Equal(t, dto.IngestionStatusSuccess, results[0].Status)
	assert.Zero(t, results[0].RowsWritten)

	bars, err := r.stockData.GetByTicker(ctx, "AAPL", 10)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, bars[0].Close.Equal(dec("233.9")))
}

func TestIngestCandlesDefaultsToAllStocks(t *testing.T) {
	r := newRepos(t)
	svc := newTestIngestion(r, &fakeFinnhub{}, nil, nil, false)

	results, err := svc.IngestCandles(context.Background(), nil, 0, "")
	require.NoError(t, err)
	require.Len(t, results, 6)
	for _, result := range results {
		assert.Equal(t, dto.IngestionStatusSkipped, result.Status, result.Ticker)
	}
}

func TestIngestNews(t *testing.T) {
	r := newRepos(t)
	published := ingestionNow.Add(-2 * time.Hour)
	finnhub := &fakeFinnhub{
		news: map[string][]dto.NewsItem{
			"NVDA": {
				{Headline: "NVIDIA beats estimates", URL: "https://example.com/nvda-1", Source: "Reuters", PublishedAt: &published},
				{Headline: "NVIDIA beats estimates (dup)", URL: "https://example.com/nvda-1"},
				{Headline: "NVIDIA guidance", URL: "https://example.com/nvda-2"},
			},
		},
	}
	rss := &fakeRSS{items: map[string][]dto.NewsItem{
		"NVDA": {{Headline: "Chip stocks rally", URL: "https://example.com/rss-1", Source: "Yahoo Finance"}},
	}}
	articles := &fakeArticles{content: map[string]string{"https://example.com/nvda-2": "Full guidance text"}}
	svc := newTestIngestion(r, finnhub, rss, articles, true)
	ctx := context.Background()

	results, err := svc.IngestNews(ctx, []string{"NVDA"}, 7)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, dto.IngestionStatusSuccess, results[0].Status)
	assert.Equal(t, 4, results[0].Fetched)
	assert.Equal(t, int64(3), results[0].RowsWritten)

	stored, err := r.news.GetRecent(ctx, "NVDA", 10)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	var withContent int
	for _, article := range stored {
		if article.Content != nil {
			withContent++
			assert.Equal(t, "Full guidance text", *article.Content)
		}
	}
	assert.Equal(t, 1, withContent)

	results, err = svc.IngestNews(ctx, []string{"NVDA"}, 7)
	require.NoError(t, err)
	assert.Equal(t, dto.IngestionStatusSkipped, results[0].Status)
	assert.Zero(t, results[0].RowsWritten)
}

func TestIngestNewsSurvivesRSSFailure(t *testing.T) {
	r := newRepos(t)
	finnhub := &fakeFinnhub{news: map[string][]dto.NewsItem{
		"AMZN": {{Headline: "Amazon news", URL: "https://example.com/amzn"}},
	}}
	rss := &fakeRSS{err: errors.New("feed unavailable")}
	svc := newTestIngestion(r, finnhub, rss, &fakeArticles{}, false)

	results, err := svc.IngestNews(context.Background(), []string{"AMZN"}, 7)
	require.NoError(t, err)
	assert.Equal(t, dto.IngestionStatusSuccess, results[0].Status)
	assert.Equal(t, int64(1), results[0].RowsWritten)
}

func TestIngestStopsOnCanceledContext(t *testing.T) {
	r := newRepos(t)
	svc := newTestIngestion(r, &fakeFinnhub{}, nil, nil, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := svc.IngestCandles(ctx, []string{"AAPL", "MSFT"}, 30, "D")
	require.NoError(t, err)
	for _, result := range results {
		assert.Equal(t, dto.IngestionStatusFailed, result.Status)
	}
}

type panickingFinnhub struct {
	fakeFinnhub
}

func (p *panickingFinnhub) GetCandles(_ context.Context, param dto.GetCandlesParam) ([]dto.Candle, error) {
	panic("decode candles for " + param.Ticker)
}

func TestIngestCandlesCountsPanicAsFailure(t *testing.T) {
	r := newRepos(t)
	core, logs := observer.New(zap.ErrorLevel)
	opts := IngestionOptions{MaxConcurrent: 2, Now: func() time.Time { return ingestionNow }}
	svc := NewIngestionService(r.stocks, r.stockData, r.news, &panickingFinnhub{}, nil, nil, opts, &logger.Logger{Logger: zap.New(core)})

	results, err := svc.IngestCandles(context.Background(), []string{"AAPL", "MSFT"}, 30, "D")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "AAPL", results[0].Ticker)
	assert.Equal(t, "MSFT", results[1].Ticker)
	for _, result := range results {
		assert.Equal(t, dto.IngestionStatusFailed, result.Status, result.Ticker)
		assert.Equal(t, errIngestionPanic.Error(), result.Error)
	}

	report := IngestionReport{Candles: results}
	assert.Equal(t, 2, report.Count(dto.IngestionStatusFailed))

	// the panic handler may still be logging after the results are returned
	assert.Eventually(t, func() bool {
		return logs.FilterMessage("Ticker ingestion panicked").Len() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestIngestNewsSkipsItemsWithoutURL(t *testing.T) {
	r := newRepos(t)
	finnhub := &fakeFinnhub{news: map[string][]dto.NewsItem{
		"GOOGL": {
			{Headline: "Alphabet announces buyback"},
			{Headline: "Alphabet earnings call", URL: "https://example.com/googl-1"},
		},
	}}
	svc := newTestIngestion(r, finnhub, nil, nil, false)
	ctx := context.Background()

	results, err := svc.IngestNews(ctx, []string{"GOOGL"}, 7)
	require.NoError(t, err)
	assert.Equal(t, dto.IngestionStatusSuccess, results[0].Status)
	assert.Equal(t, 2, results[0].Fetched)
	assert.Equal(t, int64(1), results[0].RowsWritten)

	// repeated scheduled runs never pile up url-less copies
	results, err = svc.IngestNews(ctx, []string{"GOOGL"}, 7)
	require.NoError(t, err)
	assert.Equal(t, dto.IngestionStatusSkipped, results[0].Status)

	stored, err := r.news.GetRecent(ctx, "GOOGL", 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Alphabet earnings call", stored[0].Headline)
}

func TestIngestNewsWarnsOnInvalidItem(t *testing.T) {
	r := newRepos(t)
	finnhub := &fakeFinnhub{news: map[string][]dto.NewsItem{
		"TSLA": {
			{Headline: "   ", URL: "https://example.com/tsla-blank"},
			{Headline: "Tesla deliveries rise", URL: "https://example.com/tsla-1"},
		},
	}}
	core, logs := observer.New(zap.WarnLevel)
	opts := IngestionOptions{MaxConcurrent: 1, Now: func() time.Time { return ingestionNow }}
	svc := NewIngestionService(r.stocks, r.stockData, r.news, finnhub, nil, nil, opts, &logger.Logger{Logger: zap.New(core)})

	results, err := svc.IngestNews(context.Background(), []string{"TSLA"}, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), results[0].RowsWritten)

	warnings := logs.FilterMessage("Skipping invalid news item").All()
	require.Len(t, warnings, 1)
	fields := warnings[0].ContextMap()
	assert.Equal(t, "TSLA", fields["ticker"])
	assert.Equal(t, "https://example.com/tsla-blank", fields["url"])
	assert.Contains(t, fields["error"], "headline is required")
}
