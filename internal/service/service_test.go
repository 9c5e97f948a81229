package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"feather-finance/internal/dto"
	"feather-finance/internal/repository"
	"feather-finance/pkg/database"
	"feather-finance/pkg/logger"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "feather.db"),
	}
	m, err := database.NewMigrator(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	db, err := database.NewDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

// repos bundles every repository over one test database.
type repos struct {
	stocks      repository.StocksRepository
	stockData   repository.StockDataRepository
	predictions repository.PredictionRepository
	news        repository.NewsArticleRepository
	users       repository.UserRepository
	watchlists  repository.WatchlistRepository
	alerts      repository.AlertRepository
}

func newRepos(t *testing.T) repos {
	db := newTestDB(t)
	return repos{
		stocks:      repository.NewStocksRepository(db),
		stockData:   repository.NewStockDataRepository(db),
		predictions: repository.NewPredictionRepository(db),
		news:        repository.NewNewsArticleRepository(db),
		users:       repository.NewUserRepository(db),
		watchlists:  repository.NewWatchlistRepository(db),
		alerts:      repository.NewAlertRepository(db),
	}
}

func newTestUserService(r repos) UserService {
	return NewUserService(r.users, bcrypt.MinCost, logger.NewNop())
}

type fakeFinnhub struct {
	mu         sync.Mutex
	candles    map[string][]dto.Candle
	news       map[string][]dto.NewsItem
	quotes     map[string]*dto.Quote
	failing    map[string]bool
	quoteCalls int
}

func (f *fakeFinnhub) GetCandles(_ context.Context, param dto.GetCandlesParam) ([]dto.Candle, error) {
	if f.failing[param.Ticker] {
		return nil, fmt.Errorf("finnhub /stock/candle: status 500")
	}
	return f.candles[param.Ticker], nil
}

func (f *fakeFinnhub) GetQuote(_ context.Context, ticker string) (*dto.Quote, error) {
	f.mu.Lock()
	f.quoteCalls++
	f.mu.Unlock()
	q, ok := f.quotes[ticker]
	if !ok {
		return nil, fmt.Errorf("finnhub quote for %s: %w", ticker, repository.ErrNotFound)
	}
	copied := *q
	return &copied, nil
}

func (f *fakeFinnhub) GetCompanyNews(_ context.Context, ticker string, _, _ time.Time) ([]dto.NewsItem, error) {
	if f.failing[ticker] {
		return nil, fmt.Errorf("finnhub /company-news: status 500")
	}
	return f.news[ticker], nil
}

type memoryQuoteCache struct {
	mu     sync.Mutex
	quotes map[string]dto.Quote
}

func (c *memoryQuoteCache) Get(_ context.Context, ticker string) (*dto.Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.quotes[ticker]
	if !ok {
		return nil, nil
	}
	q.Cached = true
	return &q, nil
}

func (c *memoryQuoteCache) Set(_ context.Context, quote *dto.Quote, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes[quote.Ticker] = *quote
	return nil
}
