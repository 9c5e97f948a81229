package repository

import (
	"context"
	"testing"

	"feather-finance/internal/entity"
	"feather-finance/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBar(ticker string, ts int64) *entity.StockData {
	return &entity.StockData{
		Ticker:    ticker,
		Open:      decimal.RequireFromString("150.00"),
		High:      decimal.RequireFromString("152.50"),
		Low:       decimal.RequireFromString("149.25"),
		Close:     decimal.RequireFromString("151.75"),
		Volume:    1200000,
		Timestamp: ts,
	}
}

func TestSeededStocks(t *testing.T) {
	db := newTestDB(t)
	stocks, err := NewStocksRepository(db).GetStocks(context.Background())
	require.NoError(t, err)

	type row struct{ ticker, name, sector string }
	var got []row
	for _, s := range stocks {
		require.NotNil(t, s.Sector)
		got = append(got, row{s.Ticker, s.Name, *s.Sector})
	}

	assert.Equal(t, []row{
		{"AAPL", "Apple Inc.", "Technology"},
		{"AMZN", "Amazon.com Inc.", "E-commerce"},
		{"GOOGL", "Alphabet Inc.", "Technology"},
		{"MSFT", "Microsoft Corporation", "Technology"},
		{"NVDA", "NVIDIA Corporation", "Technology"},
		{"TSLA", "Tesla Inc.", "Automotive"},
	}, got)
}

func TestDuplicateTickerIsRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewStocksRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &entity.Stock{Ticker: "AAPL", Name: "Apple again"})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, repo.Create(ctx, &entity.Stock{Ticker: "META", Name: "Meta Platforms"}))
	stock, err := repo.FindByTicker(ctx, "META")
	require.NoError(t, err)
	assert.Nil(t, stock.Sector)

	_, err = repo.FindByTicker(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStockDataUniquePerTickerAndTimestamp(t *testing.T) {
	db := newTestDB(t)
	repo := NewStockDataRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newBar("AAPL", 1730419200)))
	assert.ErrorIs(t, repo.Create(ctx, newBar("AAPL", 1730419200)), ErrDuplicate)

	require.NoError(t, repo.Create(ctx, newBar("AAPL", 1730505600)))
	require.NoError(t, repo.Create(ctx, newBar("MSFT", 1730419200)))

	assert.ErrorIs(t, repo.Create(ctx, newBar("ZZZZ", 1730419200)), ErrForeignKey)
}

func TestWatchlistConstraints(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	watchlists := NewWatchlistRepository(db)
	ctx := context.Background()

	err := watchlists.Add(ctx, &entity.WatchlistEntry{UserID: 9999, Ticker: "AAPL"})
	assert.ErrorIs(t, err, ErrForeignKey)

	user := &entity.User{Username: "demo_user", Email: "demo@example.com", PasswordHash: "hash"}
	require.NoError(t, users.Create(ctx, user))

	require.NoError(t, watchlists.Add(ctx, &entity.WatchlistEntry{UserID: user.ID, Ticker: "AAPL"}))
	assert.ErrorIs(t, watchlists.Add(ctx, &entity.WatchlistEntry{UserID: user.ID, Ticker: "AAPL"}), ErrDuplicate)
	assert.ErrorIs(t, watchlists.Add(ctx, &entity.WatchlistEntry{UserID: user.ID, Ticker: "ZZZZ"}), ErrForeignKey)
}

func TestNewsURLUniqueness(t *testing.T) {
	db := newTestDB(t)
	repo := NewNewsArticleRepository(db)
	ctx := context.Background()

	url := "https://example.com/apple-iphone"
	require.NoError(t, repo.Create(ctx, &entity.NewsArticle{Ticker: "AAPL", Headline: "first", URL: &url}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.NewsArticle{Ticker: "AAPL", Headline: "second", URL: utils.ToPointer(url)}), ErrDuplicate)

	// NULL urls are distinct from each other
	require.NoError(t, repo.Create(ctx, &entity.NewsArticle{Ticker: "AAPL", Headline: "no url 1"}))
	require.NoError(t, repo.Create(ctx, &entity.NewsArticle{Ticker: "AAPL", Headline: "no url 2"}))

	articles, err := repo.GetRecent(ctx, "AAPL", 10)
	require.NoError(t, err)
	assert.Len(t, articles, 3)
}

func TestUserUniqueness(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.User{Username: "jane", Email: "jane@example.com", PasswordHash: "h"}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.User{Username: "jane", Email: "other@example.com", PasswordHash: "h"}), ErrDuplicate)
	assert.ErrorIs(t, repo.Create(ctx, &entity.User{Username: "other", Email: "jane@example.com", PasswordHash: "h"}), ErrDuplicate)
}

func TestNotNullIsClassified(t *testing.T) {
	db := newTestDB(t)

	err := TranslateError(db.Exec("INSERT INTO stocks (ticker) VALUES ('ZZZ')").Error)
	assert.ErrorIs(t, err, ErrNotNull)

	var constraintErr *ConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.Contains(t, err.Error(), "NOT NULL")
}

func TestAlertActiveDefaultsToTrue(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := &entity.User{Username: "trader", Email: "trader@example.com", PasswordHash: "h"}
	require.NoError(t, NewUserRepository(db).Create(ctx, user))

	require.NoError(t, db.Exec("INSERT INTO alerts (user_id, ticker, alert_type) VALUES (?, 'TSLA', 'price_above')", user.ID).Error)

	alerts, err := NewAlertRepository(db).ListByUser(ctx, user.ID, false)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].IsActive)
	assert.False(t, alerts[0].Threshold.Valid)
}
