package service

import (
	"context"
	"testing"

	"feather-finance/internal/dto"
	"feather-finance/internal/repository"
	"feather-finance/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, r repos, username string) uint {
	t.Helper()
	user, err := newTestUserService(r).CreateUser(context.Background(), dto.CreateUserRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return user.ID
}

func TestWatchlistService(t *testing.T) {
	r := newRepos(t)
	svc := NewWatchlistService(r.users, r.watchlists, logger.NewNop())
	ctx := context.Background()
	userID := createUser(t, r, "carol")

	added, err := svc.AddToWatchlist(ctx, userID, "aapl")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.AddToWatchlist(ctx, userID, "AAPL")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = svc.AddToWatchlist(ctx, userID, "NVDA")
	require.NoError(t, err)

	items, err := svc.GetUserWatchlist(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	tickers := []string{items[0].Ticker, items[1].Ticker}
	assert.ElementsMatch(t, []string{"AAPL", "NVDA"}, tickers)

	require.NoError(t, svc.RemoveFromWatchlist(ctx, userID, "aapl"))
	assert.ErrorIs(t, svc.RemoveFromWatchlist(ctx, userID, "AAPL"), repository.ErrNotFound)

	items, err = svc.GetUserWatchlist(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "NVDA", items[0].Ticker)
}

func TestWatchlistServiceErrors(t *testing.T) {
	r := newRepos(t)
	svc := NewWatchlistService(r.users, r.watchlists, logger.NewNop())
	ctx := context.Background()
	userID := createUser(t, r, "dave")

	_, err := svc.AddToWatchlist(ctx, userID, " ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddToWatchlist(ctx, userID, "ZZZZ")
	assert.ErrorIs(t, err, repository.ErrForeignKey)

	_, err = svc.AddToWatchlist(ctx, 999, "AAPL")
	assert.ErrorIs(t, err, repository.ErrForeignKey)

	_, err = svc.GetUserWatchlist(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
