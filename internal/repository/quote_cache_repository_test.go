package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"feather-finance/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server when REDIS_ADDR is set, e.g. REDIS_ADDR=localhost:6379.
func TestQuoteCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer client.Close()
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())
	require.NoError(t, client.Del(ctx, quoteKey("AAPL"), quoteKey("MSFT")).Err())

	repo := NewQuoteCacheRepository(client)

	miss, err := repo.Get(ctx, "MSFT")
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, repo.Set(ctx, &dto.Quote{Ticker: "AAPL", Current: 227.5, PreviousClose: 225.1, Timestamp: 1730505600}, time.Minute))

	hit, err := repo.Get(ctx, "AAPL")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.True(t, hit.Cached)
	assert.Equal(t, 227.5, hit.Current)
	assert.Equal(t, 225.1, hit.PreviousClose)
	assert.Equal(t, int64(1730505600), hit.Timestamp)

	ttl, err := client.TTL(ctx, quoteKey("AAPL")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
