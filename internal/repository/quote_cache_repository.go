package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"feather-finance/internal/dto"
	"feather-finance/pkg/common"

	"github.com/redis/go-redis/v9"
)

// QuoteCacheRepository keeps the latest quote per ticker in Redis.
type QuoteCacheRepository interface {
	Get(ctx context.Context, ticker string) (*dto.Quote, error)
	Set(ctx context.Context, quote *dto.Quote, ttl time.Duration) error
}

type quoteCacheRepository struct {
	client redis.UniversalClient
}

// NewQuoteCacheRepository creates a new instance of QuoteCacheRepository.
func NewQuoteCacheRepository(client redis.UniversalClient) QuoteCacheRepository {
	return &quoteCacheRepository{client: client}
}

func quoteKey(ticker string) string {
	return fmt.Sprintf(common.RedisKeyQuote, ticker)
}

// Get returns nil, nil on a cache miss.
func (r *quoteCacheRepository) Get(ctx context.Context, ticker string) (*dto.Quote, error) {
	values, err := r.client.HGetAll(ctx, quoteKey(ticker)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}

	quote := &dto.Quote{Ticker: ticker, Cached: true}
	floats := map[string]*float64{
		"current":        &quote.Current,
		"change":         &quote.Change,
		"percent_change": &quote.PercentChange,
		"high":           &quote.High,
		"low":            &quote.Low,
		"open":           &quote.Open,
		"previous_close": &quote.PreviousClose,
	}
	for field, dst := range floats {
		raw, ok := values[field]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt cached quote field %s for %s: %w", field, ticker, err)
		}
		*dst = v
	}
	if raw, ok := values["timestamp"]; ok {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt cached quote timestamp for %s: %w", ticker, err)
		}
		quote.Timestamp = ts
	}
	return quote, nil
}

func (r *quoteCacheRepository) Set(ctx context.Context, quote *dto.Quote, ttl time.Duration) error {
	key := quoteKey(quote.Ticker)
	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"current":        quote.Current,
		"change":         quote.Change,
		"percent_change": quote.PercentChange,
		"high":           quote.High,
		"low":            quote.Low,
		"open":           quote.Open,
		"previous_close": quote.PreviousClose,
		"timestamp":      quote.Timestamp,
	})
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}
