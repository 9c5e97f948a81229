package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feather-finance/internal/config"
	"feather-finance/internal/dto"
	"feather-finance/pkg/logger"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	finnhubStatusOK     = "ok"
	finnhubStatusNoData = "no_data"
	finnhubDateLayout   = "2006-01-02"
)

var ErrMissingAPIKey = errors.New("finnhub api key not configured")

// FinnhubRepository fetches market data from the Finnhub REST API.
type FinnhubRepository interface {
	GetCandles(ctx context.Context, param dto.GetCandlesParam) ([]dto.Candle, error)
	GetQuote(ctx context.Context, ticker string) (*dto.Quote, error)
	GetCompanyNews(ctx context.Context, ticker string, from, to time.Time) ([]dto.NewsItem, error)
}

type finnhubRepository struct {
	cfg            config.Finnhub
	log            *logger.Logger
	client         *resty.Client
	requestLimiter *rate.Limiter
}

// NewFinnhubRepository creates a client sharing one rate limiter across all calls.
func NewFinnhubRepository(cfg config.Finnhub, log *logger.Logger) FinnhubRepository {
	perMinute := cfg.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 55
	}
	interval := time.Minute / time.Duration(perMinute)

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(config.Duration(cfg.Timeout, 10*time.Second)).
		SetHeader("Accept", "application/json").
		SetHeader("X-Finnhub-Token", cfg.APIKey)

	return &finnhubRepository{
		cfg:            cfg,
		log:            log,
		client:         client,
		requestLimiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// GetCandles returns the bars in the requested window. A "no_data" answer is
// an empty result, not an error.
func (r *finnhubRepository) GetCandles(ctx context.Context, param dto.GetCandlesParam) ([]dto.Candle, error) {
	var response dto.FinnhubCandleResponse
	err := r.get(ctx, "/stock/candle", map[string]string{
		"symbol":     param.Ticker,
		"resolution": param.Resolution,
		"from":       fmt.Sprintf("%d", param.From.Unix()),
		"to":         fmt.Sprintf("%d", param.To.Unix()),
	}, &response)
	if err != nil {
		return nil, err
	}

	switch response.Status {
	case finnhubStatusNoData:
		return []dto.Candle{}, nil
	case finnhubStatusOK:
	default:
		return nil, fmt.Errorf("finnhub candles for %s: unexpected status %q", param.Ticker, response.Status)
	}

	n := len(response.Timestamp)
	if len(response.Open) != n || len(response.High) != n || len(response.Low) != n || len(response.Close) != n || len(response.Volume) != n {
		return nil, fmt.Errorf("finnhub candles for %s: mismatched column lengths", param.Ticker)
	}

	candles := make([]dto.Candle, 0, n)
	for i := 0; i < n; i++ {
		candles = append(candles, dto.Candle{
			Timestamp: response.Timestamp[i],
			Open:      response.Open[i],
			High:      response.High[i],
			Low:       response.Low[i],
			Close:     response.Close[i],
			Volume:    int64(response.Volume[i]),
		})
	}
	return candles, nil
}

func (r *finnhubRepository) GetQuote(ctx context.Context, ticker string) (*dto.Quote, error) {
	var response dto.FinnhubQuoteResponse
	if err := r.get(ctx, "/quote", map[string]string{"symbol": ticker}, &response); err != nil {
		return nil, err
	}
	// Finnhub answers unknown symbols with an all-zero quote.
	if response.Current == 0 && response.Timestamp == 0 {
		return nil, fmt.Errorf("finnhub quote for %s: %w", ticker, ErrNotFound)
	}

	return &dto.Quote{
		Ticker:        ticker,
		Current:       response.Current,
		Change:        response.Change,
		PercentChange: response.PercentChange,
		High:          response.High,
		Low:           response.Low,
		Open:          response.Open,
		PreviousClose: response.PreviousClose,
		Timestamp:     response.Timestamp,
	}, nil
}

func (r *finnhubRepository) GetCompanyNews(ctx context.Context, ticker string, from, to time.Time) ([]dto.NewsItem, error) {
	var response []dto.FinnhubNewsItem
	err := r.get(ctx, "/company-news", map[string]string{
		"symbol": ticker,
		"from":   from.Format(finnhubDateLayout),
		"to":     to.Format(finnhubDateLayout),
	}, &response)
	if err != nil {
		return nil, err
	}

	items := make([]dto.NewsItem, 0, len(response))
	for _, news := range response {
		if news.Headline == "" {
			continue
		}
		item := dto.NewsItem{
			Headline: news.Headline,
			Summary:  news.Summary,
			URL:      news.URL,
			Source:   news.Source,
		}
		if news.DateTime > 0 {
			published := time.Unix(news.DateTime, 0).UTC()
			item.PublishedAt = &published
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *finnhubRepository) get(ctx context.Context, path string, params map[string]string, result interface{}) error {
	if r.cfg.APIKey == "" {
		return ErrMissingAPIKey
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to wait for request limit", logger.StringField("path", path), logger.ErrorField(err))
		return err
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		Get(path)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to send request to Finnhub", logger.StringField("path", path), logger.ErrorField(err))
		return fmt.Errorf("finnhub %s: %w", path, err)
	}
	if resp.IsError() {
		r.log.ErrorContext(ctx, "Finnhub returned non-2xx status",
			logger.StringField("path", path),
			logger.IntField("status", resp.StatusCode()),
		)
		return fmt.Errorf("finnhub %s: status %d: %s", path, resp.StatusCode(), resp.String())
	}

	r.log.DebugContext(ctx, "Finnhub request completed", logger.StringField("path", path), logger.Field("params", params))
	return nil
}
