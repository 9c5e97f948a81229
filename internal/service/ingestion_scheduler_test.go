package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"feather-finance/internal/config"
	"feather-finance/internal/dto"
	"feather-finance/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIngestion struct {
	candleErr error
	tickers   []string
	days      []int
}

func (s *stubIngestion) IngestCandles(_ context.Context, tickers []string, days int, _ string) ([]dto.IngestionResult, error) {
	s.tickers = tickers
	s.days = append(s.days, days)
	if s.candleErr != nil {
		return nil, s.candleErr
	}
	return []dto.IngestionResult{
		{Ticker: "AAPL", Status: dto.IngestionStatusSuccess, RowsWritten: 5},
		{Ticker: "MSFT", Status: dto.IngestionStatusFailed, Error: "boom"},
	}, nil
}

func (s *stubIngestion) IngestNews(_ context.Context, _ []string, days int) ([]dto.IngestionResult, error) {
	s.days = append(s.days, days)
	return []dto.IngestionResult{
		{Ticker: "AAPL", Status: dto.IngestionStatusSkipped},
		{Ticker: "MSFT", Status: dto.IngestionStatusSuccess, RowsWritten: 2},
	}, nil
}

func TestNextRun(t *testing.T) {
	scheduler := NewIngestionScheduler(&stubIngestion{}, config.Ingestion{Cron: "0 22 * * 1-5"}, logger.NewNop())

	friday := time.Date(2024, 11, 1, 23, 0, 0, 0, time.UTC)
	next, err := scheduler.NextRun(friday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 11, 4, 22, 0, 0, 0, time.UTC), next)

	beforeClose := time.Date(2024, 11, 1, 21, 30, 0, 0, time.UTC)
	next, err = scheduler.NextRun(beforeClose)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 11, 1, 22, 0, 0, 0, time.UTC), next)

	bad := NewIngestionScheduler(&stubIngestion{}, config.Ingestion{Cron: "every day"}, logger.NewNop())
	_, err = bad.NextRun(friday)
	assert.Error(t, err)
	assert.Error(t, bad.Start(context.Background()))
}

func TestRunOnce(t *testing.T) {
	stub := &stubIngestion{}
	cfg := config.Ingestion{Cron: "@daily", Tickers: []string{"AAPL", "MSFT"}, CandleDays: 30, NewsDays: 7}
	scheduler := NewIngestionScheduler(stub, cfg, logger.NewNop())

	report, err := scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, stub.tickers)
	assert.Equal(t, []int{30, 7}, stub.days)
	assert.Len(t, report.Candles, 2)
	assert.Len(t, report.News, 2)
	assert.Equal(t, 2, report.Count(dto.IngestionStatusSuccess))
	assert.Equal(t, 1, report.Count(dto.IngestionStatusFailed))
	assert.Equal(t, 1, report.Count(dto.IngestionStatusSkipped))

	stub.candleErr = errors.New("database is locked")
	_, err = scheduler.RunOnce(context.Background())
	assert.ErrorContains(t, err, "ingest candles")
}

func TestStartReturnsOnCancel(t *testing.T) {
	scheduler := NewIngestionScheduler(&stubIngestion{}, config.Ingestion{Cron: "@yearly"}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
