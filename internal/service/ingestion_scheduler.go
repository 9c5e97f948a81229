package service

import (
	"context"
	"fmt"
	"time"

	"feather-finance/internal/config"
	"feather-finance/internal/dto"
	"feather-finance/pkg/logger"

	"github.com/robfig/cron/v3"
)

// IngestionScheduler runs candle and news ingestion on a cron schedule.
type IngestionScheduler interface {
	Start(ctx context.Context) error
	RunOnce(ctx context.Context) (*IngestionReport, error)
	NextRun(after time.Time) (time.Time, error)
}

// IngestionReport collects the per-ticker results of one run.
type IngestionReport struct {
	StartedAt time.Time             `json:"started_at"`
	Duration  time.Duration         `json:"duration"`
	Candles   []dto.IngestionResult `json:"candles"`
	News      []dto.IngestionResult `json:"news"`
}

// Count returns how many results across both jobs have the given status.
func (r *IngestionReport) Count(status string) int {
	n := 0
	for _, results := range [][]dto.IngestionResult{r.Candles, r.News} {
		for _, result := range results {
			if result.Status == status {
				n++
			}
		}
	}
	return n
}

type ingestionScheduler struct {
	ingestionSvc IngestionService
	cfg          config.Ingestion
	cronParser   cron.Parser
	logger       *logger.Logger
}

// NewIngestionScheduler creates a new ingestion scheduler.
func NewIngestionScheduler(ingestionSvc IngestionService, cfg config.Ingestion, logger *logger.Logger) IngestionScheduler {
	return &ingestionScheduler{
		ingestionSvc: ingestionSvc,
		cfg:          cfg,
		cronParser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		logger:       logger,
	}
}

func (s *ingestionScheduler) NextRun(after time.Time) (time.Time, error) {
	schedule, err := s.cronParser.Parse(s.cfg.Cron)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ingestion cron %q: %w", s.cfg.Cron, err)
	}
	return schedule.Next(after), nil
}

// Start blocks until ctx is canceled, running RunOnce at every scheduled time.
func (s *ingestionScheduler) Start(ctx context.Context) error {
	next, err := s.NextRun(time.Now())
	if err != nil {
		return err
	}

	for {
		s.logger.Info("Next ingestion run scheduled", logger.StringField("at", next.Format(time.RFC3339)))
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Ingestion scheduler stopping")
			return nil
		case <-timer.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("Ingestion run failed", logger.ErrorField(err))
			}
		}

		next, _ = s.NextRun(time.Now())
	}
}

// RunOnce ingests candles and then news for the configured tickers.
func (s *ingestionScheduler) RunOnce(ctx context.Context) (*IngestionReport, error) {
	report := &IngestionReport{StartedAt: time.Now()}

	candles, err := s.ingestionSvc.IngestCandles(ctx, s.cfg.Tickers, s.cfg.CandleDays, s.cfg.Resolution)
	if err != nil {
		return nil, fmt.Errorf("ingest candles: %w", err)
	}
	report.Candles = candles

	news, err := s.ingestionSvc.IngestNews(ctx, s.cfg.Tickers, s.cfg.NewsDays)
	if err != nil {
		return report, fmt.Errorf("ingest news: %w", err)
	}
	report.News = news
	report.Duration = time.Since(report.StartedAt)

	s.logger.Info("Ingestion run finished",
		logger.IntField("success", report.Count(dto.IngestionStatusSuccess)),
		logger.IntField("skipped", report.Count(dto.IngestionStatusSkipped)),
		logger.IntField("failed", report.Count(dto.IngestionStatusFailed)),
		logger.Field("duration", report.Duration.String()),
	)
	return report, nil
}
