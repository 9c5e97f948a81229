package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"feather-finance/internal/dto"
	"feather-finance/internal/entity"
	"feather-finance/internal/repository"
	"feather-finance/pkg/common"
	"feather-finance/pkg/logger"
	"feather-finance/pkg/utils"

	"github.com/shopspring/decimal"
)

const (
	confidencePlaces = 4
	maxTrendLength   = 20
	maxModelVersion  = 20
)

// PredictionService stores and reads model predictions. It never produces them.
type PredictionService interface {
	InsertPrediction(ctx context.Context, req dto.CreatePredictionRequest) (*entity.Prediction, error)
	GetLatestPrediction(ctx context.Context, ticker string) (*entity.Prediction, error)
	ListPredictions(ctx context.Context, ticker string, limit int) ([]entity.Prediction, error)
}

type predictionService struct {
	stocksRepo     repository.StocksRepository
	predictionRepo repository.PredictionRepository
	logger         *logger.Logger
}

// NewPredictionService creates a new prediction service.
func NewPredictionService(stocksRepo repository.StocksRepository, predictionRepo repository.PredictionRepository, logger *logger.Logger) PredictionService {
	return &predictionService{
		stocksRepo:     stocksRepo,
		predictionRepo: predictionRepo,
		logger:         logger,
	}
}

func (s *predictionService) InsertPrediction(ctx context.Context, req dto.CreatePredictionRequest) (*entity.Prediction, error) {
	ticker := utils.NormalizeTicker(req.Ticker)
	trend := strings.ToLower(strings.TrimSpace(req.PredictedTrend))
	modelVersion := strings.TrimSpace(req.ModelVersion)

	switch {
	case ticker == "":
		return nil, validationError("ticker is required")
	case trend == "":
		return nil, validationError("predicted_trend is required")
	case utf8.RuneCountInString(trend) > maxTrendLength:
		return nil, validationError("predicted_trend exceeds %d characters", maxTrendLength)
	case modelVersion == "":
		return nil, validationError("model_version is required")
	case utf8.RuneCountInString(modelVersion) > maxModelVersion:
		return nil, validationError("model_version exceeds %d characters", maxModelVersion)
	case req.Confidence.IsNegative() || req.Confidence.GreaterThan(decimal.NewFromInt(1)):
		return nil, validationError("confidence must be between 0 and 1")
	}
	if req.PredictedChange != nil {
		if err := checkAmount("predicted_change", *req.PredictedChange); err != nil {
			return nil, err
		}
	}

	if _, err := s.stocksRepo.FindByTicker(ctx, ticker); err != nil {
		return nil, err
	}

	prediction := &entity.Prediction{
		Ticker:         ticker,
		PredictedTrend: entity.Trend(trend),
		Confidence:     req.Confidence.Round(confidencePlaces),
		ModelVersion:   modelVersion,
	}
	if req.PredictedChange != nil {
		prediction.PredictedChange = decimal.NewNullDecimal(req.PredictedChange.Round(pricePlaces))
	}

	if err := s.predictionRepo.Create(ctx, prediction); err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert prediction", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return nil, err
	}
	return prediction, nil
}

// GetLatestPrediction returns nil when the ticker has no prediction yet.
func (s *predictionService) GetLatestPrediction(ctx context.Context, ticker string) (*entity.Prediction, error) {
	return s.predictionRepo.GetLatest(ctx, utils.NormalizeTicker(ticker))
}

// ListPredictions returns the newest predictions of a known ticker first.
func (s *predictionService) ListPredictions(ctx context.Context, ticker string, limit int) ([]entity.Prediction, error) {
	ticker = utils.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, validationError("ticker is required")
	}
	if _, err := s.stocksRepo.FindByTicker(ctx, ticker); err != nil {
		return nil, err
	}
	return s.predictionRepo.ListByTicker(ctx, ticker, normalizeLimit(limit, common.DefaultPredictionLimit))
}
