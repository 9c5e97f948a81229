package repository

import (
	"context"
	"errors"

	"feather-finance/internal/entity"

	"gorm.io/gorm"
)

// PredictionRepository defines the interface for model predictions.
type PredictionRepository interface {
	Create(ctx context.Context, prediction *entity.Prediction) error
	GetLatest(ctx context.Context, ticker string) (*entity.Prediction, error)
	ListByTicker(ctx context.Context, ticker string, limit int) ([]entity.Prediction, error)
}

type predictionRepository struct {
	db *gorm.DB
}

// NewPredictionRepository creates a new instance of PredictionRepository.
func NewPredictionRepository(db *gorm.DB) PredictionRepository {
	return &predictionRepository{db: db}
}

func (r *predictionRepository) Create(ctx context.Context, prediction *entity.Prediction) error {
	return TranslateError(r.db.WithContext(ctx).Create(prediction).Error)
}

// GetLatest returns the newest prediction for ticker, or nil when there is none.
func (r *predictionRepository) GetLatest(ctx context.Context, ticker string) (*entity.Prediction, error) {
	var prediction entity.Prediction
	err := r.latestFirst(ctx).Where("ticker = ?", ticker).Take(&prediction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, TranslateError(err)
	}
	return &prediction, nil
}

func (r *predictionRepository) ListByTicker(ctx context.Context, ticker string, limit int) ([]entity.Prediction, error) {
	var predictions []entity.Prediction
	if err := r.latestFirst(ctx).Where("ticker = ?", ticker).Limit(limit).Find(&predictions).Error; err != nil {
		return nil, TranslateError(err)
	}
	return predictions, nil
}

func (r *predictionRepository) latestFirst(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Order(`"timestamp" DESC, id DESC`)
}
