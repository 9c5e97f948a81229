package repository

import (
	"context"

	"feather-finance/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const stockDataBatchSize = 500

// StockDataRepository defines the interface for price bars.
type StockDataRepository interface {
	Create(ctx context.Context, bar *entity.StockData) error
	CreateIgnoreConflict(ctx context.Context, bar *entity.StockData) (bool, error)
	BulkCreateIgnoreConflict(ctx context.Context, bars []entity.StockData) (int64, error)
	GetByTicker(ctx context.Context, ticker string, limit int) ([]entity.StockData, error)
	GetRange(ctx context.Context, ticker string, from, to int64) ([]entity.StockData, error)
}

type stockDataRepository struct {
	db *gorm.DB
}

// NewStockDataRepository creates a new instance of StockDataRepository.
func NewStockDataRepository(db *gorm.DB) StockDataRepository {
	return &stockDataRepository{db: db}
}

var barConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "ticker"}, {Name: "timestamp"}},
	DoNothing: true,
}

// Create inserts a bar and fails on a duplicate (ticker, timestamp).
func (r *stockDataRepository) Create(ctx context.Context, bar *entity.StockData) error {
	return TranslateError(r.db.WithContext(ctx).Create(bar).Error)
}

// CreateIgnoreConflict inserts a bar unless one already exists for the same
// ticker and timestamp. It reports whether a row was written.
func (r *stockDataRepository) CreateIgnoreConflict(ctx context.Context, bar *entity.StockData) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(barConflict).Create(bar)
	if tx.Error != nil {
		return false, TranslateError(tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

func (r *stockDataRepository) BulkCreateIgnoreConflict(ctx context.Context, bars []entity.StockData) (int64, error) {
	if len(bars) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Clauses(barConflict).CreateInBatches(&bars, stockDataBatchSize)
	if tx.Error != nil {
		return 0, TranslateError(tx.Error)
	}
	return tx.RowsAffected, nil
}

// GetByTicker returns the most recent bars first.
func (r *stockDataRepository) GetByTicker(ctx context.Context, ticker string, limit int) ([]entity.StockData, error) {
	var bars []entity.StockData
	err := r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Limit(limit).
		Find(&bars).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return bars, nil
}

// GetRange returns bars with from <= timestamp <= to in ascending order.
func (r *stockDataRepository) GetRange(ctx context.Context, ticker string, from, to int64) ([]entity.StockData, error) {
	var bars []entity.StockData
	err := r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Where(clause.Gte{Column: clause.Column{Name: "timestamp"}, Value: from}).
		Where(clause.Lte{Column: clause.Column{Name: "timestamp"}, Value: to}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
		Find(&bars).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return bars, nil
}
