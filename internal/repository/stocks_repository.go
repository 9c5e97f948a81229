package repository

import (
	"context"

	"feather-finance/internal/entity"

	"gorm.io/gorm"
)

type StocksRepository interface {
	Create(ctx context.Context, stock *entity.Stock) error
	GetStocks(ctx context.Context) ([]entity.Stock, error)
	FindByTicker(ctx context.Context, ticker string) (*entity.Stock, error)
}

type stocksRepository struct {
	db *gorm.DB
}

func NewStocksRepository(db *gorm.DB) StocksRepository {
	return &stocksRepository{db: db}
}

func (s *stocksRepository) Create(ctx context.Context, stock *entity.Stock) error {
	return TranslateError(s.db.WithContext(ctx).Create(stock).Error)
}

func (s *stocksRepository) GetStocks(ctx context.Context) ([]entity.Stock, error) {
	var stocks []entity.Stock
	if err := s.db.WithContext(ctx).Order("ticker").Find(&stocks).Error; err != nil {
		return nil, TranslateError(err)
	}
	return stocks, nil
}

func (s *stocksRepository) FindByTicker(ctx context.Context, ticker string) (*entity.Stock, error) {
	var stock entity.Stock
	if err := s.db.WithContext(ctx).Where("ticker = ?", ticker).First(&stock).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &stock, nil
}
