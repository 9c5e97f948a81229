package repository

import (
	"context"

	"feather-finance/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WatchlistRepository defines the interface for user watchlists.
type WatchlistRepository interface {
	Add(ctx context.Context, entry *entity.WatchlistEntry) error
	AddIgnoreConflict(ctx context.Context, userID uint, ticker string) (bool, error)
	Remove(ctx context.Context, userID uint, ticker string) error
	GetUserWatchlist(ctx context.Context, userID uint) ([]entity.WatchlistItem, error)
}

type watchlistRepository struct {
	db *gorm.DB
}

// NewWatchlistRepository creates a new instance of WatchlistRepository.
func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

// Add inserts an entry and fails if the user already watches the ticker.
func (r *watchlistRepository) Add(ctx context.Context, entry *entity.WatchlistEntry) error {
	return TranslateError(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *watchlistRepository) AddIgnoreConflict(ctx context.Context, userID uint, ticker string) (bool, error) {
	entry := entity.WatchlistEntry{UserID: userID, Ticker: ticker}
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "ticker"}},
		DoNothing: true,
	}).Create(&entry)
	if tx.Error != nil {
		return false, TranslateError(tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

// Remove deletes the entry, returning ErrNotFound when the user does not watch ticker.
func (r *watchlistRepository) Remove(ctx context.Context, userID uint, ticker string) error {
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND ticker = ?", userID, ticker).
		Delete(&entity.WatchlistEntry{})
	if tx.Error != nil {
		return TranslateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return TranslateError(gorm.ErrRecordNotFound)
	}
	return nil
}

// GetUserWatchlist returns the user's stocks, most recently added first.
func (r *watchlistRepository) GetUserWatchlist(ctx context.Context, userID uint) ([]entity.WatchlistItem, error) {
	var items []entity.WatchlistItem
	err := r.db.WithContext(ctx).
		Table("watchlists AS w").
		Select("s.ticker, s.name, s.sector, w.added_at").
		Joins("JOIN stocks AS s ON s.ticker = w.ticker").
		Where("w.user_id = ?", userID).
		Order("w.added_at DESC, w.id DESC").
		Scan(&items).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return items, nil
}
