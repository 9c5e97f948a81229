package service

import (
	"context"

	"feather-finance/internal/entity"
	"feather-finance/internal/repository"
	"feather-finance/pkg/logger"
	"feather-finance/pkg/utils"
)

// WatchlistService manages the stocks a user follows.
type WatchlistService interface {
	AddToWatchlist(ctx context.Context, userID uint, ticker string) (bool, error)
	RemoveFromWatchlist(ctx context.Context, userID uint, ticker string) error
	GetUserWatchlist(ctx context.Context, userID uint) ([]entity.WatchlistItem, error)
}

type watchlistService struct {
	userRepo      repository.UserRepository
	watchlistRepo repository.WatchlistRepository
	logger        *logger.Logger
}

// NewWatchlistService creates a new watchlist service.
func NewWatchlistService(userRepo repository.UserRepository, watchlistRepo repository.WatchlistRepository, logger *logger.Logger) WatchlistService {
	return &watchlistService{
		userRepo:      userRepo,
		watchlistRepo: watchlistRepo,
		logger:        logger,
	}
}

// AddToWatchlist is idempotent: adding a watched ticker again reports false.
func (s *watchlistService) AddToWatchlist(ctx context.Context, userID uint, ticker string) (bool, error) {
	ticker = utils.NormalizeTicker(ticker)
	if ticker == "" {
		return false, validationError("ticker is required")
	}

	added, err := s.watchlistRepo.AddIgnoreConflict(ctx, userID, ticker)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to add to watchlist", logger.ErrorField(err),
			logger.Field("user_id", userID), logger.StringField("ticker", ticker))
		return false, err
	}
	return added, nil
}

func (s *watchlistService) RemoveFromWatchlist(ctx context.Context, userID uint, ticker string) error {
	return s.watchlistRepo.Remove(ctx, userID, utils.NormalizeTicker(ticker))
}

func (s *watchlistService) GetUserWatchlist(ctx context.Context, userID uint) ([]entity.WatchlistItem, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.watchlistRepo.GetUserWatchlist(ctx, userID)
}
