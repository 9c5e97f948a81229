package repository

import (
	"context"

	"feather-finance/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewsArticleRepository defines the interface for interacting with news articles.
type NewsArticleRepository interface {
	Create(ctx context.Context, article *entity.NewsArticle) error
	CreateIgnoreConflict(ctx context.Context, article *entity.NewsArticle) (bool, error)
	GetRecent(ctx context.Context, ticker string, limit int) ([]entity.NewsArticle, error)
	ExistingURLs(ctx context.Context, urls []string) (map[string]struct{}, error)
}

type newsArticleRepository struct {
	db *gorm.DB
}

// NewNewsArticleRepository creates a new instance of NewsArticleRepository.
func NewNewsArticleRepository(db *gorm.DB) NewsArticleRepository {
	return &newsArticleRepository{db: db}
}

func (r *newsArticleRepository) Create(ctx context.Context, article *entity.NewsArticle) error {
	return TranslateError(r.db.WithContext(ctx).Create(article).Error)
}

// CreateIgnoreConflict skips articles whose url is already stored. Articles
// without a url never conflict.
func (r *newsArticleRepository) CreateIgnoreConflict(ctx context.Context, article *entity.NewsArticle) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoNothing: true,
	}).Create(article)
	if tx.Error != nil {
		return false, TranslateError(tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

// GetRecent returns the most recently stored articles for ticker.
func (r *newsArticleRepository) GetRecent(ctx context.Context, ticker string, limit int) ([]entity.NewsArticle, error) {
	var articles []entity.NewsArticle
	err := r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&articles).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return articles, nil
}

// ExistingURLs returns the subset of urls already present in news_articles.
func (r *newsArticleRepository) ExistingURLs(ctx context.Context, urls []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(urls) == 0 {
		return existing, nil
	}

	var found []string
	err := r.db.WithContext(ctx).
		Model(&entity.NewsArticle{}).
		Where("url IN ?", urls).
		Pluck("url", &found).Error
	if err != nil {
		return nil, TranslateError(err)
	}

	for _, u := range found {
		existing[u] = struct{}{}
	}
	return existing, nil
}
