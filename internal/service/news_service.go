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
)

const (
	maxSentimentLength = 20
	maxSourceLength    = 100
)

// NewsService stores and reads news articles.
type NewsService interface {
	InsertNewsArticle(ctx context.Context, req dto.CreateNewsArticleRequest) (*entity.NewsArticle, bool, error)
	GetRecentNews(ctx context.Context, ticker string, limit int) ([]entity.NewsArticle, error)
}

type newsService struct {
	stocksRepo repository.StocksRepository
	newsRepo   repository.NewsArticleRepository
	logger     *logger.Logger
}

// NewNewsService creates a new news service.
func NewNewsService(stocksRepo repository.StocksRepository, newsRepo repository.NewsArticleRepository, logger *logger.Logger) NewsService {
	return &newsService{
		stocksRepo: stocksRepo,
		newsRepo:   newsRepo,
		logger:     logger,
	}
}

// BuildNewsArticle maps a request onto an entity, turning empty optional
// fields into NULLs.
func BuildNewsArticle(req dto.CreateNewsArticleRequest) (*entity.NewsArticle, error) {
	ticker := utils.NormalizeTicker(req.Ticker)
	headline := utils.CleanToValidUTF8(req.Headline)
	if ticker == "" {
		return nil, validationError("ticker is required")
	}
	if headline == "" {
		return nil, validationError("headline is required")
	}

	article := &entity.NewsArticle{
		Ticker:      ticker,
		Headline:    headline,
		Summary:     optionalText(req.Summary),
		Content:     optionalText(req.Content),
		Source:      optionalText(utils.Truncate(strings.TrimSpace(req.Source), maxSourceLength)),
		URL:         optionalText(req.URL),
		PublishedAt: req.PublishedAt,
	}
	if sentiment := strings.ToLower(strings.TrimSpace(req.Sentiment)); sentiment != "" {
		if utf8.RuneCountInString(sentiment) > maxSentimentLength {
			return nil, validationError("sentiment exceeds %d characters", maxSentimentLength)
		}
		article.Sentiment = utils.ToPointer(entity.Sentiment(sentiment))
	}
	return article, nil
}

// InsertNewsArticle stores the article unless its url is already known. The
// boolean reports whether a row was written.
func (s *newsService) InsertNewsArticle(ctx context.Context, req dto.CreateNewsArticleRequest) (*entity.NewsArticle, bool, error) {
	article, err := BuildNewsArticle(req)
	if err != nil {
		return nil, false, err
	}

	written, err := s.newsRepo.CreateIgnoreConflict(ctx, article)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert news article", logger.ErrorField(err), logger.StringField("ticker", article.Ticker))
		return nil, false, err
	}
	return article, written, nil
}

func (s *newsService) GetRecentNews(ctx context.Context, ticker string, limit int) ([]entity.NewsArticle, error) {
	ticker = utils.NormalizeTicker(ticker)
	if _, err := s.stocksRepo.FindByTicker(ctx, ticker); err != nil {
		return nil, err
	}
	return s.newsRepo.GetRecent(ctx, ticker, normalizeLimit(limit, common.DefaultNewsLimit))
}

func optionalText(s string) *string {
	s = utils.CleanToValidUTF8(s)
	if s == "" {
		return nil
	}
	return &s
}
