package service

import (
	"context"
	"errors"
	"math/rand"

	"feather-finance/internal/dto"
	"feather-finance/internal/entity"
	"feather-finance/internal/repository"
	"feather-finance/pkg/logger"

	"github.com/shopspring/decimal"
)

const demoModelVersion = "v1.0"

type demoUser struct {
	Username string
	Email    string
	Watch    []string
}

var demoUsers = []demoUser{
	{Username: "demo_user", Email: "demo@example.com", Watch: []string{"AAPL", "MSFT", "GOOGL"}},
	{Username: "test_trader", Email: "trader@example.com", Watch: []string{"TSLA", "NVDA"}},
	{Username: "investor_jane", Email: "jane@example.com", Watch: []string{"AAPL", "TSLA", "AMZN", "NVDA"}},
}

var demoPredictionTickers = []string{"AAPL", "MSFT", "GOOGL", "TSLA", "NVDA"}

var demoNews = []dto.CreateNewsArticleRequest{
	{
		Ticker:    "AAPL",
		Headline:  "Apple Announces New iPhone Release",
		Summary:   "Apple unveils latest iPhone with improved features",
		Sentiment: string(entity.SentimentPositive),
		Source:    "TechNews",
	},
	{
		Ticker:    "TSLA",
		Headline:  "Tesla Reports Strong Q3 Earnings",
		Summary:   "Tesla exceeds analyst expectations for quarterly earnings",
		Sentiment: string(entity.SentimentPositive),
		Source:    "FinancialTimes",
	},
	{
		Ticker:    "GOOGL",
		Headline:  "Google Faces Regulatory Challenges",
		Summary:   "EU regulators investigate Google business practices",
		Sentiment: string(entity.SentimentNegative),
		Source:    "Reuters",
	},
}

// SeedReport counts the rows a demo seed run created.
type SeedReport struct {
	Users       int
	Predictions int
	News        int
	Watchlist   int
}

// DemoSeeder loads a small demo data set. Running it twice creates nothing new.
type DemoSeeder struct {
	userRepo       repository.UserRepository
	userSvc        UserService
	predictionRepo repository.PredictionRepository
	predictionSvc  PredictionService
	newsRepo       repository.NewsArticleRepository
	newsSvc        NewsService
	watchlistSvc   WatchlistService
	password       string
	rnd            *rand.Rand
	logger         *logger.Logger
}

// NewDemoSeeder creates a seeder. Every demo user gets password; seed fixes
// the generated predictions.
func NewDemoSeeder(
	userRepo repository.UserRepository,
	userSvc UserService,
	predictionRepo repository.PredictionRepository,
	predictionSvc PredictionService,
	newsRepo repository.NewsArticleRepository,
	newsSvc NewsService,
	watchlistSvc WatchlistService,
	password string,
	seed int64,
	logger *logger.Logger,
) *DemoSeeder {
	return &DemoSeeder{
		userRepo:       userRepo,
		userSvc:        userSvc,
		predictionRepo: predictionRepo,
		predictionSvc:  predictionSvc,
		newsRepo:       newsRepo,
		newsSvc:        newsSvc,
		watchlistSvc:   watchlistSvc,
		password:       password,
		rnd:            rand.New(rand.NewSource(seed)),
		logger:         logger,
	}
}

func (d *DemoSeeder) Seed(ctx context.Context) (*SeedReport, error) {
	report := &SeedReport{}

	for _, u := range demoUsers {
		userID, created, err := d.ensureUser(ctx, u)
		if err != nil {
			return report, err
		}
		if created {
			report.Users++
		}

		for _, ticker := range u.Watch {
			added, err := d.watchlistSvc.AddToWatchlist(ctx, userID, ticker)
			if err != nil {
				return report, err
			}
			if added {
				report.Watchlist++
			}
		}
	}

	trends := []entity.Trend{entity.TrendUp, entity.TrendDown, entity.TrendNeutral}
	for _, ticker := range demoPredictionTickers {
		existing, err := d.predictionRepo.GetLatest(ctx, ticker)
		if err != nil {
			return report, err
		}
		if existing != nil {
			continue
		}

		confidence := decimal.NewFromFloat(0.6 + d.rnd.Float64()*0.35).Round(2)
		change := decimal.NewFromFloat(-5 + d.rnd.Float64()*10).Round(2)
		_, err = d.predictionSvc.InsertPrediction(ctx, dto.CreatePredictionRequest{
			Ticker:          ticker,
			PredictedTrend:  string(trends[d.rnd.Intn(len(trends))]),
			Confidence:      confidence,
			PredictedChange: &change,
			ModelVersion:    demoModelVersion,
		})
		if err != nil {
			return report, err
		}
		report.Predictions++
	}

	for _, article := range demoNews {
		known, err := d.hasHeadline(ctx, article.Ticker, article.Headline)
		if err != nil {
			return report, err
		}
		if known {
			continue
		}
		if _, _, err := d.newsSvc.InsertNewsArticle(ctx, article); err != nil {
			return report, err
		}
		report.News++
	}

	d.logger.InfoContext(ctx, "Demo data seeded",
		logger.IntField("users", report.Users),
		logger.IntField("predictions", report.Predictions),
		logger.IntField("news", report.News),
		logger.IntField("watchlist", report.Watchlist),
	)
	return report, nil
}

func (d *DemoSeeder) ensureUser(ctx context.Context, u demoUser) (uint, bool, error) {
	existing, err := d.userRepo.FindByUsername(ctx, u.Username)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, false, err
	}

	created, err := d.userSvc.CreateUser(ctx, dto.CreateUserRequest{
		Username: u.Username,
		Email:    u.Email,
		Password: d.password,
	})
	if err != nil {
		return 0, false, err
	}
	return created.ID, true, nil
}

// demo articles have no url, so they are matched on headline
func (d *DemoSeeder) hasHeadline(ctx context.Context, ticker, headline string) (bool, error) {
	recent, err := d.newsRepo.GetRecent(ctx, ticker, 50)
	if err != nil {
		return false, err
	}
	for _, article := range recent {
		if article.Headline == headline {
			return true, nil
		}
	}
	return false, nil
}
