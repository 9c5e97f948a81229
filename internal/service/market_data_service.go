package service

import (
	"context"
	"errors"
	"time"

	"feather-finance/internal/dto"
	"feather-finance/internal/entity"
	"feather-finance/internal/repository"
	"feather-finance/pkg/common"
	"feather-finance/pkg/logger"
	"feather-finance/pkg/utils"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

const pricePlaces = 2

// maxAmount is the first value a DECIMAL(10,2) column cannot hold.
var maxAmount = decimal.New(1, 8)

// checkAmount rejects values that overflow a DECIMAL(10,2) column once rounded.
func checkAmount(name string, v decimal.Decimal) error {
	if v.Round(pricePlaces).Abs().GreaterThanOrEqual(maxAmount) {
		return validationError("%s must be below %s in magnitude", name, maxAmount)
	}
	return nil
}

// MarketDataService covers stocks, price bars and live quotes.
type MarketDataService interface {
	InsertStockData(ctx context.Context, req dto.InsertStockDataRequest) (bool, error)
	GetStockData(ctx context.Context, ticker string, limit int) ([]entity.StockData, error)
	GetStockDataRange(ctx context.Context, ticker string, from, to int64) ([]entity.StockData, error)
	GetAllStocks(ctx context.Context) ([]entity.Stock, error)
	GetQuote(ctx context.Context, ticker string) (*dto.Quote, error)
}

type marketDataService struct {
	stocksRepo    repository.StocksRepository
	stockDataRepo repository.StockDataRepository
	finnhubRepo   repository.FinnhubRepository
	quoteCache    repository.QuoteCacheRepository
	quoteTTL      time.Duration
	inmemoryCache *cache.Cache
	logger        *logger.Logger
}

// NewMarketDataService creates a new market data service. quoteCache may be nil,
// in which case every quote goes to Finnhub.
func NewMarketDataService(
	stocksRepo repository.StocksRepository,
	stockDataRepo repository.StockDataRepository,
	finnhubRepo repository.FinnhubRepository,
	quoteCache repository.QuoteCacheRepository,
	quoteTTL time.Duration,
	stocksTTL time.Duration,
	logger *logger.Logger,
) MarketDataService {
	return &marketDataService{
		stocksRepo:    stocksRepo,
		stockDataRepo: stockDataRepo,
		finnhubRepo:   finnhubRepo,
		quoteCache:    quoteCache,
		quoteTTL:      quoteTTL,
		inmemoryCache: cache.New(stocksTTL, 2*stocksTTL),
		logger:        logger,
	}
}

// ValidateBar checks the OHLCV invariants the schema does not enforce.
func ValidateBar(open, high, low, close decimal.Decimal, volume int64) error {
	for name, v := range map[string]decimal.Decimal{"open": open, "high": high, "low": low, "close": close} {
		if v.IsNegative() {
			return validationError("%s must not be negative", name)
		}
		if err := checkAmount(name, v); err != nil {
			return err
		}
	}
	if volume < 0 {
		return validationError("volume must not be negative")
	}
	if high.LessThan(decimal.Max(open, close, low)) {
		return validationError("high %s is below open, close or low", high)
	}
	if low.GreaterThan(decimal.Min(open, close, high)) {
		return validationError("low %s is above open, close or high", low)
	}
	return nil
}

// InsertStockData stores one bar, ignoring it when the (ticker, timestamp) pair
// already exists. It reports whether a row was written.
func (s *marketDataService) InsertStockData(ctx context.Context, req dto.InsertStockDataRequest) (bool, error) {
	ticker := utils.NormalizeTicker(req.Ticker)
	if req.Timestamp <= 0 {
		return false, validationError("timestamp must be a positive epoch")
	}
	if err := ValidateBar(req.Open, req.High, req.Low, req.Close, req.Volume); err != nil {
		return false, err
	}
	if _, err := s.findStock(ctx, ticker); err != nil {
		return false, err
	}

	bar := &entity.StockData{
		Ticker:    ticker,
		Open:      req.Open.Round(pricePlaces),
		High:      req.High.Round(pricePlaces),
		Low:       req.Low.Round(pricePlaces),
		Close:     req.Close.Round(pricePlaces),
		Volume:    req.Volume,
		Timestamp: req.Timestamp,
	}
	written, err := s.stockDataRepo.CreateIgnoreConflict(ctx, bar)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert stock data", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return false, err
	}
	return written, nil
}

func (s *marketDataService) GetStockData(ctx context.Context, ticker string, limit int) ([]entity.StockData, error) {
	ticker = utils.NormalizeTicker(ticker)
	if _, err := s.findStock(ctx, ticker); err != nil {
		return nil, err
	}
	return s.stockDataRepo.GetByTicker(ctx, ticker, normalizeLimit(limit, common.DefaultStockDataLimit))
}

// GetStockDataRange returns the bars with from <= timestamp <= to, oldest first.
func (s *marketDataService) GetStockDataRange(ctx context.Context, ticker string, from, to int64) ([]entity.StockData, error) {
	ticker = utils.NormalizeTicker(ticker)
	if from < 0 || to < from {
		return nil, validationError("invalid range from %d to %d", from, to)
	}
	if _, err := s.findStock(ctx, ticker); err != nil {
		return nil, err
	}
	return s.stockDataRepo.GetRange(ctx, ticker, from, to)
}

func (s *marketDataService) GetAllStocks(ctx context.Context) ([]entity.Stock, error) {
	if cached, found := s.inmemoryCache.Get(common.CacheKeyAllStocks); found {
		return cached.([]entity.Stock), nil
	}

	stocks, err := s.stocksRepo.GetStocks(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get stocks", logger.ErrorField(err))
		return nil, err
	}
	s.inmemoryCache.SetDefault(common.CacheKeyAllStocks, stocks)
	return stocks, nil
}

// GetQuote serves from the Redis cache when possible and refreshes it from Finnhub otherwise.
func (s *marketDataService) GetQuote(ctx context.Context, ticker string) (*dto.Quote, error) {
	ticker = utils.NormalizeTicker(ticker)
	if _, err := s.findStock(ctx, ticker); err != nil {
		return nil, err
	}

	if s.quoteCache != nil {
		cached, err := s.quoteCache.Get(ctx, ticker)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to read cached quote", logger.ErrorField(err), logger.StringField("ticker", ticker))
		} else if cached != nil {
			return cached, nil
		}
	}

	quote, err := s.finnhubRepo.GetQuote(ctx, ticker)
	if err != nil {
		return nil, err
	}

	if s.quoteCache != nil {
		if err := s.quoteCache.Set(ctx, quote, s.quoteTTL); err != nil {
			s.logger.WarnContext(ctx, "Failed to cache quote", logger.ErrorField(err), logger.StringField("ticker", ticker))
		}
	}
	return quote, nil
}

func (s *marketDataService) findStock(ctx context.Context, ticker string) (*entity.Stock, error) {
	if ticker == "" {
		return nil, validationError("ticker is required")
	}
	stock, err := s.stocksRepo.FindByTicker(ctx, ticker)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Failed to find stock", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return nil, err
	}
	return stock, nil
}
