package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"feather-finance/internal/dto"
	"feather-finance/internal/entity"
	"feather-finance/internal/repository"
	"feather-finance/pkg/common"
	"feather-finance/pkg/logger"
	"feather-finance/pkg/utils"

	"github.com/shopspring/decimal"
)

// IngestionService pulls bars and headlines from the external feeds into the database.
type IngestionService interface {
	IngestCandles(ctx context.Context, tickers []string, days int, resolution string) ([]dto.IngestionResult, error)
	IngestNews(ctx context.Context, tickers []string, days int) ([]dto.IngestionResult, error)
}

// IngestionOptions tunes an IngestionService.
type IngestionOptions struct {
	MaxConcurrent       int
	FetchArticleContent bool
	Now                 func() time.Time
}

type ingestionService struct {
	stocksRepo    repository.StocksRepository
	stockDataRepo repository.StockDataRepository
	newsRepo      repository.NewsArticleRepository
	finnhubRepo   repository.FinnhubRepository
	rssRepo       repository.RSSNewsRepository
	articleRepo   repository.ArticleContentRepository
	opts          IngestionOptions
	logger        *logger.Logger
}

// NewIngestionService creates a new ingestion service. rssRepo and articleRepo may be nil.
func NewIngestionService(
	stocksRepo repository.StocksRepository,
	stockDataRepo repository.StockDataRepository,
	newsRepo repository.NewsArticleRepository,
	finnhubRepo repository.FinnhubRepository,
	rssRepo repository.RSSNewsRepository,
	articleRepo repository.ArticleContentRepository,
	opts IngestionOptions,
	logger *logger.Logger,
) IngestionService {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ingestionService{
		stocksRepo:    stocksRepo,
		stockDataRepo: stockDataRepo,
		newsRepo:      newsRepo,
		finnhubRepo:   finnhubRepo,
		rssRepo:       rssRepo,
		articleRepo:   articleRepo,
		opts:          opts,
		logger:        logger,
	}
}

// IngestCandles fetches the last days of bars for each ticker (every stored
// stock when tickers is empty). A failing ticker never stops the others.
func (s *ingestionService) IngestCandles(ctx context.Context, tickers []string, days int, resolution string) ([]dto.IngestionResult, error) {
	tickers, err := s.resolveTickers(ctx, tickers)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = common.DefaultStockDataLimit
	}
	if resolution == "" {
		resolution = common.DefaultCandleResolution
	}
	from, to := utils.LookbackWindow(s.opts.Now(), days)

	return s.forEachTicker(ctx, tickers, func(ctx context.Context, ticker string) dto.IngestionResult {
		result := dto.IngestionResult{Ticker: ticker}

		candles, err := s.finnhubRepo.GetCandles(ctx, dto.GetCandlesParam{
			Ticker:     ticker,
			Resolution: resolution,
			From:       from,
			To:         to,
		})
		if err != nil {
			return failed(result, err)
		}
		result.Fetched = len(candles)
		if len(candles) == 0 {
			result.Status = dto.IngestionStatusSkipped
			return result
		}

		bars := make([]entity.StockData, 0, len(candles))
		for _, c := range candles {
			bar := entity.StockData{
				Ticker:    ticker,
				Open:      decimal.NewFromFloat(c.Open).Round(pricePlaces),
				High:      decimal.NewFromFloat(c.High).Round(pricePlaces),
				Low:       decimal.NewFromFloat(c.Low).Round(pricePlaces),
				Close:     decimal.NewFromFloat(c.Close).Round(pricePlaces),
				Volume:    c.Volume,
				Timestamp: c.Timestamp,
			}
			if err := ValidateBar(bar.Open, bar.High, bar.Low, bar.Close, bar.Volume); err != nil {
				s.logger.WarnContext(ctx, "Dropping invalid bar", logger.ErrorField(err),
					logger.StringField("ticker", ticker), logger.Field("timestamp", c.Timestamp))
				continue
			}
			bars = append(bars, bar)
		}

		written, err := s.stockDataRepo.BulkCreateIgnoreConflict(ctx, bars)
		if err != nil {
			return failed(result, err)
		}
		result.RowsWritten = written
		result.Status = dto.IngestionStatusSuccess
		return result
	}), nil
}

// IngestNews merges Finnhub company news with the optional RSS feed and stores
// the headlines whose url is not known yet. Items without a url are skipped.
func (s *ingestionService) IngestNews(ctx context.Context, tickers []string, days int) ([]dto.IngestionResult, error) {
	tickers, err := s.resolveTickers(ctx, tickers)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}
	from, to := utils.LookbackWindow(s.opts.Now(), days)

	return s.forEachTicker(ctx, tickers, func(ctx context.Context, ticker string) dto.IngestionResult {
		result := dto.IngestionResult{Ticker: ticker}

		items, err := s.finnhubRepo.GetCompanyNews(ctx, ticker, from, to)
		if err != nil {
			return failed(result, err)
		}
		if s.rssRepo != nil && s.rssRepo.Enabled() {
			feedItems, err := s.rssRepo.FetchNews(ctx, ticker)
			if err != nil {
				s.logger.WarnContext(ctx, "RSS source failed, continuing with Finnhub news",
					logger.ErrorField(err), logger.StringField("ticker", ticker))
			}
			items = append(items, feedItems...)
		}
		result.Fetched = len(items)

		items, err = s.filterNewItems(ctx, items)
		if err != nil {
			return failed(result, err)
		}
		if len(items) == 0 {
			result.Status = dto.IngestionStatusSkipped
			return result
		}

		for _, item := range items {
			if !utils.ShouldContinue(ctx) {
				return failed(result, ctx.Err())
			}
			req := dto.CreateNewsArticleRequest{
				Ticker:      ticker,
				Headline:    item.Headline,
				Summary:     item.Summary,
				Source:      item.Source,
				URL:         item.URL,
				PublishedAt: item.PublishedAt,
			}
			if s.opts.FetchArticleContent && s.articleRepo != nil {
				content, err := s.articleRepo.FetchContent(ctx, item.URL)
				if err != nil {
					s.logger.WarnContext(ctx, "Failed to fetch article content", logger.ErrorField(err), logger.StringField("url", item.URL))
				} else {
					req.Content = content
				}
			}

			article, err := BuildNewsArticle(req)
			if err != nil {
				s.logger.WarnContext(ctx, "Skipping invalid news item", logger.ErrorField(err),
					logger.StringField("ticker", ticker), logger.StringField("url", item.URL))
				continue
			}
			written, err := s.newsRepo.CreateIgnoreConflict(ctx, article)
			if err != nil {
				return failed(result, err)
			}
			if written {
				result.RowsWritten++
			}
		}

		result.Status = dto.IngestionStatusSuccess
		return result
	}), nil
}

// filterNewItems drops items without a url, duplicates within the batch and
// urls already stored.
func (s *ingestionService) filterNewItems(ctx context.Context, items []dto.NewsItem) ([]dto.NewsItem, error) {
	seen := make(map[string]struct{}, len(items))
	urls := make([]string, 0, len(items))
	unique := make([]dto.NewsItem, 0, len(items))
	for _, item := range items {
		// nothing to dedupe a url-less item against on later runs
		if item.URL == "" {
			continue
		}
		if _, dup := seen[item.URL]; dup {
			continue
		}
		seen[item.URL] = struct{}{}
		urls = append(urls, item.URL)
		unique = append(unique, item)
	}

	existing, err := s.newsRepo.ExistingURLs(ctx, urls)
	if err != nil {
		return nil, err
	}

	filtered := unique[:0]
	for _, item := range unique {
		if _, ok := existing[item.URL]; ok {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered, nil
}

func (s *ingestionService) resolveTickers(ctx context.Context, tickers []string) ([]string, error) {
	if len(tickers) > 0 {
		normalized := make([]string, 0, len(tickers))
		for _, t := range tickers {
			if t = utils.NormalizeTicker(t); t != "" {
				normalized = append(normalized, t)
			}
		}
		return normalized, nil
	}

	stocks, err := s.stocksRepo.GetStocks(ctx)
	if err != nil {
		return nil, err
	}
	all := make([]string, 0, len(stocks))
	for _, stock := range stocks {
		all = append(all, stock.Ticker)
	}
	return all, nil
}

// forEachTicker runs fn for every ticker with at most MaxConcurrent in flight.
// Results keep the order of tickers.
func (s *ingestionService) forEachTicker(ctx context.Context, tickers []string, fn func(ctx context.Context, ticker string) dto.IngestionResult) []dto.IngestionResult {
	results := make([]dto.IngestionResult, len(tickers))
	semaphore := make(chan struct{}, s.opts.MaxConcurrent)
	var wg sync.WaitGroup

	for i, ticker := range tickers {
		if !utils.ShouldContinue(ctx) {
			results[i] = failed(dto.IngestionResult{Ticker: ticker}, ctx.Err())
			continue
		}

		// stays in place if fn panics
		results[i] = failed(dto.IngestionResult{Ticker: ticker}, errIngestionPanic)

		wg.Add(1)
		semaphore <- struct{}{}
		utils.GoSafe(func() {
			defer wg.Done()
			defer func() { <-semaphore }()

			results[i] = fn(ctx, ticker)
			s.logger.InfoContext(ctx, "Ticker ingested",
				logger.StringField("ticker", ticker),
				logger.StringField("status", results[i].Status),
				logger.IntField("fetched", results[i].Fetched),
				logger.Field("rows_written", results[i].RowsWritten),
			)
		}, func(recovered interface{}, stack []byte) {
			s.logger.ErrorContext(ctx, "Ticker ingestion panicked",
				logger.StringField("ticker", ticker),
				logger.Field("panic", recovered),
				logger.StringField("stack", string(stack)),
			)
		})
	}

	wg.Wait()
	return results
}

var errIngestionPanic = errors.New("ticker ingestion panicked")

func failed(result dto.IngestionResult, err error) dto.IngestionResult {
	result.Status = dto.IngestionStatusFailed
	if err != nil {
		result.Error = err.Error()
	}
	return result
}
