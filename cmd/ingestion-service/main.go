package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feather-finance/internal/config"
	"feather-finance/internal/dto"
	"feather-finance/internal/entity"
	"feather-finance/internal/repository"
	"feather-finance/internal/service"
	"feather-finance/pkg/database"
	"feather-finance/pkg/logger"
	"feather-finance/pkg/utils"

	"github.com/spf13/cobra"
)

var (
	configPath string
	tickers    []string
	runAtStart bool
	exportDays int
	exportPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the scheduled ingestion service",
	Run:   runServe,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs one ingestion pass and prints the report",
	Run:   runOnce,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Writes stored bars of the lookback window as CSV",
	Run:   runExport,
}

type app struct {
	cfg        *config.Config
	logger     *logger.Logger
	db         *database.DB
	marketData service.MarketDataService
	scheduler  service.IngestionScheduler
}

func newApp() *app {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if len(tickers) > 0 {
		cfg.Ingestion.Tickers = tickers
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewDB(database.ConfigFromSettings(cfg.Database))
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}

	// Initialize repositories
	stocksRepo := repository.NewStocksRepository(db.DB)
	stockDataRepo := repository.NewStockDataRepository(db.DB)
	newsRepo := repository.NewNewsArticleRepository(db.DB)
	finnhubRepo := repository.NewFinnhubRepository(cfg.Finnhub, appLogger)
	rssRepo := repository.NewRSSNewsRepository(cfg.Ingestion.RSSFeedURLTemplate, appLogger)
	articleRepo := repository.NewArticleContentRepository(config.Duration(cfg.Finnhub.Timeout, 10*time.Second), appLogger)

	marketDataSvc := service.NewMarketDataService(
		stocksRepo,
		stockDataRepo,
		finnhubRepo,
		nil,
		config.Duration(cfg.Cache.QuoteTTL, time.Minute),
		config.Duration(cfg.Cache.StocksTTL, 5*time.Minute),
		appLogger,
	)

	ingestionSvc := service.NewIngestionService(
		stocksRepo,
		stockDataRepo,
		newsRepo,
		finnhubRepo,
		rssRepo,
		articleRepo,
		service.IngestionOptions{
			MaxConcurrent:       cfg.Ingestion.MaxConcurrent,
			FetchArticleContent: cfg.Ingestion.FetchArticleContent,
		},
		appLogger,
	)

	return &app{
		cfg:        cfg,
		logger:     appLogger,
		db:         db,
		marketData: marketDataSvc,
		scheduler:  service.NewIngestionScheduler(ingestionSvc, cfg.Ingestion, appLogger),
	}
}

// requireFinnhub stops the process when no Finnhub key is configured.
func (a *app) requireFinnhub() {
	if a.cfg.Finnhub.APIKey == "" {
		a.logger.Fatal("Finnhub API key is not configured", logger.ErrorField(repository.ErrMissingAPIKey))
	}
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close database", logger.ErrorField(err))
	}
	_ = a.logger.Sync()
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	defer a.close()
	a.requireFinnhub()

	a.logger.Info("Starting Ingestion Service",
		logger.Field("name", a.cfg.App.Name),
		logger.StringField("cron", a.cfg.Ingestion.Cron),
	)

	if runAtStart {
		if _, err := a.scheduler.RunOnce(ctx); err != nil {
			a.logger.Error("Initial ingestion run failed", logger.ErrorField(err))
		}
	}

	if err := a.scheduler.Start(ctx); err != nil {
		a.logger.Fatal("Ingestion scheduler failed", logger.ErrorField(err))
	}
	a.logger.Info("Ingestion service stopped")
}

func runOnce(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	defer a.close()
	a.requireFinnhub()

	report, err := a.scheduler.RunOnce(ctx)
	if report != nil {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		_ = encoder.Encode(report)
	}
	if err != nil {
		a.logger.Error("Ingestion run failed", logger.ErrorField(err))
		a.close()
		os.Exit(1)
	}
	if report.Count(dto.IngestionStatusFailed) > 0 {
		a.close()
		os.Exit(2)
	}
}

func runExport(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	defer a.close()

	if err := a.exportBars(ctx); err != nil {
		a.logger.Error("Export failed", logger.ErrorField(err))
		a.close()
		os.Exit(1)
	}
}

func (a *app) exportBars(ctx context.Context) error {
	out := os.Stdout
	if exportPath != "" && exportPath != "-" {
		f, err := os.Create(exportPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	exportTickers := a.cfg.Ingestion.Tickers
	if len(exportTickers) == 0 {
		stocks, err := a.marketData.GetAllStocks(ctx)
		if err != nil {
			return err
		}
		for _, stock := range stocks {
			exportTickers = append(exportTickers, stock.Ticker)
		}
	}

	from, to := utils.LookbackWindow(time.Now(), exportDays)
	var bars []entity.StockData
	for _, ticker := range exportTickers {
		tickerBars, err := a.marketData.GetStockDataRange(ctx, ticker, from.Unix(), to.Unix())
		if err != nil {
			return fmt.Errorf("export %s: %w", ticker, err)
		}
		bars = append(bars, tickerBars...)
	}

	if err := service.WriteBarsCSV(out, bars); err != nil {
		return err
	}
	a.logger.Info("Bars exported", logger.IntField("bars", len(bars)), logger.IntField("tickers", len(exportTickers)))
	return nil
}

func main() {
	rootCmd := &cobra.Command{Use: "ingestion-service"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringSliceVarP(&tickers, "tickers", "t", nil, "Tickers to ingest (default: every stored stock)")

	serveCmd.Flags().BoolVar(&runAtStart, "run-at-start", false, "Run one ingestion pass before waiting for the schedule")
	exportCmd.Flags().IntVar(&exportDays, "days", 30, "Lookback window in days")
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "-", "CSV file to write (- for stdout)")

	rootCmd.AddCommand(serveCmd, runCmd, exportCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing ingestion-service CLI: %s\n", err)
		os.Exit(1)
	}
}
