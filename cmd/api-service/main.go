package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feather-finance/internal/config"
	delivery "feather-finance/internal/delivery/http"
	"feather-finance/internal/repository"
	"feather-finance/internal/service"
	"feather-finance/pkg/database"
	"feather-finance/pkg/logger"
	"feather-finance/pkg/redis"

	"github.com/spf13/cobra"
)

var (
	configPath   string
	withoutRedis bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the API service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting API Service", logger.Field("name", cfg.App.Name), logger.StringField("driver", cfg.Database.Driver))

	db, err := database.NewDB(database.ConfigFromSettings(cfg.Database))
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	defer db.Close()

	// Quotes are cached in Redis when it is reachable
	var quoteCache repository.QuoteCacheRepository
	if !withoutRedis {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Warn("Redis unavailable, quotes will not be cached", logger.ErrorField(err))
		} else {
			defer redisClient.Close()
			quoteCache = repository.NewQuoteCacheRepository(redisClient.Client)
		}
	}

	// Initialize repositories
	stocksRepo := repository.NewStocksRepository(db.DB)
	stockDataRepo := repository.NewStockDataRepository(db.DB)
	predictionRepo := repository.NewPredictionRepository(db.DB)
	newsRepo := repository.NewNewsArticleRepository(db.DB)
	userRepo := repository.NewUserRepository(db.DB)
	watchlistRepo := repository.NewWatchlistRepository(db.DB)
	alertRepo := repository.NewAlertRepository(db.DB)
	finnhubRepo := repository.NewFinnhubRepository(cfg.Finnhub, appLogger)

	// Initialize services
	marketDataSvc := service.NewMarketDataService(
		stocksRepo,
		stockDataRepo,
		finnhubRepo,
		quoteCache,
		config.Duration(cfg.Cache.QuoteTTL, time.Minute),
		config.Duration(cfg.Cache.StocksTTL, 5*time.Minute),
		appLogger,
	)
	predictionSvc := service.NewPredictionService(stocksRepo, predictionRepo, appLogger)
	newsSvc := service.NewNewsService(stocksRepo, newsRepo, appLogger)
	userSvc := service.NewUserService(userRepo, cfg.Security.BcryptCost, appLogger)
	watchlistSvc := service.NewWatchlistService(userRepo, watchlistRepo, appLogger)
	alertSvc := service.NewAlertService(userRepo, alertRepo, appLogger)

	// Initialize Echo server and routes
	e := delivery.NewServer(appLogger)
	apiV1 := e.Group("/api/v1")
	delivery.NewStockHandler(marketDataSvc, predictionSvc, newsSvc, appLogger).RegisterRoutes(apiV1.Group("/stocks"))
	delivery.NewUserHandler(userSvc, watchlistSvc, alertSvc, appLogger).RegisterRoutes(apiV1.Group("/users"))

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "api-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	serveCmd.Flags().BoolVar(&withoutRedis, "no-redis", false, "Serve quotes without the Redis cache")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api-service CLI: %s\n", err)
		os.Exit(1)
	}
}
