package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"feather-finance/internal/config"
	"feather-finance/internal/repository"
	"feather-finance/internal/service"
	"feather-finance/pkg/database"
	"feather-finance/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	configPath   string
	demoPassword string
	demoSeed     int64
)

func setup() (*config.Config, *logger.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return cfg, appLogger
}

func withMigrator(fn func(m *database.Migrator, appLogger *logger.Logger) error) {
	cfg, appLogger := setup()
	defer func() { _ = appLogger.Sync() }()

	m, err := database.NewMigrator(database.ConfigFromSettings(cfg.Database), appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create migrator", logger.ErrorField(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			appLogger.Error("Failed to close migrator", logger.ErrorField(err))
		}
	}()

	if err := fn(m, appLogger); err != nil {
		appLogger.Fatal("Migration failed", logger.ErrorField(err))
	}
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all available database migrations",
	Run: func(cmd *cobra.Command, args []string) {
		withMigrator(func(m *database.Migrator, appLogger *logger.Logger) error {
			if err := m.Up(); err != nil {
				return err
			}
			appLogger.Info("Applied migrations successfully")
			return nil
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the last database migration",
	Run: func(cmd *cobra.Command, args []string) {
		withMigrator(func(m *database.Migrator, appLogger *logger.Logger) error {
			if err := m.Down(); err != nil {
				return err
			}
			appLogger.Info("Reverted last migration successfully")
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Revert every database migration",
	Run: func(cmd *cobra.Command, args []string) {
		withMigrator(func(m *database.Migrator, appLogger *logger.Logger) error {
			if err := m.Reset(); err != nil {
				return err
			}
			appLogger.Info("Reverted all migrations successfully")
			return nil
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Run: func(cmd *cobra.Command, args []string) {
		withMigrator(func(m *database.Migrator, appLogger *logger.Logger) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Printf("version=%d dirty=%t\n", version, dirty)
			return nil
		})
	},
}

var forceCmd = &cobra.Command{
	Use:   "force VERSION",
	Short: "Set the schema version without running migrations",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			log.Fatalf("Invalid version %q: %v", args[0], err)
		}
		withMigrator(func(m *database.Migrator, appLogger *logger.Logger) error {
			if err := m.Force(version); err != nil {
				return err
			}
			appLogger.Info("Forced schema version", logger.IntField("version", version))
			return nil
		})
	},
}

var seedDemoCmd = &cobra.Command{
	Use:   "seed-demo",
	Short: "Load demo users, watchlists, predictions and news",
	Run:   runSeedDemo,
}

func runSeedDemo(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, appLogger := setup()
	defer func() { _ = appLogger.Sync() }()

	db, err := database.NewDB(database.ConfigFromSettings(cfg.Database))
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	defer db.Close()

	stocksRepo := repository.NewStocksRepository(db.DB)
	userRepo := repository.NewUserRepository(db.DB)
	predictionRepo := repository.NewPredictionRepository(db.DB)
	newsRepo := repository.NewNewsArticleRepository(db.DB)
	watchlistRepo := repository.NewWatchlistRepository(db.DB)

	seeder := service.NewDemoSeeder(
		userRepo,
		service.NewUserService(userRepo, cfg.Security.BcryptCost, appLogger),
		predictionRepo,
		service.NewPredictionService(stocksRepo, predictionRepo, appLogger),
		newsRepo,
		service.NewNewsService(stocksRepo, newsRepo, appLogger),
		service.NewWatchlistService(userRepo, watchlistRepo, appLogger),
		demoPassword,
		demoSeed,
		appLogger,
	)
	report, err := seeder.Seed(ctx)
	if err != nil {
		appLogger.Fatal("Failed to seed demo data", logger.ErrorField(err))
	}
	fmt.Printf("users=%d watchlist=%d predictions=%d news=%d\n", report.Users, report.Watchlist, report.Predictions, report.News)
}

func main() {
	rootCmd := &cobra.Command{Use: "migrate"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	seedDemoCmd.Flags().StringVar(&demoPassword, "password", "password123", "Password given to every demo user")
	seedDemoCmd.Flags().Int64Var(&demoSeed, "seed", 42, "Random seed for the generated predictions")

	rootCmd.AddCommand(upCmd, downCmd, resetCmd, versionCmd, forceCmd, seedDemoCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing migrate CLI: %s\n", err)
		os.Exit(1)
	}
}
