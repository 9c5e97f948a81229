package config

import (
	"fmt"
	"time"

	"feather-finance/pkg/config"
)

// Finnhub holds the configuration for the Finnhub market data API.
type Finnhub struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	Timeout             string `mapstructure:"timeout"`
}

// Ingestion holds the settings of the market data ingestion jobs.
type Ingestion struct {
	Cron                string   `mapstructure:"cron"`
	Tickers             []string `mapstructure:"tickers"`
	CandleDays          int      `mapstructure:"candle_days"`
	Resolution          string   `mapstructure:"resolution"`
	NewsDays            int      `mapstructure:"news_days"`
	FetchArticleContent bool     `mapstructure:"fetch_article_content"`
	RSSFeedURLTemplate  string   `mapstructure:"rss_feed_url_template"`
	MaxConcurrent       int      `mapstructure:"max_concurrent"`
}

// Cache holds cache lifetimes.
type Cache struct {
	QuoteTTL  string `mapstructure:"quote_ttl"`
	StocksTTL string `mapstructure:"stocks_ttl"`
}

// Security holds password hashing settings.
type Security struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// Config holds the full configuration shared by the feather binaries.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Finnhub   Finnhub         `mapstructure:"finnhub"`
	Ingestion Ingestion       `mapstructure:"ingestion"`
	Cache     Cache           `mapstructure:"cache"`
	Security  Security        `mapstructure:"security"`
}

var defaults = map[string]interface{}{
	"app.name":                        "feather-finance",
	"app.env":                         "development",
	"logger.level":                    "info",
	"logger.encoding":                 "json",
	"database.driver":                 "sqlite",
	"database.path":                   "data/feather.db",
	"database.host":                   "localhost",
	"database.port":                   5432,
	"database.user":                   "",
	"database.password":               "",
	"database.name":                   "feather",
	"database.ssl_mode":               "disable",
	"database.time_zone":              "UTC",
	"database.max_idle_conns":         5,
	"database.max_open_conns":         10,
	"database.conn_max_lifetime":      "1h",
	"database.log_level":              "silent",
	"redis.host":                      "localhost",
	"redis.port":                      6379,
	"redis.password":                  "",
	"redis.db":                        0,
	"redis.pool_size":                 10,
	"api.host":                        "0.0.0.0",
	"api.port":                        8080,
	"finnhub.api_key":                 "",
	"finnhub.base_url":                "https://finnhub.io/api/v1",
	"finnhub.max_request_per_minute":  55,
	"finnhub.timeout":                 "10s",
	"ingestion.cron":                  "0 22 * * 1-5",
	"ingestion.tickers":               []string{},
	"ingestion.candle_days":           30,
	"ingestion.resolution":            "D",
	"ingestion.news_days":             7,
	"ingestion.fetch_article_content": false,
	"ingestion.rss_feed_url_template": "",
	"ingestion.max_concurrent":        3,
	"cache.quote_ttl":                 "1m",
	"cache.stocks_ttl":                "5m",
	"security.bcrypt_cost":            12,
}

// Load loads the configuration from the given path, falling back to defaults
// and environment variables for anything the file does not set.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, defaults); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	for key, value := range map[string]string{
		"database.conn_max_lifetime": c.Database.ConnMaxLifetime,
		"finnhub.timeout":            c.Finnhub.Timeout,
		"cache.quote_ttl":            c.Cache.QuoteTTL,
		"cache.stocks_ttl":           c.Cache.StocksTTL,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", key, err)
		}
	}
	if c.Ingestion.MaxConcurrent < 1 {
		return fmt.Errorf("ingestion.max_concurrent must be at least 1")
	}
	return nil
}

// Duration parses a duration setting, returning fallback when it is empty or invalid.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
