package common

const (
	// RedisKeyQuote holds the latest quote hash for a ticker.
	RedisKeyQuote = "quote:%s"

	CacheKeyAllStocks = "stocks:all"

	DefaultStockDataLimit  = 30
	DefaultNewsLimit       = 5
	DefaultPredictionLimit = 10
	MaxQueryLimit          = 1000

	DefaultCandleResolution = "D"
)
