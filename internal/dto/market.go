package dto

import "time"

// Candle is one OHLCV bar as returned by a market data source.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
}

// Quote is the latest trade summary for a ticker.
type Quote struct {
	Ticker        string  `json:"ticker"`
	Current       float64 `json:"current"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percent_change"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Open          float64 `json:"open"`
	PreviousClose float64 `json:"previous_close"`
	Timestamp     int64   `json:"timestamp"`
	Cached        bool    `json:"cached"`
}

// NewsItem is a headline from any news source before it is stored.
type NewsItem struct {
	Headline    string     `json:"headline"`
	Summary     string     `json:"summary"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// GetCandlesParam selects a range of bars from a market data source.
type GetCandlesParam struct {
	Ticker     string
	Resolution string
	From       time.Time
	To         time.Time
}
