package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InsertStockDataRequest carries one bar to be stored.
type InsertStockDataRequest struct {
	Ticker    string          `json:"ticker"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
	Timestamp int64           `json:"timestamp"`
}

// CreatePredictionRequest is the body of POST /stocks/:ticker/predictions.
type CreatePredictionRequest struct {
	Ticker          string           `json:"-"`
	PredictedTrend  string           `json:"predicted_trend"`
	Confidence      decimal.Decimal  `json:"confidence"`
	PredictedChange *decimal.Decimal `json:"predicted_change,omitempty"`
	ModelVersion    string           `json:"model_version"`
}

// CreateNewsArticleRequest carries one article to be stored.
type CreateNewsArticleRequest struct {
	Ticker      string     `json:"ticker"`
	Headline    string     `json:"headline"`
	Summary     string     `json:"summary,omitempty"`
	Content     string     `json:"content,omitempty"`
	Sentiment   string     `json:"sentiment,omitempty"`
	Source      string     `json:"source,omitempty"`
	URL         string     `json:"url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AddWatchlistRequest is the body of POST /users/:id/watchlist.
type AddWatchlistRequest struct {
	Ticker string `json:"ticker"`
}

// CreateAlertRequest is the body of POST /users/:id/alerts.
type CreateAlertRequest struct {
	UserID    uint             `json:"-"`
	Ticker    string           `json:"ticker"`
	AlertType string           `json:"alert_type"`
	Threshold *decimal.Decimal `json:"threshold,omitempty"`
	IsActive  *bool            `json:"is_active,omitempty"`
}

// SetAlertActiveRequest is the body of PUT /users/:id/alerts/:alertID/active.
type SetAlertActiveRequest struct {
	IsActive bool `json:"is_active"`
}
