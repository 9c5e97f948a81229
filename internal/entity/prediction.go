package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// Prediction is a model output for a ticker. Confidence is in [0, 1] and
// PredictedChange is a percentage.
type Prediction struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	Ticker          string              `gorm:"size:10;not null" json:"ticker"`
	PredictedTrend  Trend               `gorm:"size:20;not null" json:"predicted_trend"`
	Confidence      decimal.Decimal     `gorm:"type:decimal(5,4);not null" json:"confidence"`
	PredictedChange decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"predicted_change"`
	ModelVersion    string              `gorm:"size:20;not null" json:"model_version"`
	Timestamp       time.Time           `gorm:"column:timestamp;autoCreateTime" json:"timestamp"`
}

func (Prediction) TableName() string {
	return "predictions"
}
