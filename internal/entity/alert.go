package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type AlertType string

const (
	AlertTypePriceAbove       AlertType = "price_above"
	AlertTypePriceBelow       AlertType = "price_below"
	AlertTypePercentChange    AlertType = "percent_change"
	AlertTypePredictionChange AlertType = "prediction_change"
)

// Alert is a stored user alert definition. Nothing evaluates it here.
// IsActive has no gorm default so that an explicit false is written.
type Alert struct {
	ID        uint                `gorm:"primaryKey" json:"id"`
	UserID    uint                `gorm:"not null" json:"user_id"`
	Ticker    string              `gorm:"size:10;not null" json:"ticker"`
	AlertType AlertType           `gorm:"size:50;not null" json:"alert_type"`
	Threshold decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"threshold"`
	IsActive  bool                `json:"is_active"`
	CreatedAt time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func (Alert) TableName() string {
	return "alerts"
}
