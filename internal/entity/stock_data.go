package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockData is one OHLCV bar. Timestamp is the bar open time in epoch seconds.
type StockData struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Ticker    string          `gorm:"size:10;not null" json:"ticker"`
	Open      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"open"`
	High      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"high"`
	Low       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"low"`
	Close     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"close"`
	Volume    int64           `gorm:"not null" json:"volume"`
	Timestamp int64           `gorm:"column:timestamp;not null" json:"timestamp"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (StockData) TableName() string {
	return "stock_data"
}
