package entity

import "time"

type WatchlistEntry struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	UserID  uint      `gorm:"not null" json:"user_id"`
	Ticker  string    `gorm:"size:10;not null" json:"ticker"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`
}

func (WatchlistEntry) TableName() string {
	return "watchlists"
}

// WatchlistItem is a watchlist entry joined with its stock.
type WatchlistItem struct {
	Ticker  string    `json:"ticker"`
	Name    string    `json:"name"`
	Sector  *string   `json:"sector,omitempty"`
	AddedAt time.Time `json:"added_at"`
}
