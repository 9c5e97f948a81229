package entity

// Stock is a listed company, keyed by its ticker.
type Stock struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Ticker string  `gorm:"size:10;not null;unique" json:"ticker"`
	Name   string  `gorm:"size:100;not null" json:"name"`
	Sector *string `gorm:"size:50" json:"sector,omitempty"`
}

func (Stock) TableName() string {
	return "stocks"
}
