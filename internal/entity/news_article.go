package entity

import "time"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// NewsArticle is a headline attached to a single ticker. URL is unique when set.
type NewsArticle struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Ticker      string     `gorm:"size:10;not null" json:"ticker"`
	Headline    string     `gorm:"not null" json:"headline"`
	Summary     *string    `json:"summary,omitempty"`
	Content     *string    `json:"content,omitempty"`
	Sentiment   *Sentiment `gorm:"size:20" json:"sentiment,omitempty"`
	Source      *string    `gorm:"size:100" json:"source,omitempty"`
	URL         *string    `gorm:"column:url;unique" json:"url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (NewsArticle) TableName() string {
	return "news_articles"
}
