package repository

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"feather-finance/internal/dto"
	"feather-finance/pkg/logger"
	"feather-finance/pkg/utils"

	"github.com/mmcdole/gofeed"
)

// RSSNewsRepository reads per-ticker headline feeds.
type RSSNewsRepository interface {
	Enabled() bool
	FetchNews(ctx context.Context, ticker string) ([]dto.NewsItem, error)
}

type rssNewsRepository struct {
	urlTemplate string
	parser      *gofeed.Parser
	log         *logger.Logger
}

// NewRSSNewsRepository builds a feed reader. urlTemplate must contain one %s,
// which receives the query-escaped ticker. An empty template disables the source.
func NewRSSNewsRepository(urlTemplate string, log *logger.Logger) RSSNewsRepository {
	return &rssNewsRepository{
		urlTemplate: urlTemplate,
		parser:      gofeed.NewParser(),
		log:         log,
	}
}

func (r *rssNewsRepository) Enabled() bool {
	return r.urlTemplate != ""
}

// FetchNews returns the feed items newest first.
func (r *rssNewsRepository) FetchNews(ctx context.Context, ticker string) ([]dto.NewsItem, error) {
	if !r.Enabled() {
		return nil, nil
	}

	feedURL := fmt.Sprintf(r.urlTemplate, url.QueryEscape(ticker))
	r.log.DebugContext(ctx, "Processing RSS feed", logger.StringField("url", feedURL))

	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to parse RSS feed", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return nil, fmt.Errorf("failed to parse rss feed for %s: %w", ticker, err)
	}

	sort.SliceStable(feed.Items, func(i, j int) bool {
		if feed.Items[i].PublishedParsed == nil || feed.Items[j].PublishedParsed == nil {
			return false
		}
		return feed.Items[i].PublishedParsed.After(*feed.Items[j].PublishedParsed)
	})

	source := feed.Title
	items := make([]dto.NewsItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		headline := utils.CleanToValidUTF8(item.Title)
		if headline == "" {
			continue
		}
		news := dto.NewsItem{
			Headline:    headline,
			Summary:     utils.CleanToValidUTF8(item.Description),
			URL:         strings.TrimSpace(item.Link),
			Source:      source,
			PublishedAt: item.PublishedParsed,
		}
		if item.Author != nil && item.Author.Name != "" && news.Source == "" {
			news.Source = item.Author.Name
		}
		items = append(items, news)
	}
	return items, nil
}
