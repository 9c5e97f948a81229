package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"feather-finance/pkg/logger"
	"feather-finance/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
)

const maxArticleBytes = 5 << 20

// ArticleContentRepository downloads a news page and extracts its readable text.
type ArticleContentRepository interface {
	FetchContent(ctx context.Context, articleURL string) (string, error)
}

type articleContentRepository struct {
	client *http.Client
	log    *logger.Logger
}

// NewArticleContentRepository creates a new instance of ArticleContentRepository.
func NewArticleContentRepository(timeout time.Duration, log *logger.Logger) ArticleContentRepository {
	return &articleContentRepository{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

func (r *articleContentRepository) FetchContent(ctx context.Context, articleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for article: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to fetch article content", logger.ErrorField(err), logger.StringField("url", articleURL))
		return "", fmt.Errorf("failed to fetch article content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.ErrorContext(ctx, "Failed to fetch article content with non-200 status",
			logger.IntField("status", resp.StatusCode), logger.StringField("url", articleURL))
		return "", fmt.Errorf("failed to fetch article content, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArticleBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return ExtractReadableText(body)
}

// ExtractReadableText runs readability over an HTML page and flattens the main
// content to single-spaced text.
func ExtractReadableText(page []byte) (string, error) {
	doc, err := readability.NewDocument(string(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse article html: %w", err)
	}

	contentHTML, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(doc.Content())))
	if err != nil {
		return "", fmt.Errorf("failed to parse article content: %w", err)
	}

	text := strings.Join(strings.Fields(contentHTML.Text()), " ")
	return utils.CleanToValidUTF8(text), nil
}
