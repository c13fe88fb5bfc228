package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/media-comb/app/fetch"
)

type PageFetcher interface {
	Fetch(ctx context.Context, url, persistTo string) (*fetch.Page, error)
}

// Reader turns the syndication feed into article links.
type Reader struct {
	fetcher PageFetcher
	parser  *Parser
}

func NewReader(fetcher PageFetcher, parser *Parser) *Reader {
	return &Reader{fetcher: fetcher, parser: parser}
}

// Run returns the entry links of feedURL in feed order.
func (r *Reader) Run(ctx context.Context, feedURL string) ([]string, error) {
	page, err := r.fetcher.Fetch(ctx, feedURL, "")
	if err != nil {
		return nil, err
	}

	// Parse the decoded body; unescaping entities would break the XML.
	metadata, entries, err := r.parser.Run([]byte(page.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed %s: %w", feedURL, err)
	}

	links := make([]string, 0, len(entries))
	for _, entry := range entries {
		links = append(links, entry.Link)
	}

	slog.Debug("Feed read", "feed", feedURL, "title", metadata.Title, "entries", len(links))
	return links, nil
}
