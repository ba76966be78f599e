// Package feed previews RSS/Atom feeds so a caller can pick an article URL
// to analyze.
package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"referent/internal/apperr"
)

type Item struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
}

// Preview fetches and parses the feed, returning at most limit items in feed
// order. Published is normalized to RFC 3339 when the feed's date parses.
func Preview(ctx context.Context, url string, limit int) ([]Item, error) {
	parser := gofeed.NewParser()
	parsed, err := parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, apperr.New(apperr.CodeFeedError,
			"Не удалось загрузить или разобрать ленту по этой ссылке.", http.StatusBadGateway)
	}

	items := make([]Item, 0, limit)
	for _, entry := range parsed.Items {
		if len(items) >= limit {
			break
		}
		published := entry.Published
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.Format(time.RFC3339)
		}
		items = append(items, Item{
			Title:     entry.Title,
			Link:      entry.Link,
			Published: published,
		})
	}
	return items, nil
}
