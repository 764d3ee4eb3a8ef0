package fetcher

import (
	"context"
	"time"

	"github.com/mmcdole/gofeed"

	"marketpulse/internal/domain/models"
	"marketpulse/pkg/config"
)

// RSSFetcher pulls headlines from one RSS or Atom feed at a time.
type RSSFetcher struct {
	parser       *gofeed.Parser
	perFeedLimit int
	maxAge       time.Duration
	now          func() time.Time
}

// NewRSSFetcher creates a feed fetcher. perFeedLimit caps items taken from a
// single feed; maxAge drops items older than the window (0 disables the cut).
func NewRSSFetcher(perFeedLimit int, maxAge time.Duration) *RSSFetcher {
	p := gofeed.NewParser()
	p.UserAgent = "marketpulse/1.0"
	return &RSSFetcher{
		parser:       p,
		perFeedLimit: perFeedLimit,
		maxAge:       maxAge,
		now:          time.Now,
	}
}

// Fetch retrieves headlines from a single feed. Items missing a title or
// link are skipped; a feed that parses but yields nothing is not an error.
func (f *RSSFetcher) Fetch(ctx context.Context, spec config.FeedSpec) ([]models.Headline, error) {
	feed, err := f.parser.ParseURLWithContext(spec.URL, ctx)
	if err != nil {
		return nil, unavailable(spec.Name, err)
	}

	now := f.now()
	var cutoff time.Time
	if f.maxAge > 0 {
		cutoff = now.Add(-f.maxAge)
	}

	headlines := make([]models.Headline, 0, f.perFeedLimit)
	for _, item := range feed.Items {
		if len(headlines) >= f.perFeedLimit {
			break
		}
		if item == nil || item.Title == "" || item.Link == "" {
			continue
		}

		published := itemTime(item, now)
		if f.maxAge > 0 && published.Before(cutoff) {
			continue
		}

		headlines = append(headlines, models.Headline{
			Title:       item.Title,
			Link:        item.Link,
			Source:      spec.Name,
			PublishedAt: published,
		})
	}

	return headlines, nil
}

// itemTime picks the best available timestamp for a feed item. Feeds that
// publish no usable time get the fetch time so the item still sorts.
func itemTime(item *gofeed.Item, fallback time.Time) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return fallback
}
