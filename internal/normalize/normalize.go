// Package normalize turns raw fetch results into the canonical shapes the
// snapshot carries: deduplicated headline windows and sanitized quotes.
package normalize

import (
	"math"
	"sort"
	"strings"
	"time"

	"marketpulse/internal/domain/models"
)

// marketKeywords mark headlines that lead the window regardless of recency
// rank within their bucket.
var marketKeywords = []string{
	"asx", "rba", "rate", "inflation", "market", "shares", "stock",
	"dollar", "bond", "yield", "oil", "gold", "iron ore", "fed",
	"earnings", "recession", "gdp",
}

// DedupeHeadlines collapses headlines sharing a link into one item. The kept
// item uses the earliest publish time seen and the first-seen title and
// source, so re-syndicated stories do not float back to the top. Output is
// ordered newest first; ties break on link for a stable order.
func DedupeHeadlines(headlines []models.Headline) []models.Headline {
	index := make(map[string]int, len(headlines))
	out := make([]models.Headline, 0, len(headlines))

	for _, h := range headlines {
		if h.Link == "" {
			continue
		}
		if i, ok := index[h.Link]; ok {
			if h.PublishedAt.Before(out[i].PublishedAt) {
				out[i].PublishedAt = h.PublishedAt
			}
			continue
		}
		index[h.Link] = len(out)
		out = append(out, h)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].Link < out[j].Link
	})

	return out
}

// Prioritize moves keyword-matching headlines ahead of the rest while
// preserving relative order within each bucket.
func Prioritize(headlines []models.Headline) []models.Headline {
	priority := make([]models.Headline, 0, len(headlines))
	rest := make([]models.Headline, 0, len(headlines))

	for _, h := range headlines {
		if matchesMarketKeyword(h.Title) {
			priority = append(priority, h)
		} else {
			rest = append(rest, h)
		}
	}

	return append(priority, rest...)
}

// Window caps the headline list at size items.
func Window(headlines []models.Headline, size int) []models.Headline {
	if size <= 0 || len(headlines) <= size {
		return headlines
	}
	return headlines[:size]
}

func matchesMarketKeyword(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range marketKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Quote builds a normalized quote from raw provider numbers. Non-finite
// values mark the quote unavailable rather than leaking into downstream
// arithmetic.
func Quote(label, symbol string, value, pct float64, asOf time.Time) models.Quote {
	q := models.Quote{Label: label, SourceSymbol: symbol, AsOf: asOf}
	if !finite(value) || !finite(pct) {
		return q
	}
	v, p := value, pct
	q.Value = &v
	q.PercentChange = &p
	return q
}

// UnavailableQuote is the placeholder for a symbol no source could supply.
func UnavailableQuote(label, symbol string) models.Quote {
	return models.Quote{Label: label, SourceSymbol: symbol}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
