package normalize

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/domain/models"
)

func hl(title, link, source string, at time.Time) models.Headline {
	return models.Headline{Title: title, Link: link, Source: source, PublishedAt: at}
}

func TestDedupeHeadlinesKeepsFirstSeen(t *testing.T) {
	early := time.Date(2026, 8, 21, 8, 0, 0, 0, time.UTC)
	late := early.Add(3 * time.Hour)

	got := DedupeHeadlines([]models.Headline{
		hl("Rates held", "https://example.com/a", "wire", late),
		hl("Rates held steady", "https://example.com/a", "mirror", early),
		hl("Iron ore up", "https://example.com/b", "wire", early),
	})

	require.Len(t, got, 2)
	// Duplicate keeps first-seen title and source, earliest time.
	assert.Equal(t, "Iron ore up", got[0].Title)
	assert.Equal(t, "Rates held", got[1].Title)
	assert.Equal(t, "wire", got[1].Source)
	assert.True(t, got[1].PublishedAt.Equal(early))
}

func TestDedupeHeadlinesNewestFirst(t *testing.T) {
	base := time.Date(2026, 8, 21, 8, 0, 0, 0, time.UTC)
	got := DedupeHeadlines([]models.Headline{
		hl("old", "https://example.com/old", "wire", base),
		hl("new", "https://example.com/new", "wire", base.Add(time.Hour)),
		hl("tie-b", "https://example.com/b", "wire", base.Add(2*time.Hour)),
		hl("tie-a", "https://example.com/a", "wire", base.Add(2*time.Hour)),
	})

	require.Len(t, got, 4)
	assert.Equal(t, "tie-a", got[0].Title)
	assert.Equal(t, "tie-b", got[1].Title)
	assert.Equal(t, "new", got[2].Title)
	assert.Equal(t, "old", got[3].Title)
}

func TestDedupeHeadlinesDropsEmptyLink(t *testing.T) {
	got := DedupeHeadlines([]models.Headline{
		hl("no link", "", "wire", time.Now()),
	})
	assert.Empty(t, got)
}

func TestPrioritize(t *testing.T) {
	now := time.Now()
	got := Prioritize([]models.Headline{
		hl("Local festival draws crowds", "https://example.com/1", "wire", now),
		hl("RBA flags inflation risk", "https://example.com/2", "wire", now),
		hl("Weather warning issued", "https://example.com/3", "wire", now),
		hl("ASX closes higher", "https://example.com/4", "wire", now),
	})

	require.Len(t, got, 4)
	assert.Equal(t, "RBA flags inflation risk", got[0].Title)
	assert.Equal(t, "ASX closes higher", got[1].Title)
	assert.Equal(t, "Local festival draws crowds", got[2].Title)
	assert.Equal(t, "Weather warning issued", got[3].Title)
}

func TestWindow(t *testing.T) {
	now := time.Now()
	in := []models.Headline{
		hl("a", "https://example.com/a", "wire", now),
		hl("b", "https://example.com/b", "wire", now),
		hl("c", "https://example.com/c", "wire", now),
	}

	assert.Len(t, Window(in, 2), 2)
	assert.Len(t, Window(in, 5), 3)
	assert.Len(t, Window(in, 0), 3)
}

func TestQuote(t *testing.T) {
	asOf := time.Date(2026, 8, 21, 16, 0, 0, 0, time.UTC)

	q := Quote("ASX200", "^axjo", 8450.2, 1.3, asOf)
	require.True(t, q.Available())
	assert.InDelta(t, 8450.2, *q.Value, 1e-9)
	assert.InDelta(t, 1.3, *q.PercentChange, 1e-9)

	for name, pair := range map[string][2]float64{
		"nan value": {math.NaN(), 1.0},
		"inf value": {math.Inf(1), 1.0},
		"nan pct":   {100, math.NaN()},
		"inf pct":   {100, math.Inf(-1)},
	} {
		t.Run(name, func(t *testing.T) {
			q := Quote("X", "x", pair[0], pair[1], asOf)
			assert.False(t, q.Available())
			assert.Nil(t, q.Value)
			assert.Nil(t, q.PercentChange)
		})
	}
}

func TestUnavailableQuote(t *testing.T) {
	q := UnavailableQuote("VIX", "^vix")
	assert.False(t, q.Available())
	assert.Equal(t, "VIX", q.Label)
	assert.Equal(t, "^vix", q.SourceSymbol)
}
