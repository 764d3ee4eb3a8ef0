package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/domain/models"
	"marketpulse/pkg/config"
)

func testSynthesizer() *Synthesizer {
	cfg := &config.Config{}
	cfg.Decision.MaterialityThresholdPercent = 1.0
	cfg.Decision.DeltaThresholdPercent = 0.5
	cfg.Decision.DispersionThresholdPercent = 1.5
	cfg.Decision.MaxMovers = 3
	s := NewSynthesizer(cfg)
	s.now = func() time.Time { return time.Date(2026, 8, 22, 10, 0, 0, 0, time.UTC) }
	return s
}

func quote(label string, value, pct float64) models.Quote {
	return models.Quote{Label: label, Value: &value, PercentChange: &pct}
}

func snapshotWith(quotes []models.Quote, headlines []models.Headline) *models.Snapshot {
	return &models.Snapshot{
		Version:   1,
		Quotes:    quotes,
		Headlines: headlines,
		TakenAt:   time.Date(2026, 8, 22, 9, 55, 0, 0, time.UTC),
	}
}

func TestSynthesizeWinnersAndLosers(t *testing.T) {
	s := testSynthesizer()
	snap := snapshotWith([]models.Quote{
		quote("ASX200", 7500, 1.2),
		quote("VIX", 18, -5.0),
	}, nil)

	report, err := s.Synthesize(nil, snap)
	require.NoError(t, err)
	assert.Equal(t, []string{"ASX200"}, report.Winners)
	assert.Equal(t, []string{"VIX"}, report.Losers)
}

func TestSynthesizeMoverRanking(t *testing.T) {
	s := testSynthesizer()
	snap := snapshotWith([]models.Quote{
		quote("Gold", 2400, 1.1),
		quote("Copper", 4.5, 3.0),
		quote("Oil", 80, 3.0),
		quote("S&P500", 5000, 1.5),
		quote("Nikkei", 39000, 2.0),
		quote("Sub", 1, 0.4), // below materiality
	}, nil)

	report, err := s.Synthesize(nil, snap)
	require.NoError(t, err)
	// Magnitude desc, ties alphabetical, capped at three.
	assert.Equal(t, []string{"Copper", "Oil", "Nikkei"}, report.Winners)
	assert.Empty(t, report.Losers)
}

func TestSynthesizeDeterminism(t *testing.T) {
	s := testSynthesizer()
	prev := snapshotWith([]models.Quote{quote("ASX200", 7400, 0.2)}, []models.Headline{
		{Title: "old story", Link: "https://example.com/old", Source: "wire"},
	})
	cur := snapshotWith([]models.Quote{quote("ASX200", 7500, 1.2)}, []models.Headline{
		{Title: "new story", Link: "https://example.com/new", Source: "wire"},
	})

	first, err := s.Synthesize(prev, cur)
	require.NoError(t, err)
	second, err := s.Synthesize(prev, cur)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSynthesizeRegimes(t *testing.T) {
	s := testSynthesizer()

	cases := []struct {
		name   string
		quotes []models.Quote
		want   string
	}{
		{"risk on", []models.Quote{quote("A", 1, 1.0), quote("B", 1, 1.2)}, RegimeRiskOn},
		{"risk off", []models.Quote{quote("A", 1, -1.0), quote("B", 1, -1.2)}, RegimeRiskOff},
		{"high vol", []models.Quote{quote("A", 1, 3.0), quote("B", 1, -3.0)}, RegimeHighVol},
		{"neutral", []models.Quote{quote("A", 1, 0.1), quote("B", 1, -0.1)}, RegimeNeutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report, err := s.Synthesize(nil, snapshotWith(tc.quotes, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, report.Regime)
		})
	}
}

func TestSynthesizeWhatChangedEmptyWhenIdentical(t *testing.T) {
	s := testSynthesizer()
	snap := snapshotWith([]models.Quote{quote("ASX200", 7500, 1.2)}, []models.Headline{
		{Title: "story", Link: "https://example.com/a", Source: "wire"},
	})

	report, err := s.Synthesize(snap, snap)
	require.NoError(t, err)
	assert.Empty(t, report.WhatChanged)
}

func TestSynthesizeWhatChangedNoPrevious(t *testing.T) {
	s := testSynthesizer()
	report, err := s.Synthesize(nil, snapshotWith([]models.Quote{quote("A", 1, 2.0)}, nil))
	require.NoError(t, err)
	assert.Empty(t, report.WhatChanged)
}

func TestSynthesizeWhatChangedDiffs(t *testing.T) {
	s := testSynthesizer()
	prev := snapshotWith([]models.Quote{
		quote("ASX200", 7400, 0.2),
		quote("Gold", 2400, 1.0),
	}, []models.Headline{
		{Title: "carried over", Link: "https://example.com/a", Source: "wire"},
	})
	cur := snapshotWith([]models.Quote{
		quote("ASX200", 7500, 1.2), // delta 1.0 >= 0.5
		quote("Gold", 2405, 1.2),   // delta 0.2 < 0.5
	}, []models.Headline{
		{Title: "carried over", Link: "https://example.com/a", Source: "wire"},
		{Title: "fresh story", Link: "https://example.com/b", Source: "wire"},
	})

	report, err := s.Synthesize(prev, cur)
	require.NoError(t, err)
	require.Len(t, report.WhatChanged, 2)
	assert.Contains(t, report.WhatChanged[0], "fresh story")
	assert.Contains(t, report.WhatChanged[1], "ASX200")
}

func TestSynthesizeEmptySnapshot(t *testing.T) {
	s := testSynthesizer()

	_, err := s.Synthesize(nil, &models.Snapshot{})
	assert.ErrorIs(t, err, ErrSynthesisUnavailable)

	_, err = s.Synthesize(nil, nil)
	assert.ErrorIs(t, err, ErrSynthesisUnavailable)

	// Unavailable quotes alone do not make a usable snapshot.
	_, err = s.Synthesize(nil, &models.Snapshot{Quotes: []models.Quote{{Label: "X"}}})
	assert.ErrorIs(t, err, ErrSynthesisUnavailable)
}

func TestSynthesizeHeadlinesOnly(t *testing.T) {
	s := testSynthesizer()
	snap := snapshotWith(nil, []models.Headline{
		{Title: "story", Link: "https://example.com/a", Source: "wire"},
	})

	report, err := s.Synthesize(nil, snap)
	require.NoError(t, err)
	assert.Equal(t, RegimeNeutral, report.Regime)
	assert.Equal(t, "no quote data", report.Sentiment)
	assert.Empty(t, report.Winners)
}
