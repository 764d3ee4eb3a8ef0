package models

import "time"

// Quote is one normalized market reading. Value and PercentChange are nil
// exactly when the upstream source could not supply the symbol; they are
// never sentinel numbers.
type Quote struct {
	Label         string    `json:"label"`
	Value         *float64  `json:"value"`
	PercentChange *float64  `json:"pct"`
	SourceSymbol  string    `json:"symbol"`
	AsOf          time.Time `json:"as_of"`
}

// Available reports whether the quote carries usable numbers.
func (q Quote) Available() bool {
	return q.Value != nil && q.PercentChange != nil
}

// Headline is one deduplicated news item. Link is the dedup key: two
// headlines sharing a link are the same story.
type Headline struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// SourceStatus describes how a source contributed to a snapshot.
type SourceStatus string

const (
	SourceFresh       SourceStatus = "fresh"
	SourceStale       SourceStatus = "stale"
	SourceUnavailable SourceStatus = "unavailable"
)

// SourceHealth records per-source freshness for one refresh cycle.
type SourceHealth struct {
	Key       string       `json:"key"`
	Status    SourceStatus `json:"status"`
	FetchedAt time.Time    `json:"fetched_at,omitempty"`
}

// Snapshot is the immutable result of one refresh cycle. Headlines are
// ordered newest first.
type Snapshot struct {
	Version   uint64         `json:"version"`
	Quotes    []Quote        `json:"quotes"`
	Headlines []Headline     `json:"headlines"`
	Sources   []SourceHealth `json:"sources"`
	TakenAt   time.Time      `json:"taken_at"`
}

// Empty reports whether the snapshot carries no usable data at all.
func (s *Snapshot) Empty() bool {
	if s == nil {
		return true
	}
	for _, q := range s.Quotes {
		if q.Available() {
			return false
		}
	}
	return len(s.Headlines) == 0
}
