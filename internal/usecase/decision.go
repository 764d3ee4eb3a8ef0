package usecase

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"marketpulse/internal/domain/models"
	"marketpulse/pkg/config"
)

// ErrSynthesisUnavailable is returned when the current snapshot carries no
// usable quotes and no headlines. Callers render it as a retryable
// "engine unavailable" state, not a fault.
var ErrSynthesisUnavailable = errors.New("decision: no usable snapshot data")

// Regime labels. One label per report, chosen from aggregate direction and
// dispersion of the current quote set.
const (
	RegimeRiskOn  = "RISK-ON | MOMENTUM-LED"
	RegimeRiskOff = "RISK-OFF | EQUITY-LED"
	RegimeHighVol = "HIGH-VOL | DISPERSION-LED"
	RegimeNeutral = "NEUTRAL | DATA-DRIVEN"
)

// Synthesizer derives a decision report from the latest two snapshots. It is
// a pure function of its inputs plus the configured thresholds; repeated
// calls on the same pair produce the same report.
type Synthesizer struct {
	materiality float64 // abs pct to qualify as winner or loser
	delta       float64 // abs pct-change delta to count as "changed"
	dispersion  float64 // pct stddev above which the regime is high-vol
	maxMovers   int

	now func() time.Time
}

// NewSynthesizer creates a synthesizer with the configured thresholds.
func NewSynthesizer(cfg *config.Config) *Synthesizer {
	return &Synthesizer{
		materiality: cfg.Decision.MaterialityThresholdPercent,
		delta:       cfg.Decision.DeltaThresholdPercent,
		dispersion:  cfg.Decision.DispersionThresholdPercent,
		maxMovers:   cfg.Decision.MaxMovers,
		now:         time.Now,
	}
}

// Synthesize builds a report from the current snapshot, diffing against prev
// for the whatChanged section. prev may be nil.
func (s *Synthesizer) Synthesize(prev, cur *models.Snapshot) (models.DecisionReport, error) {
	if cur.Empty() {
		return models.DecisionReport{}, ErrSynthesisUnavailable
	}

	movers := availableQuotes(cur.Quotes)
	avg, stddev := moments(movers)

	winners, losers := s.rankMovers(movers)
	regime := s.regime(movers, avg, stddev)

	report := models.DecisionReport{
		Regime:           regime,
		Winners:          winners,
		Losers:           losers,
		OpportunityZones: s.opportunityZones(movers),
		TimeHorizons:     s.timeHorizons(regime),
		WhatBreaks:       s.whatBreaks(movers, avg, stddev),
		Sentiment:        s.sentiment(avg, len(movers)),
		Signals:          s.signals(cur, movers, stddev),
		WhatChanged:      s.whatChanged(prev, cur),
		GeneratedAt:      s.now(),
	}
	return report, nil
}

func availableQuotes(quotes []models.Quote) []models.Quote {
	out := make([]models.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Available() {
			out = append(out, q)
		}
	}
	return out
}

// moments returns the mean and population standard deviation of the percent
// changes.
func moments(quotes []models.Quote) (avg, stddev float64) {
	if len(quotes) == 0 {
		return 0, 0
	}
	for _, q := range quotes {
		avg += *q.PercentChange
	}
	avg /= float64(len(quotes))

	var variance float64
	for _, q := range quotes {
		d := *q.PercentChange - avg
		variance += d * d
	}
	variance /= float64(len(quotes))
	return avg, math.Sqrt(variance)
}

// rankMovers splits material movers into winners and losers, each ranked by
// magnitude with alphabetical label tie-break, capped at maxMovers.
func (s *Synthesizer) rankMovers(quotes []models.Quote) (winners, losers []string) {
	type mover struct {
		label string
		pct   float64
	}
	var up, down []mover
	for _, q := range quotes {
		pct := *q.PercentChange
		switch {
		case pct >= s.materiality:
			up = append(up, mover{q.Label, pct})
		case pct <= -s.materiality:
			down = append(down, mover{q.Label, pct})
		}
	}

	rank := func(ms []mover) []string {
		sort.Slice(ms, func(i, j int) bool {
			ai, aj := math.Abs(ms[i].pct), math.Abs(ms[j].pct)
			if ai != aj {
				return ai > aj
			}
			return ms[i].label < ms[j].label
		})
		if s.maxMovers > 0 && len(ms) > s.maxMovers {
			ms = ms[:s.maxMovers]
		}
		labels := make([]string, len(ms))
		for i, m := range ms {
			labels[i] = m.label
		}
		return labels
	}

	return rank(up), rank(down)
}

func (s *Synthesizer) regime(movers []models.Quote, avg, stddev float64) string {
	if len(movers) == 0 {
		return RegimeNeutral
	}
	switch {
	case stddev >= s.dispersion:
		return RegimeHighVol
	case avg >= s.delta:
		return RegimeRiskOn
	case avg <= -s.delta:
		return RegimeRiskOff
	default:
		return RegimeNeutral
	}
}

func (s *Synthesizer) sentiment(avg float64, n int) string {
	if n == 0 {
		return "no quote data"
	}
	switch {
	case avg >= s.delta:
		return fmt.Sprintf("constructive (avg move %+.2f%%)", avg)
	case avg <= -s.delta:
		return fmt.Sprintf("defensive (avg move %+.2f%%)", avg)
	default:
		return fmt.Sprintf("balanced (avg move %+.2f%%)", avg)
	}
}

// opportunityZones names the directional setups visible in the material
// movers. Only labels and percent changes already in the snapshot appear.
func (s *Synthesizer) opportunityZones(movers []models.Quote) []string {
	zones := make([]string, 0, len(movers))
	for _, q := range movers {
		pct := *q.PercentChange
		switch {
		case pct >= s.materiality:
			zones = append(zones, fmt.Sprintf("%s continuation (%+.2f%%)", q.Label, pct))
		case pct <= -s.materiality:
			zones = append(zones, fmt.Sprintf("%s mean-reversion watch (%+.2f%%)", q.Label, pct))
		}
	}
	sort.Strings(zones)
	return zones
}

func (s *Synthesizer) timeHorizons(regime string) models.TimeHorizons {
	var short, medium, long string
	switch regime {
	case RegimeRiskOn:
		short, medium, long = "ride momentum, trail stops", "add on pullbacks", "stay invested"
	case RegimeRiskOff:
		short, medium, long = "reduce gross exposure", "wait for stabilization", "build watchlist"
	case RegimeHighVol:
		short, medium, long = "cut position size", "sell strength, buy panic", "keep dry powder"
	default:
		short, medium, long = "no edge, stand aside", "follow incoming data", "hold core allocation"
	}
	return models.TimeHorizons{
		ShortTerm:  models.HorizonView{Horizon: "1-5 days", View: regime, Action: short},
		MediumTerm: models.HorizonView{Horizon: "2-8 weeks", View: regime, Action: medium},
		LongTerm:   models.HorizonView{Horizon: "3-12 months", View: regime, Action: long},
	}
}

// whatBreaks lists the measured conditions whose reversal would invalidate
// the current read.
func (s *Synthesizer) whatBreaks(movers []models.Quote, avg, stddev float64) []string {
	if len(movers) == 0 {
		return []string{"no quote data to anchor the read"}
	}
	return []string{
		fmt.Sprintf("average move flips sign (now %+.2f%%)", avg),
		fmt.Sprintf("dispersion crosses %.2f%% (now %.2f%%)", s.dispersion, stddev),
	}
}

func (s *Synthesizer) signals(cur *models.Snapshot, movers []models.Quote, stddev float64) []string {
	signals := make([]string, 0, len(movers)+2)
	for _, q := range movers {
		pct := *q.PercentChange
		if math.Abs(pct) >= s.materiality {
			signals = append(signals, fmt.Sprintf("%s %+.2f%% on the session", q.Label, pct))
		}
	}
	sort.Strings(signals)
	signals = append(signals, fmt.Sprintf("cross-asset dispersion %.2f%%", stddev))
	signals = append(signals, fmt.Sprintf("%d headlines in window", len(cur.Headlines)))

	stale := 0
	for _, src := range cur.Sources {
		if src.Status != models.SourceFresh {
			stale++
		}
	}
	if stale > 0 {
		signals = append(signals, fmt.Sprintf("%d sources degraded", stale))
	}
	return signals
}

// whatChanged diffs consecutive snapshots: headlines whose link was not in
// the previous window, and quotes whose percent change moved past the delta
// threshold. No previous snapshot means nothing changed.
func (s *Synthesizer) whatChanged(prev, cur *models.Snapshot) []string {
	changed := []string{}
	if prev == nil {
		return changed
	}

	seen := make(map[string]struct{}, len(prev.Headlines))
	for _, h := range prev.Headlines {
		seen[h.Link] = struct{}{}
	}
	for _, h := range cur.Headlines {
		if _, ok := seen[h.Link]; !ok {
			changed = append(changed, fmt.Sprintf("new: [%s] %s", h.Source, h.Title))
		}
	}

	prevPct := make(map[string]float64, len(prev.Quotes))
	for _, q := range prev.Quotes {
		if q.Available() {
			prevPct[q.Label] = *q.PercentChange
		}
	}
	for _, q := range cur.Quotes {
		if !q.Available() {
			continue
		}
		old, ok := prevPct[q.Label]
		if !ok {
			continue
		}
		if math.Abs(*q.PercentChange-old) >= s.delta {
			changed = append(changed, fmt.Sprintf("%s moved %+.2f%% -> %+.2f%%", q.Label, old, *q.PercentChange))
		}
	}

	return changed
}
