package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"marketpulse/internal/domain/models"
	"marketpulse/internal/domain/repository"
	"marketpulse/internal/fetcher"
	"marketpulse/internal/normalize"
	"marketpulse/pkg/cache"
	"marketpulse/pkg/config"
	"marketpulse/pkg/logger"
)

// QuoteFetcher retrieves one symbol from the quote provider.
type QuoteFetcher interface {
	Fetch(ctx context.Context, spec config.SymbolSpec) (fetcher.QuoteData, error)
}

// HeadlineFetcher retrieves headlines from one feed.
type HeadlineFetcher interface {
	Fetch(ctx context.Context, spec config.FeedSpec) ([]models.Headline, error)
}

// Aggregator owns the refresh cycle. Each cycle settles every configured
// source independently, falling back to cached data per source, and swaps in
// a new immutable snapshot. Snapshots already handed out are never mutated.
type Aggregator struct {
	log       *logger.Logger
	store     cache.Store
	quotes    QuoteFetcher
	feeds     HeadlineFetcher
	metrics   repository.Metrics
	publisher repository.Publisher

	symbols      []config.SymbolSpec
	feedSpecs    []config.FeedSpec
	quoteTTL     time.Duration
	feedTTL      time.Duration
	fetchTimeout time.Duration
	windowSize   int

	mu        sync.RWMutex
	version   uint64
	previous  *models.Snapshot
	current   *models.Snapshot
	listeners map[chan models.Snapshot]struct{}

	now func() time.Time
}

// NewAggregator wires the refresh pipeline. publisher may be nil.
func NewAggregator(
	log *logger.Logger,
	store cache.Store,
	quotes QuoteFetcher,
	feeds HeadlineFetcher,
	metrics repository.Metrics,
	publisher repository.Publisher,
	cfg *config.Config,
) *Aggregator {
	return &Aggregator{
		log:          log,
		store:        store,
		quotes:       quotes,
		feeds:        feeds,
		metrics:      metrics,
		publisher:    publisher,
		symbols:      cfg.Quotes.Symbols,
		feedSpecs:    cfg.Feeds,
		quoteTTL:     cfg.Refresh.QuoteTTL,
		feedTTL:      cfg.Refresh.FeedTTL,
		fetchTimeout: cfg.Refresh.FetchTimeout,
		windowSize:   cfg.Headlines.WindowSize,
		listeners:    make(map[chan models.Snapshot]struct{}),
		now:          time.Now,
	}
}

func quoteKey(symbol string) string { return "quote:" + symbol }
func feedKey(name string) string    { return "feed:" + name }

// Refresh runs one full cycle. A source failure never aborts the cycle; the
// returned snapshot marks each source fresh, stale, or unavailable. The only
// error returned is context cancellation.
func (a *Aggregator) Refresh(ctx context.Context) (*models.Snapshot, error) {
	start := a.now()

	quotes := make([]models.Quote, len(a.symbols))
	quoteHealth := make([]models.SourceHealth, len(a.symbols))
	feedResults := make([][]models.Headline, len(a.feedSpecs))
	feedHealth := make([]models.SourceHealth, len(a.feedSpecs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, spec := range a.symbols {
		i, spec := i, spec
		g.Go(func() error {
			quotes[i], quoteHealth[i] = a.settleQuote(gctx, spec)
			return nil
		})
	}
	for i, spec := range a.feedSpecs {
		i, spec := i, spec
		g.Go(func() error {
			feedResults[i], feedHealth[i] = a.settleFeed(gctx, spec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var merged []models.Headline
	for _, hs := range feedResults {
		merged = append(merged, hs...)
	}
	headlines := normalize.Window(
		normalize.Prioritize(normalize.DedupeHeadlines(merged)),
		a.windowSize,
	)

	snap := &models.Snapshot{
		Quotes:    quotes,
		Headlines: headlines,
		Sources:   append(quoteHealth, feedHealth...),
		TakenAt:   a.now(),
	}

	a.mu.Lock()
	a.version++
	snap.Version = a.version
	a.previous = a.current
	a.current = snap
	// Sends are non-blocking, so notifying under the lock cannot stall the
	// cycle and cannot race an unsubscribe close.
	for ch := range a.listeners {
		select {
		case ch <- *snap:
		default:
		}
	}
	a.mu.Unlock()

	a.metrics.RecordSnapshot()
	for _, q := range quotes {
		if q.Available() {
			a.metrics.RecordQuote(q.Label, *q.Value)
		}
	}

	if a.publisher != nil {
		key := []byte(fmt.Sprintf("snapshot-%d", snap.Version))
		if err := a.publisher.Publish(ctx, key, snap); err != nil {
			a.log.Warn("snapshot publish failed", logger.Error(err))
		}
	}

	a.log.Info("refresh complete",
		logger.Int("version", int(snap.Version)),
		logger.Int("headlines", len(snap.Headlines)),
		logger.Duration("took", a.now().Sub(start)),
	)
	return snap, nil
}

// settleQuote resolves one symbol: serve a fresh cache entry, otherwise
// fetch, otherwise fall back to a stale entry, otherwise mark unavailable.
func (a *Aggregator) settleQuote(ctx context.Context, spec config.SymbolSpec) (models.Quote, models.SourceHealth) {
	key := quoteKey(spec.Symbol)
	now := a.now()

	cached, entry, cacheErr := cache.GetTyped[fetcher.QuoteData](ctx, a.store, key)
	if cacheErr == nil && entry.Fresh(now) {
		a.metrics.RecordCacheResult(key, "fresh")
		return normalize.Quote(spec.Label, spec.Symbol, cached.Value, cached.PercentChange, entry.FetchedAt),
			models.SourceHealth{Key: key, Status: models.SourceFresh, FetchedAt: entry.FetchedAt}
	}

	fctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	fetchStart := a.now()
	data, err := a.quotes.Fetch(fctx, spec)
	a.metrics.RecordFetch(key, a.now().Sub(fetchStart).Seconds())
	if err == nil {
		if perr := a.store.Put(ctx, key, data, a.quoteTTL); perr != nil {
			a.log.Warn("quote cache write failed", logger.String("key", key), logger.Error(perr))
		}
		fetchedAt := a.now()
		return normalize.Quote(spec.Label, spec.Symbol, data.Value, data.PercentChange, fetchedAt),
			models.SourceHealth{Key: key, Status: models.SourceFresh, FetchedAt: fetchedAt}
	}

	a.metrics.RecordFetchError(key, string(fetcher.KindOf(err)))
	a.log.Warn("quote fetch failed", logger.String("key", key), logger.Error(err))

	if cacheErr == nil {
		a.metrics.RecordCacheResult(key, "stale")
		return normalize.Quote(spec.Label, spec.Symbol, cached.Value, cached.PercentChange, entry.FetchedAt),
			models.SourceHealth{Key: key, Status: models.SourceStale, FetchedAt: entry.FetchedAt}
	}

	a.metrics.RecordCacheResult(key, "miss")
	return normalize.UnavailableQuote(spec.Label, spec.Symbol),
		models.SourceHealth{Key: key, Status: models.SourceUnavailable}
}

// settleFeed resolves one feed with the same fresh, fetch, stale,
// unavailable ladder as quotes. An unavailable feed contributes no
// headlines.
func (a *Aggregator) settleFeed(ctx context.Context, spec config.FeedSpec) ([]models.Headline, models.SourceHealth) {
	key := feedKey(spec.Name)
	now := a.now()

	cached, entry, cacheErr := cache.GetTyped[[]models.Headline](ctx, a.store, key)
	if cacheErr == nil && entry.Fresh(now) {
		a.metrics.RecordCacheResult(key, "fresh")
		return cached, models.SourceHealth{Key: key, Status: models.SourceFresh, FetchedAt: entry.FetchedAt}
	}

	fctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	fetchStart := a.now()
	headlines, err := a.feeds.Fetch(fctx, spec)
	a.metrics.RecordFetch(key, a.now().Sub(fetchStart).Seconds())
	if err == nil {
		if perr := a.store.Put(ctx, key, headlines, a.feedTTL); perr != nil {
			a.log.Warn("feed cache write failed", logger.String("key", key), logger.Error(perr))
		}
		return headlines, models.SourceHealth{Key: key, Status: models.SourceFresh, FetchedAt: a.now()}
	}

	a.metrics.RecordFetchError(key, string(fetcher.KindOf(err)))
	a.log.Warn("feed fetch failed", logger.String("key", key), logger.Error(err))

	if cacheErr == nil {
		a.metrics.RecordCacheResult(key, "stale")
		return cached, models.SourceHealth{Key: key, Status: models.SourceStale, FetchedAt: entry.FetchedAt}
	}

	a.metrics.RecordCacheResult(key, "miss")
	return nil, models.SourceHealth{Key: key, Status: models.SourceUnavailable}
}

// Current returns the latest snapshot, or nil before the first refresh.
func (a *Aggregator) Current() *models.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// Pair returns the previous and current snapshots for change detection.
func (a *Aggregator) Pair() (prev, cur *models.Snapshot) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.previous, a.current
}

// Subscribe registers a listener for new snapshots. Slow listeners miss
// updates rather than blocking the refresh cycle. The returned func
// unregisters and closes the channel.
func (a *Aggregator) Subscribe() (<-chan models.Snapshot, func()) {
	ch := make(chan models.Snapshot, 1)
	a.mu.Lock()
	a.listeners[ch] = struct{}{}
	a.mu.Unlock()

	return ch, func() {
		a.mu.Lock()
		if _, ok := a.listeners[ch]; ok {
			delete(a.listeners, ch)
			close(ch)
		}
		a.mu.Unlock()
	}
}
