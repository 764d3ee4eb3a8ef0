package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Entry is a cached payload with its fetch time and TTL. Stale entries are
// kept and remain readable so callers can serve degraded data when an
// upstream refetch fails.
type Entry struct {
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetched_at"`
	TTL       time.Duration   `json:"ttl"`
}

// Fresh reports whether the entry is within its TTL at the given instant.
func (e Entry) Fresh(now time.Time) bool {
	return now.Sub(e.FetchedAt) < e.TTL
}

// Store defines the keyed source cache. Put replaces the whole entry
// atomically; a failed refetch never touches an existing entry. Get returns
// stale entries too, with ErrCacheMiss only when the key was never written.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Put(ctx context.Context, key string, payload interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// GetTyped retrieves an entry and unmarshals its payload into T.
func GetTyped[T any](ctx context.Context, s Store, key string) (T, Entry, error) {
	var obj T
	e, err := s.Get(ctx, key)
	if err != nil {
		return obj, Entry{}, err
	}
	if err := json.Unmarshal(e.Payload, &obj); err != nil {
		return obj, Entry{}, err
	}
	return obj, e, nil
}
