package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore implements Store using an in-process map. Expired entries are
// not evicted on read; they survive as stale fallbacks until replaced. A
// cleanup ticker removes entries that have outlived their TTL by the
// configured retention factor.
type MemoryStore struct {
	data          map[string]Entry
	mutex         sync.RWMutex
	cleanupTicker *time.Ticker
	retention     time.Duration
	done          chan struct{}
}

// NewMemoryStore creates an in-memory cache store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	cfg := &MemoryConfig{
		CleanupInterval: 30 * time.Minute,
		StaleRetention:  24 * time.Hour,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	ms := &MemoryStore{
		data:          make(map[string]Entry),
		cleanupTicker: time.NewTicker(cfg.CleanupInterval),
		retention:     cfg.StaleRetention,
		done:          make(chan struct{}),
	}

	go ms.cleanupLoop()
	return ms
}

func (ms *MemoryStore) Get(_ context.Context, key string) (Entry, error) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	e, ok := ms.data[key]
	if !ok {
		return Entry{}, ErrCacheMiss
	}
	return e, nil
}

func (ms *MemoryStore) Put(_ context.Context, key string, payload interface{}, ttl time.Duration) error {
	b, err := marshalPayload(payload)
	if err != nil {
		return err
	}

	ms.mutex.Lock()
	ms.data[key] = Entry{Payload: b, FetchedAt: time.Now(), TTL: ttl}
	ms.mutex.Unlock()
	return nil
}

func (ms *MemoryStore) Delete(_ context.Context, keys ...string) error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	for _, key := range keys {
		delete(ms.data, key)
	}
	return nil
}

func (ms *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-ms.done:
			return
		case <-ms.cleanupTicker.C:
			now := time.Now()
			ms.mutex.Lock()
			for key, e := range ms.data {
				if now.Sub(e.FetchedAt) > e.TTL+ms.retention {
					delete(ms.data, key)
				}
			}
			ms.mutex.Unlock()
		}
	}
}

// Close stops the cleanup ticker.
func (ms *MemoryStore) Close() error {
	ms.cleanupTicker.Stop()
	close(ms.done)
	return nil
}

func marshalPayload(payload interface{}) (json.RawMessage, error) {
	switch v := payload.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return json.RawMessage(v), nil
	default:
		return json.Marshal(payload)
	}
}
