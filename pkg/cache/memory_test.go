package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStorePutGet(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()

	ctx := context.Background()
	if err := ms.Put(ctx, "pulse", map[string]int{"n": 1}, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	e, err := ms.Get(ctx, "pulse")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !e.Fresh(time.Now()) {
		t.Fatalf("expected fresh entry right after put")
	}
}

func TestMemoryStoreMiss(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()

	if _, err := ms.Get(context.Background(), "absent"); err != ErrCacheMiss {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestEntryStaleAfterTTL(t *testing.T) {
	e := Entry{FetchedAt: time.Now().Add(-2 * time.Minute), TTL: time.Minute}
	if e.Fresh(time.Now()) {
		t.Fatalf("entry past TTL should not be fresh")
	}
}

func TestMemoryStoreStaleStillReadable(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()

	ctx := context.Background()
	if err := ms.Put(ctx, "headlines", "v1", time.Nanosecond); err != nil {
		t.Fatalf("put: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	e, err := ms.Get(ctx, "headlines")
	if err != nil {
		t.Fatalf("stale entry must remain readable, got %v", err)
	}
	if e.Fresh(time.Now()) {
		t.Fatalf("entry should be stale")
	}
}

func TestGetTyped(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()

	ctx := context.Background()
	type payload struct {
		Label string `json:"label"`
	}
	if err := ms.Put(ctx, "k", payload{Label: "VIX"}, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, _, err := GetTyped[payload](ctx, ms, "k")
	if err != nil {
		t.Fatalf("get typed: %v", err)
	}
	if got.Label != "VIX" {
		t.Fatalf("unexpected payload %+v", got)
	}
}
