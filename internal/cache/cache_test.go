// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package cache

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache[string], *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[string]("test", ttl)
	c.now = clock.Now
	t.Cleanup(c.Close)
	return c, clock
}

func TestCacheBasicOperations(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	c.Set("key1", "value1")
	if v, ok := c.Get("key1"); !ok || v != "value1" {
		t.Errorf("Get(key1) = %q, %v", v, ok)
	}
	if _, ok := c.Get("key2"); ok {
		t.Error("Expected key2 to not exist")
	}

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Keys != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if c.HitRate() != 50 {
		t.Errorf("HitRate() = %v, want 50", c.HitRate())
	}
}

func TestCacheExpiration(t *testing.T) {
	c, clock := newTestCache(t, time.Minute)

	c.Set("key1", "value1")
	clock.Advance(59 * time.Second)
	if _, ok := c.Get("key1"); !ok {
		t.Error("Expected key1 before TTL")
	}

	clock.Advance(2 * time.Second)
	if _, ok := c.Get("key1"); ok {
		t.Error("Expected key1 to be expired")
	}
	if s := c.GetStats(); s.Evictions != 1 || s.Keys != 0 {
		t.Errorf("stats after expiry = %+v", s)
	}
}

func TestCacheSetWithTTLAndCleanup(t *testing.T) {
	c, clock := newTestCache(t, time.Hour)

	c.SetWithTTL("short", "a", time.Second)
	c.Set("long", "b")
	clock.Advance(2 * time.Second)
	c.cleanup()

	if s := c.GetStats(); s.Keys != 1 || s.Evictions != 1 {
		t.Errorf("stats after cleanup = %+v", s)
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("long-lived key should survive cleanup")
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")
	c.Delete("a")
	c.Delete("missing")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted key still present")
	}

	c.Clear()
	if s := c.GetStats(); s.Keys != 0 || s.Evictions != 3 {
		t.Errorf("stats after clear = %+v", s)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := GenerateKey("k", i%5)
			c.Set(key, "v")
			c.Get(key)
		}(i)
	}
	wg.Wait()

	if s := c.GetStats(); s.Keys != 5 {
		t.Errorf("Keys = %d, want 5", s.Keys)
	}
}

func TestGenerateKey(t *testing.T) {
	a := GenerateKey("stats", map[string]string{"range": "28d"})
	b := GenerateKey("stats", map[string]string{"range": "28d"})
	c := GenerateKey("stats", map[string]string{"range": "7d"})

	if a != b {
		t.Error("same params should produce the same key")
	}
	if a == c {
		t.Error("different params should produce different keys")
	}
	if !strings.HasPrefix(a, "stats:") || len(a) != len("stats:")+32 {
		t.Errorf("unexpected key format %q", a)
	}
	if got := GenerateKey("bad", make(chan int)); !strings.HasPrefix(got, "bad:") {
		t.Errorf("fallback key = %q", got)
	}
}

type snapshotPayload struct {
	Sessions int64    `json:"sessions"`
	Pages    []string `json:"pages"`
}

func testSnapshotStore(t *testing.T, store SnapshotStore) {
	t.Helper()
	ctx := context.Background()

	var out snapshotPayload
	if _, ok, err := store.Load(ctx, "traffic:28d", &out); err != nil || ok {
		t.Fatalf("Load on empty store = ok %v, err %v", ok, err)
	}

	before := time.Now().Add(-time.Second)
	in := snapshotPayload{Sessions: 42, Pages: []string{"/", "/guides"}}
	if err := store.Save(ctx, "traffic:28d", in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	savedAt, ok, err := store.Load(ctx, "traffic:28d", &out)
	if err != nil || !ok {
		t.Fatalf("Load() = ok %v, err %v", ok, err)
	}
	if out.Sessions != 42 || len(out.Pages) != 2 {
		t.Errorf("Load() decoded %+v", out)
	}
	if savedAt.Before(before) {
		t.Errorf("savedAt = %v, want after %v", savedAt, before)
	}

	if err := store.Save(ctx, "traffic:28d", snapshotPayload{Sessions: 7}); err != nil {
		t.Fatal(err)
	}
	var latest snapshotPayload
	if _, _, err := store.Load(ctx, "traffic:28d", &latest); err != nil || latest.Sessions != 7 {
		t.Errorf("overwrite: got %+v, %v", latest, err)
	}
}

func TestMemorySnapshotStore(t *testing.T) {
	store := NewMemorySnapshotStore()
	defer store.Close()
	testSnapshotStore(t, store)
}

func TestBadgerSnapshotStore_InMemory(t *testing.T) {
	store, err := OpenBadgerSnapshotStore("")
	if err != nil {
		t.Fatalf("OpenBadgerSnapshotStore() error = %v", err)
	}
	defer store.Close()
	testSnapshotStore(t, store)
}

func TestBadgerSnapshotStore_Persists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenBadgerSnapshotStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "seo", snapshotPayload{Sessions: 3}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenBadgerSnapshotStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	var out snapshotPayload
	if _, ok, err := reopened.Load(ctx, "seo", &out); err != nil || !ok || out.Sessions != 3 {
		t.Errorf("after reopen: ok %v, err %v, out %+v", ok, err, out)
	}
}
