package cache

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingEmbedder struct {
	calls atomic.Int64
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return []float64{float64(len(text)), 1}, nil
}

func (c *countingEmbedder) Model() string { return "stub-embedding" }

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemoryStore() *memoryStore { return &memoryStore{data: map[string][]byte{}} }

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.data[key]
	if !ok {
		return nil, ErrMiss
	}
	return data, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func expectCalls(t *testing.T, next *countingEmbedder, expect int64) {
	t.Helper()
	if got := next.calls.Load(); got != expect {
		t.Fatalf("expected %d embedder calls, got %d", expect, got)
	}
}

func TestKeyDependsOnModelAndText(t *testing.T) {
	if Key("m", "text") != Key("m", "text") {
		t.Fatalf("key is not stable")
	}
	if Key("m", "text") == Key("m2", "text") || Key("m", "text") == Key("m", "text2") {
		t.Fatalf("key must depend on model and text")
	}
	if !strings.HasPrefix(Key("m", "x"), keyPrefix) {
		t.Fatalf("key %q lacks prefix %q", Key("m", "x"), keyPrefix)
	}
}

func TestEmbedHitsMemory(t *testing.T) {
	next := &countingEmbedder{}
	c := New(next, nil, Options{}, nil)

	first, err := c.Embed(context.Background(), "python")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Embed(context.Background(), "python")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("cached vector differs: %v vs %v", first, second)
	}
	expectCalls(t, next, 1)
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got %d and %d", hits, misses)
	}
	if c.Model() != "stub-embedding" {
		t.Fatalf("unexpected model %q", c.Model())
	}
}

func TestEmbedSharesThroughStore(t *testing.T) {
	store := newMemoryStore()
	next := &countingEmbedder{}

	if _, err := New(next, store, Options{}, nil).Embed(context.Background(), "sql"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A fresh process only has the shared tier.
	vec, err := New(next, store, Options{}, nil).Embed(context.Background(), "sql")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(vec, []float64{3, 1}) {
		t.Fatalf("unexpected vector %v", vec)
	}
	expectCalls(t, next, 1)
}

func TestEmbedIgnoresBrokenStore(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection refused")
	next := &countingEmbedder{}
	c := New(next, store, Options{}, nil)

	for range 2 {
		if _, err := c.Embed(context.Background(), "go"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	expectCalls(t, next, 1)
}

func TestEmbedDoesNotCacheErrors(t *testing.T) {
	next := &countingEmbedder{err: errors.New("quota")}
	c := New(next, nil, Options{}, nil)

	for range 2 {
		if _, err := c.Embed(context.Background(), "go"); err == nil {
			t.Fatalf("expected embedder error")
		}
	}
	expectCalls(t, next, 2)
}

func TestEntriesExpire(t *testing.T) {
	next := &countingEmbedder{}
	c := New(next, nil, Options{TTL: time.Minute}, nil)
	now := time.Now()
	c.now = func() time.Time { return now }

	_, _ = c.Embed(context.Background(), "go")
	now = now.Add(2 * time.Minute)
	_, _ = c.Embed(context.Background(), "go")

	expectCalls(t, next, 2)
}

func TestEvictsOldestWhenFull(t *testing.T) {
	next := &countingEmbedder{}
	c := New(next, nil, Options{MaxEntries: 2}, nil)
	now := time.Now()
	c.now = func() time.Time { return now }

	for _, text := range []string{"a", "bb", "ccc"} {
		_, _ = c.Embed(context.Background(), text)
		now = now.Add(time.Second)
	}
	if size := c.size.Load(); size != 2 {
		t.Fatalf("expected 2 entries, got %d", size)
	}

	// newest entry survives
	_, _ = c.Embed(context.Background(), "ccc")
	expectCalls(t, next, 3)

	// oldest entry was evicted
	_, _ = c.Embed(context.Background(), "a")
	expectCalls(t, next, 4)
}
