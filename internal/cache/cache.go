// Package cache memoizes embeddings in memory and, when configured, in Redis.
// Only provider outputs are cached; nothing here is a source of truth.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BihanDasgupta/CareerNodes/internal/ai"
)

const (
	DefaultTTL        = 24 * time.Hour
	DefaultMaxEntries = 10000
	keyPrefix         = "careernodes:emb:"
	pingTimeout       = 3 * time.Second
)

// ErrMiss is returned by a Store that has no value for a key.
var ErrMiss = errors.New("cache miss")

// Store is the shared second tier.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type redisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to redisURL and pings it. Callers fall back to memory
// only when it fails.
func NewRedisStore(ctx context.Context, redisURL string) (Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	return &redisStore{rdb: rdb}, nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return data, err
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

type Options struct {
	TTL        time.Duration
	MaxEntries int
}

type entry struct {
	vector    []float64
	expiresAt time.Time
}

// Embedder wraps another embedder. It is safe for concurrent use; concurrent
// misses on the same text may each reach the provider.
type Embedder struct {
	next   ai.Embedder
	l2     Store
	ttl    time.Duration
	max    int
	logger *zap.Logger

	l1     sync.Map
	size   atomic.Int64
	hits   atomic.Int64
	misses atomic.Int64
	now    func() time.Time
}

// New wraps next. l2 may be nil for a memory-only cache.
func New(next ai.Embedder, l2 Store, opts Options, logger *zap.Logger) *Embedder {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		next:   next,
		l2:     l2,
		ttl:    opts.TTL,
		max:    opts.MaxEntries,
		logger: logger,
		now:    time.Now,
	}
}

// Key is stable across processes so Redis entries are shared between runs.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(model + "|" + text))
	return fmt.Sprintf("%s%x", keyPrefix, sum)
}

func (e *Embedder) Model() string { return e.next.Model() }

// Stats returns hit and miss counters.
func (e *Embedder) Stats() (hits, misses int64) {
	return e.hits.Load(), e.misses.Load()
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	key := Key(e.next.Model(), text)

	if vec, ok := e.loadL1(key); ok {
		e.hits.Add(1)
		return vec, nil
	}

	if vec, ok := e.loadL2(ctx, key); ok {
		e.hits.Add(1)
		e.storeL1(key, vec)
		return vec, nil
	}

	e.misses.Add(1)
	vec, err := e.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.storeL1(key, vec)
	e.storeL2(ctx, key, vec)
	return vec, nil
}

func (e *Embedder) loadL1(key string) ([]float64, bool) {
	val, ok := e.l1.Load(key)
	if !ok {
		return nil, false
	}
	item := val.(*entry)
	if e.now().Before(item.expiresAt) {
		return item.vector, true
	}
	if e.l1.CompareAndDelete(key, val) {
		e.size.Add(-1)
	}
	return nil, false
}

func (e *Embedder) loadL2(ctx context.Context, key string) ([]float64, bool) {
	if e.l2 == nil {
		return nil, false
	}

	data, err := e.l2.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			e.logger.Debug("cache: L2 get failed", zap.Error(err))
		}
		return nil, false
	}

	var vec []float64
	if err := json.Unmarshal(data, &vec); err != nil {
		e.logger.Debug("cache: corrupt L2 entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (e *Embedder) storeL1(key string, vec []float64) {
	e.evictIfNeeded()
	if _, loaded := e.l1.Swap(key, &entry{vector: vec, expiresAt: e.now().Add(e.ttl)}); !loaded {
		e.size.Add(1)
	}
}

func (e *Embedder) storeL2(ctx context.Context, key string, vec []float64) {
	if e.l2 == nil {
		return
	}
	data, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := e.l2.Set(ctx, key, data, e.ttl); err != nil {
		e.logger.Debug("cache: L2 set failed", zap.Error(err))
	}
}

// evictIfNeeded drops expired entries first, then the ones closest to expiry,
// until there is room for one more.
func (e *Embedder) evictIfNeeded() {
	if e.size.Load() < int64(e.max) {
		return
	}

	now := e.now()
	e.l1.Range(func(key, val any) bool {
		if now.After(val.(*entry).expiresAt) && e.l1.CompareAndDelete(key, val) {
			e.size.Add(-1)
		}
		return true
	})

	for e.size.Load() >= int64(e.max) {
		var oldestKey, oldestVal any
		var oldestAt time.Time
		e.l1.Range(func(key, val any) bool {
			at := val.(*entry).expiresAt
			if oldestKey == nil || at.Before(oldestAt) {
				oldestKey, oldestVal, oldestAt = key, val, at
			}
			return true
		})
		if oldestKey == nil {
			return
		}
		if e.l1.CompareAndDelete(oldestKey, oldestVal) {
			e.size.Add(-1)
		}
	}
}
