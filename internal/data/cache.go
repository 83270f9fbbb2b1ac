package data

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/metrics"
)

// CacheConfig bounds the bar-series cache.
type CacheConfig struct {
	TTL     time.Duration `yaml:"ttl"`
	MaxSize int           `yaml:"max_size"`
}

// DefaultCacheConfig: 300s TTL, 100 entries.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: 300 * time.Second, MaxSize: 100}
}

// CachedProvider memoizes fetches by (symbol, period) in a bounded LRU
// with TTL expiry. Concurrent fetches for the same key collapse to one
// upstream request: the first caller owns the in-flight entry, later
// callers wait on its completion channel.
type CachedProvider struct {
	upstream Provider
	cfg      CacheConfig

	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	inflight map[string]*flightCall
}

type cacheEntry struct {
	key     string
	series  domain.BarSeries
	expires time.Time
}

type flightCall struct {
	done   chan struct{}
	series domain.BarSeries
	err    error
}

// NewCachedProvider wraps upstream with the memoizing layer.
func NewCachedProvider(upstream Provider, cfg CacheConfig) *CachedProvider {
	if cfg.TTL <= 0 {
		cfg.TTL = 300 * time.Second
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 100
	}
	return &CachedProvider{
		upstream: upstream,
		cfg:      cfg,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		inflight: make(map[string]*flightCall),
	}
}

func cacheKey(symbol string, period domain.Period) string {
	return symbol + "|" + string(period)
}

// Fetch returns a cached series when fresh, otherwise performs exactly
// one upstream fetch per key regardless of concurrent callers.
func (p *CachedProvider) Fetch(ctx context.Context, symbol string, period domain.Period) (domain.BarSeries, error) {
	key := cacheKey(symbol, period)

	p.mu.Lock()
	if elem, ok := p.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		if time.Now().Before(entry.expires) {
			p.order.MoveToFront(elem)
			p.mu.Unlock()
			metrics.FetchCacheHits.Inc()
			return entry.series, nil
		}
		// Expired: drop and fall through to fetch.
		p.order.Remove(elem)
		delete(p.entries, key)
	}
	metrics.FetchCacheMisses.Inc()

	if call, ok := p.inflight[key]; ok {
		// Another caller owns the upstream request; wait on it.
		p.mu.Unlock()
		select {
		case <-call.done:
			return call.series, call.err
		case <-ctx.Done():
			return domain.BarSeries{}, domain.WrapError(domain.ErrDataFetch,
				"fetch cancelled waiting for in-flight request", ctx.Err())
		}
	}

	call := &flightCall{done: make(chan struct{})}
	p.inflight[key] = call
	p.mu.Unlock()

	series, err := p.upstream.Fetch(ctx, symbol, period)
	call.series, call.err = series, err

	p.mu.Lock()
	delete(p.inflight, key)
	if err == nil {
		p.store(key, series)
	}
	p.mu.Unlock()
	close(call.done)

	return series, err
}

// store inserts under the write lock, evicting the least recently used
// entry at capacity.
func (p *CachedProvider) store(key string, series domain.BarSeries) {
	if elem, ok := p.entries[key]; ok {
		p.order.Remove(elem)
		delete(p.entries, key)
	}
	for len(p.entries) >= p.cfg.MaxSize {
		oldest := p.order.Back()
		if oldest == nil {
			break
		}
		p.order.Remove(oldest)
		delete(p.entries, oldest.Value.(*cacheEntry).key)
	}
	elem := p.order.PushFront(&cacheEntry{
		key:     key,
		series:  series,
		expires: time.Now().Add(p.cfg.TTL),
	})
	p.entries[key] = elem
}

// Len reports the current number of cached series.
func (p *CachedProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
