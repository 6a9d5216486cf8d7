package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/findex/internal/db"
	"github.com/kailas-cloud/findex/internal/domain/collection"
	"github.com/kailas-cloud/findex/internal/domain/search/query"
	"github.com/kailas-cloud/findex/internal/domain/search/result"
)

// KeyPrefix is the namespace of every cached search response.
const KeyPrefix = "findex:search:"

// DefaultTTL is used when the configured TTL is not positive.
const DefaultTTL = 5 * time.Minute

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
}

// searcher is the engine call being cached.
type searcher interface {
	Search(ctx context.Context, index string, q query.Search) (result.Raw, error)
}

// CachedSearcher caches raw single-index search responses in a key-value store.
type CachedSearcher struct {
	inner      searcher
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"error"), passed explicitly.
func New(
	inner searcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSearcher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedSearcher{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Search returns a cached response or calls the engine.
// Cache failures never fail the search.
func (c *CachedSearcher) Search(ctx context.Context, index string, q query.Search) (result.Raw, error) {
	key, err := Key(index, q)
	if err != nil {
		c.inc("error")
		c.logger.Warn("Failed to build search cache key", zap.String("index", index), zap.Error(err))
		return c.inner.Search(ctx, index, q) //nolint:wrapcheck // decorator is transparent
	}

	if raw, ok := c.get(ctx, key); ok {
		c.inc("hit")
		return raw, nil
	}
	c.inc("miss")

	raw, err := c.inner.Search(ctx, index, q)
	if err != nil {
		return result.Raw{}, err //nolint:wrapcheck // decorator is transparent
	}

	c.put(ctx, key, raw)
	return raw, nil
}

// Invalidate drops every cached response of a collection.
func (c *CachedSearcher) Invalidate(ctx context.Context, name collection.Name) error {
	keys, err := c.store.Scan(ctx, KeyPrefix+string(name)+":*")
	if err != nil {
		return fmt.Errorf("scan cached searches: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("delete cached searches: %w", err)
	}
	c.logger.Debug("Search cache invalidated", zap.String("collection", string(name)), zap.Int("keys", len(keys)))
	return nil
}

// Key returns the cache key of a compiled query: the index followed by the
// SHA-256 of its JSON encoding.
func Key(index string, q query.Search) (string, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("marshal query: %w", err)
	}
	h := sha256.Sum256(data)
	return KeyPrefix + index + ":" + hex.EncodeToString(h[:]), nil
}

func (c *CachedSearcher) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedSearcher) get(ctx context.Context, key string) (result.Raw, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached search", zap.String("key", key), zap.Error(err))
		}
		return result.Raw{}, false
	}
	if len(data) == 0 {
		return result.Raw{}, false
	}

	var raw result.Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		c.logger.Warn("Failed to parse cached search", zap.String("key", key), zap.Error(err))
		return result.Raw{}, false
	}
	return raw, true
}

func (c *CachedSearcher) put(ctx context.Context, key string, raw result.Raw) {
	data, err := json.Marshal(raw)
	if err != nil {
		c.logger.Warn("Failed to encode search for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache search", zap.String("key", key), zap.Error(err))
	}
}
