// Package embcache caches client-side query embeddings in a key-value store.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/findex/internal/db"
	"github.com/kailas-cloud/findex/internal/domain"
)

// KeyPrefix namespaces cached vectors: findex:emb:<model>:<sha256(text)>.
const KeyPrefix = "findex:emb:"

// DefaultTTL bounds how long a vector is reused.
const DefaultTTL = 24 * time.Hour

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedEmbedder caches query vectors per model.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	model      string
	dimensions int
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// Config describes the vectors produced by the inner embedder.
// Dimensions > 0 rejects cached vectors of another length.
type Config struct {
	Model      string
	Dimensions int
	TTL        time.Duration
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Embedder,
	s store,
	cfg Config,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		ttl:        cfg.TTL,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Embed returns a cached vector or calls the inner embedder.
// A hit reports zero tokens.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.Key(text)

	if vec, ok := c.get(ctx, key); ok {
		c.inc("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.inc("miss")

	res, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed query: %w", err)
	}

	c.put(ctx, key, res.Embedding)
	return res, nil
}

// Key returns the cache key of text for the configured model.
func (c *CachedEmbedder) Key(text string) string {
	h := sha256.Sum256([]byte(text))
	return KeyPrefix + c.model + ":" + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedEmbedder) get(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := decodeVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if c.dimensions > 0 && len(vec) != c.dimensions {
		c.logger.Warn("Cached embedding has wrong dimensions",
			zap.String("key", key), zap.Int("got", len(vec)), zap.Int("want", c.dimensions))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) put(ctx context.Context, key string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, encodeVector(vec), c.ttl); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

// encodeVector packs float32 values little-endian.
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
