package searchcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/findex/internal/db"
	"github.com/kailas-cloud/findex/internal/domain/search/query"
	"github.com/kailas-cloud/findex/internal/domain/search/result"
)

type mockSearcher struct {
	raw   result.Raw
	err   error
	calls int
}

func (m *mockSearcher) Search(_ context.Context, _ string, _ query.Search) (result.Raw, error) {
	m.calls++
	return m.raw, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn  func(ctx context.Context, key string) ([]byte, error)
	setFn  func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	scanFn func(ctx context.Context, pattern string) ([]string, error)
	delFn  func(ctx context.Context, keys ...string) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockKVStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockKVStore) Del(ctx context.Context, keys ...string) error {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return nil
}

func newTestCachedSearcher(t *testing.T, inner *mockSearcher) (*CachedSearcher, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cs := New(inner, ms, time.Minute, nil, zap.NewNop())
	return cs, ms
}
