package redis

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/findex/internal/db"
)

// scanBatch is the COUNT hint of each SCAN round.
const scanBatch = 100

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.b().Get().Key(key).Build()
	data, err := s.do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// SetWithTTL stores a value with an expiration.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del removes keys. Missing keys are ignored.
// Every key gets its own DEL, pipelined, so keys of different cluster slots
// never share one command.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	cmds := make(rueidis.Commands, 0, len(keys))
	for _, k := range keys {
		cmds = append(cmds, s.b().Del().Key(k).Build())
	}
	for _, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpDel, Err: err}
		}
	}
	return nil
}

// Scan iterates keys matching a pattern on every node of the deployment.
// Keys reported by more than one node are returned once.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	nodes := s.client.Nodes()
	seen := make(map[string]struct{})
	var keys []string

	for _, addr := range slices.Sorted(maps.Keys(nodes)) {
		nodeKeys, err := scanNode(ctx, nodes[addr], pattern)
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		for _, k := range nodeKeys {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}

	return keys, nil
}

func scanNode(ctx context.Context, c rueidis.Client, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := c.B().Scan().Cursor(cursor).Match(pattern).Count(scanBatch).Build()
		res, err := c.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped as *db.Error by Scan
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			return keys, nil
		}
	}
}
