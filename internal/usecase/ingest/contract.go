package ingest

import (
	"context"
	"encoding/json"

	"github.com/kailas-cloud/findex/internal/domain/collection"
	domtask "github.com/kailas-cloud/findex/internal/domain/task"
	ustask "github.com/kailas-cloud/findex/internal/usecase/task"
)

// DocumentWriter submits documents to the engine and reads index state.
type DocumentWriter interface {
	AddDocuments(ctx context.Context, index string, docs []json.RawMessage) (domtask.Summary, error)
	IndexStats(ctx context.Context, index string) (collection.Stats, error)
}

// TaskAwaiter waits for a batch of mutation tasks.
type TaskAwaiter interface {
	Await(ctx context.Context, uids []int64, opts ustask.Options) (ustask.Outcome, error)
}

// CacheInvalidator drops cached search responses of a collection.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, name collection.Name) error
}
