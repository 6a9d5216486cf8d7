package bootstrap

import (
	"context"

	"github.com/kailas-cloud/findex/internal/domain/collection"
	domtask "github.com/kailas-cloud/findex/internal/domain/task"
	ustask "github.com/kailas-cloud/findex/internal/usecase/task"
)

// IndexAdmin provisions engine indexes. Every call returns the enqueued task.
type IndexAdmin interface {
	DeleteIndex(ctx context.Context, index string) (domtask.Summary, error)
	CreateIndex(ctx context.Context, index, primaryKey string) (domtask.Summary, error)
	UpdateSettings(ctx context.Context, index string, s collection.Settings) (domtask.Summary, error)
	UpdateSynonyms(ctx context.Context, index string, synonyms map[string][]string) (domtask.Summary, error)
	UpdateEmbedders(ctx context.Context, index string, embedders map[string]collection.Embedder) (domtask.Summary, error)
}

// TaskAwaiter waits for a batch of mutation tasks.
type TaskAwaiter interface {
	Await(ctx context.Context, uids []int64, opts ustask.Options) (ustask.Outcome, error)
}

// CacheInvalidator drops cached search responses of a collection.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, name collection.Name) error
}
