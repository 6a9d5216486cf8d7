package search

import (
	"context"

	"github.com/kailas-cloud/findex/internal/domain"
	"github.com/kailas-cloud/findex/internal/domain/search/query"
	"github.com/kailas-cloud/findex/internal/domain/search/result"
)

// Engine defines the remote search capability.
type Engine interface {
	Searcher
	MultiSearch(ctx context.Context, m query.Multi) ([]result.Raw, error)
	FederatedSearch(ctx context.Context, m query.Multi) (result.Raw, error)
	FacetSearch(ctx context.Context, index string, q query.FacetSearch) (result.FacetValues, error)
	Similar(ctx context.Context, index string, q query.Similar) (result.RawSimilar, error)
}

// Searcher runs a single-index search. Implemented by the engine and by the response cache.
type Searcher interface {
	Search(ctx context.Context, index string, q query.Search) (result.Raw, error)
}

// Embedder vectorizes query text when vectors are computed client-side.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
