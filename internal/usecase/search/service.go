package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/findex/internal/domain"
	"github.com/kailas-cloud/findex/internal/domain/search/mode"
	"github.com/kailas-cloud/findex/internal/domain/search/query"
	"github.com/kailas-cloud/findex/internal/domain/search/request"
	"github.com/kailas-cloud/findex/internal/domain/search/result"
)

// Options tune how queries reach the engine.
type Options struct {
	// NativeMultiSearch sends multi-queries in one engine call. When false,
	// sub-queries are issued concurrently and joined by index.
	NativeMultiSearch bool
}

// Page is a normalized search result with untyped documents.
type Page = result.Page[result.Document]

// Service compiles search requests, runs them on the engine, and normalizes the responses.
type Service struct {
	engine   Engine
	searcher Searcher
	compiler *query.Compiler
	embed    Embedder
	opts     Options
	logger   *zap.Logger
}

// New creates a search service.
// searcher may wrap the engine (e.g. with a cache); nil uses the engine directly.
// embed is optional: when set, query vectors are computed client-side.
func New(
	engine Engine,
	searcher Searcher,
	compiler *query.Compiler,
	embed Embedder,
	opts Options,
	logger *zap.Logger,
) *Service {
	if searcher == nil {
		searcher = engine
	}
	return &Service{
		engine:   engine,
		searcher: searcher,
		compiler: compiler,
		embed:    embed,
		opts:     opts,
		logger:   logger,
	}
}

// Search runs a single-collection search.
func (s *Service) Search(ctx context.Context, intent request.Intent) (Page, error) {
	q := s.compiler.Compile(intent)
	if err := s.attachVector(ctx, intent, &q); err != nil {
		return Page{}, err
	}

	index := string(intent.Collection())
	s.logger.Debug("Search compiled",
		zap.String("index", index),
		zap.String("filter", q.Filter),
		zap.Strings("sort", q.Sort),
		zap.Int("offset", q.Offset),
		zap.Int("limit", q.Limit),
	)

	raw, err := s.searcher.Search(ctx, index, q)
	if err != nil {
		return Page{}, fmt.Errorf("search %s: %w", index, err)
	}
	raw.IndexUID = index

	return result.Normalize[result.Document](raw, intent.Page(), intent.PageSize())
}

// MultiSearch runs several independent queries. Results keep the query order.
func (s *Service) MultiSearch(ctx context.Context, m request.Multi) ([]Page, error) {
	if m.IsFederated() {
		return nil, domain.Validationf("federated request passed to multi-search")
	}

	compiled, err := s.compileMulti(ctx, m)
	if err != nil {
		return nil, err
	}

	var raws []result.Raw
	if s.opts.NativeMultiSearch {
		raws, err = s.engine.MultiSearch(ctx, compiled)
		if err != nil {
			return nil, fmt.Errorf("multi-search: %w", err)
		}
	} else {
		raws, err = s.fanOut(ctx, compiled.Queries)
		if err != nil {
			return nil, err
		}
	}

	intents := m.Queries()
	pages := make([]Page, len(raws))
	for i, raw := range raws {
		p, err := result.Normalize[result.Document](raw, intents[i].Page(), intents[i].PageSize())
		if err != nil {
			return nil, fmt.Errorf("normalize query %d: %w", i, err)
		}
		pages[i] = p
	}
	return pages, nil
}

// FederatedSearch merges several queries into one ranked page.
func (s *Service) FederatedSearch(ctx context.Context, m request.Multi) (Page, error) {
	fed := m.Federation()
	if fed == nil {
		return Page{}, domain.Validationf("federation settings are required")
	}

	compiled, err := s.compileMulti(ctx, m)
	if err != nil {
		return Page{}, err
	}

	var raw result.Raw
	if s.opts.NativeMultiSearch {
		raw, err = s.engine.FederatedSearch(ctx, compiled)
		if err != nil {
			return Page{}, fmt.Errorf("federated search: %w", err)
		}
	} else {
		raw, err = s.federateLocally(ctx, compiled)
		if err != nil {
			return Page{}, err
		}
	}

	return result.Normalize[result.Document](raw, fed.Page(), fed.PageSize())
}

// FacetSearch looks up facet values matching a facet query.
func (s *Service) FacetSearch(ctx context.Context, fs request.FacetSearch) (result.FacetValues, error) {
	index := string(fs.Collection())
	values, err := s.engine.FacetSearch(ctx, index, s.compiler.CompileFacetSearch(fs))
	if err != nil {
		return result.FacetValues{}, fmt.Errorf("facet search %s: %w", index, err)
	}
	return values, nil
}

// Similar finds documents close to a reference document.
func (s *Service) Similar(ctx context.Context, r request.SimilarRequest) (result.Similar[result.Document], error) {
	if s.compiler.Embedder() == "" {
		return result.Similar[result.Document]{}, fmt.Errorf("similar documents need an embedder: %w", domain.ErrNotImplemented)
	}

	index := string(r.Collection())
	raw, err := s.engine.Similar(ctx, index, s.compiler.CompileSimilar(r))
	if err != nil {
		return result.Similar[result.Document]{}, fmt.Errorf("similar %s: %w", index, err)
	}
	return result.NormalizeSimilar[result.Document](raw, r.ID(), r.Limit())
}

func (s *Service) compileMulti(ctx context.Context, m request.Multi) (query.Multi, error) {
	compiled := s.compiler.CompileMulti(m)
	intents := m.Queries()
	for i := range compiled.Queries {
		if err := s.attachVector(ctx, intents[i], &compiled.Queries[i]); err != nil {
			return query.Multi{}, fmt.Errorf("query %d: %w", i, err)
		}
	}
	return compiled, nil
}

// attachVector embeds the query text client-side. Without text there is
// nothing to embed, so the hybrid directive is dropped and the query runs as
// a keyword browse.
func (s *Service) attachVector(ctx context.Context, intent request.Intent, q *query.Search) error {
	if s.embed == nil || q.Hybrid == nil {
		return nil
	}
	text, ok := intent.Text().Value()
	if !ok || text == "" {
		q.Hybrid = nil
		return nil
	}
	if intent.Mode() == mode.Keyword {
		return nil
	}

	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("vectorize query: %w", err)
	}
	q.Vector = emb.Embedding
	return nil
}

// fanOut issues every query concurrently and joins the results by position.
func (s *Service) fanOut(ctx context.Context, queries []query.Search) ([]result.Raw, error) {
	raws := make([]result.Raw, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			index := q.IndexUID
			raw, err := s.searcher.Search(gctx, index, q)
			if err != nil {
				return fmt.Errorf("query %d (%s): %w", i, index, err)
			}
			raw.IndexUID = index
			raws[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped per query
	}
	return raws, nil
}

// federateLocally runs the sub-queries of a federated request as independent
// searches and fuses them. Each sub-query fetches enough hits to fill the requested page.
func (s *Service) federateLocally(ctx context.Context, m query.Multi) (result.Raw, error) {
	fed := m.Federation
	queries := make([]query.Search, len(m.Queries))
	for i, q := range m.Queries {
		q.Offset = 0
		q.Limit = fed.Offset + fed.Limit
		q.Facets = fed.FacetsByIndex[q.IndexUID]
		queries[i] = q
	}

	s.logger.Debug("Federating locally", zap.Int("queries", len(queries)))

	subs, err := s.fanOut(ctx, queries)
	if err != nil {
		return result.Raw{}, err
	}
	merged, err := fuseRRF(subs, fed.Offset, fed.Limit)
	if err != nil {
		return result.Raw{}, fmt.Errorf("fuse results: %w", err)
	}
	return merged, nil
}
