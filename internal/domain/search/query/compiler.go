package query

import (
	"slices"

	"github.com/kailas-cloud/findex/internal/domain/search/filter"
	"github.com/kailas-cloud/findex/internal/domain/search/mode"
	"github.com/kailas-cloud/findex/internal/domain/search/page"
	"github.com/kailas-cloud/findex/internal/domain/search/request"
)

// Compiler turns validated requests into engine requests.
// It holds no mutable state and is safe for concurrent use.
type Compiler struct {
	embedder string
}

// NewCompiler creates a compiler. An empty embedder disables the hybrid directive.
func NewCompiler(embedder string) *Compiler {
	return &Compiler{embedder: embedder}
}

// Embedder returns the configured embedder name.
func (c *Compiler) Embedder() string { return c.embedder }

// Compile builds the engine query of a single-collection search.
func (c *Compiler) Compile(i request.Intent) Search {
	// page and size were validated by request.NewIntent
	offset, _ := page.Offset(i.Page(), i.PageSize())

	q := Search{
		Q:                     textPtr(i.Text()),
		Offset:                offset,
		Limit:                 i.PageSize(),
		Facets:                slices.Clone(i.Facets()),
		Distinct:              i.Distinct(),
		ShowRankingScore:      i.ShowScore(),
		RankingScoreThreshold: i.ScoreThreshold(),
		Hybrid:                c.hybrid(i.Mode(), i.SemanticRatio()),
	}
	if f, ok := filter.Compile(i.Filter()); ok {
		q.Filter = f
	}
	for _, s := range i.Sort() {
		q.Sort = append(q.Sort, s.String())
	}
	return q
}

// CompileMulti compiles every sub-query independently and bundles them.
// When federated, pagination moves from the sub-queries to the federation
// block and per-query facets are folded into facetsByIndex.
func (c *Compiler) CompileMulti(m request.Multi) Multi {
	intents := m.Queries()
	out := Multi{Queries: make([]Search, len(intents))}
	for idx, i := range intents {
		q := c.Compile(i)
		q.IndexUID = string(i.Collection())
		out.Queries[idx] = q
	}

	fed := m.Federation()
	if fed == nil {
		return out
	}

	offset, _ := page.Offset(fed.Page(), fed.PageSize())
	f := &Federation{Offset: offset, Limit: fed.PageSize()}
	for name, facets := range fed.FacetsByIndex() {
		f.addFacets(string(name), facets)
	}
	for idx := range out.Queries {
		q := &out.Queries[idx]
		f.addFacets(q.IndexUID, q.Facets)
		q.Offset, q.Limit, q.Facets = 0, 0, nil
	}
	if fed.MaxValuesPerFacet() > 0 {
		f.MergeFacets = &MergeFacets{MaxValuesPerFacet: fed.MaxValuesPerFacet()}
	}
	out.Federation = f
	return out
}

// CompileFacetSearch builds a facet value search. It carries no pagination
// and no hybrid directive.
func (c *Compiler) CompileFacetSearch(fs request.FacetSearch) FacetSearch {
	q := FacetSearch{
		FacetName:  fs.FacetName(),
		FacetQuery: textPtr(fs.FacetQuery()),
		Q:          textPtr(fs.Text()),
	}
	if f, ok := filter.Compile(fs.Filter()); ok {
		q.Filter = f
	}
	return q
}

// CompileSimilar builds a similar-documents request. Scores are always shown.
func (c *Compiler) CompileSimilar(r request.SimilarRequest) Similar {
	q := Similar{
		ID:                    r.ID(),
		Embedder:              c.embedder,
		Limit:                 r.Limit(),
		RankingScoreThreshold: r.ScoreThreshold(),
		ShowRankingScore:      true,
	}
	if f, ok := filter.Compile(filter.Input{Raw: r.Filter()}); ok {
		q.Filter = f
	}
	return q
}

func (c *Compiler) hybrid(m mode.Mode, ratio float64) *Hybrid {
	if c.embedder == "" {
		return nil
	}
	d := mode.Resolve(m, ratio, c.embedder)
	return &Hybrid{SemanticRatio: d.SemanticRatio, Embedder: d.Embedder}
}

func (f *Federation) addFacets(index string, facets []string) {
	if len(facets) == 0 {
		return
	}
	if f.FacetsByIndex == nil {
		f.FacetsByIndex = make(map[string][]string)
	}
	for _, name := range facets {
		if !slices.Contains(f.FacetsByIndex[index], name) {
			f.FacetsByIndex[index] = append(f.FacetsByIndex[index], name)
		}
	}
}

func textPtr(t request.Text) *string {
	v, ok := t.Value()
	if !ok {
		return nil
	}
	return &v
}
