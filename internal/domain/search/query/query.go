// Package query compiles validated search requests into engine requests.
package query

// Hybrid is the hybrid-search weighting of a query.
type Hybrid struct {
	SemanticRatio float64 `json:"semanticRatio"`
	Embedder      string  `json:"embedder"`
}

// Search is a compiled search request. IndexUID is set only inside a multi-search.
type Search struct {
	IndexUID              string    `json:"indexUid,omitempty"`
	Q                     *string   `json:"q,omitempty"`
	Offset                int       `json:"offset,omitempty"`
	Limit                 int       `json:"limit,omitempty"`
	Filter                string    `json:"filter,omitempty"`
	Facets                []string  `json:"facets,omitempty"`
	Sort                  []string  `json:"sort,omitempty"`
	Distinct              string    `json:"distinct,omitempty"`
	ShowRankingScore      bool      `json:"showRankingScore,omitempty"`
	RankingScoreThreshold *float64  `json:"rankingScoreThreshold,omitempty"`
	Hybrid                *Hybrid   `json:"hybrid,omitempty"`
	Vector                []float32 `json:"vector,omitempty"`
}

// HasText reports whether the query carries text (possibly empty).
func (s *Search) HasText() bool { return s.Q != nil }

// FacetSearch is a compiled facet value search.
type FacetSearch struct {
	FacetName  string  `json:"facetName"`
	FacetQuery *string `json:"facetQuery,omitempty"`
	Q          *string `json:"q,omitempty"`
	Filter     string  `json:"filter,omitempty"`
}

// Similar is a compiled similar-documents request.
type Similar struct {
	ID                    string   `json:"id"`
	Embedder              string   `json:"embedder"`
	Limit                 int      `json:"limit"`
	Filter                string   `json:"filter,omitempty"`
	RankingScoreThreshold *float64 `json:"rankingScoreThreshold,omitempty"`
	ShowRankingScore      bool     `json:"showRankingScore"`
}

// Multi is a compiled multi-search, federated when Federation is set.
type Multi struct {
	Queries    []Search    `json:"queries"`
	Federation *Federation `json:"federation,omitempty"`
}

// Federation carries the merged-list pagination and facet hints.
type Federation struct {
	Offset        int                 `json:"offset"`
	Limit         int                 `json:"limit"`
	FacetsByIndex map[string][]string `json:"facetsByIndex,omitempty"`
	MergeFacets   *MergeFacets        `json:"mergeFacets,omitempty"`
}

// MergeFacets asks the engine to merge per-index facet distributions.
type MergeFacets struct {
	MaxValuesPerFacet int `json:"maxValuesPerFacet"`
}
