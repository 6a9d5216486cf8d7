package request

import (
	"github.com/kailas-cloud/findex/internal/domain"
	"github.com/kailas-cloud/findex/internal/domain/collection"
)

// MaxMultiQueries caps the sub-queries of one multi-search.
const MaxMultiQueries = 8

// Federation merges the hits of every sub-query into one ranked list.
type Federation struct {
	page              int
	pageSize          int
	facetsByIndex     map[collection.Name][]string
	maxValuesPerFacet int
}

// NewFederation validates a federation directive. facetsByIndex and
// maxValuesPerFacet are optional; maxValuesPerFacet > 0 enables merged facets.
func NewFederation(
	page, pageSize int,
	facetsByIndex map[collection.Name][]string,
	maxValuesPerFacet int,
) (*Federation, error) {
	if page < 1 {
		return nil, domain.Validationf("federation page must be >= 1, got %d", page)
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, domain.Validationf("federation page size must be between 1 and %d, got %d", MaxPageSize, pageSize)
	}
	if maxValuesPerFacet < 0 {
		return nil, domain.Validationf("maxValuesPerFacet must be >= 0, got %d", maxValuesPerFacet)
	}
	for c, facets := range facetsByIndex {
		if !c.IsValid() {
			return nil, domain.Validationf("unknown collection %q", c)
		}
		if _, err := validateFacets(c, facets); err != nil {
			return nil, err
		}
	}
	return &Federation{
		page:              page,
		pageSize:          pageSize,
		facetsByIndex:     facetsByIndex,
		maxValuesPerFacet: maxValuesPerFacet,
	}, nil
}

// Page returns the 1-based page of the merged list.
func (f *Federation) Page() int { return f.page }

// PageSize returns the hits per page of the merged list.
func (f *Federation) PageSize() int { return f.pageSize }

// FacetsByIndex returns the facets to compute per collection.
func (f *Federation) FacetsByIndex() map[collection.Name][]string { return f.facetsByIndex }

// MaxValuesPerFacet returns the merged facet cap, 0 when facets are not merged.
func (f *Federation) MaxValuesPerFacet() int { return f.maxValuesPerFacet }

// Multi is a validated bundle of sub-queries, optionally federated.
type Multi struct {
	queries    []Intent
	federation *Federation
}

// NewMulti validates a multi-search.
func NewMulti(queries []Intent, federation *Federation) (Multi, error) {
	if len(queries) == 0 {
		return Multi{}, domain.Validationf("at least one query is required")
	}
	if len(queries) > MaxMultiQueries {
		return Multi{}, domain.Validationf("too many queries (max %d)", MaxMultiQueries)
	}
	return Multi{queries: queries, federation: federation}, nil
}

// Queries returns the sub-queries in submission order.
func (m *Multi) Queries() []Intent { return m.queries }

// Federation returns the federation directive, nil when results stay separate.
func (m *Multi) Federation() *Federation { return m.federation }

// IsFederated reports whether results are merged.
func (m *Multi) IsFederated() bool { return m.federation != nil }
