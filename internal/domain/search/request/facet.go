package request

import (
	"strings"

	"github.com/kailas-cloud/findex/internal/domain"
	"github.com/kailas-cloud/findex/internal/domain/collection"
	"github.com/kailas-cloud/findex/internal/domain/search/filter"
)

// FacetSearch is a validated search over the values of one facet.
type FacetSearch struct {
	collection collection.Name
	facetName  string
	facetQuery Text
	text       Text
	filter     filter.Input
}

// NewFacetSearch validates a facet value search. The facet must be filterable.
func NewFacetSearch(c collection.Name, facetName string, facetQuery, text Text, raw filter.Raw) (FacetSearch, error) {
	if !c.IsValid() {
		return FacetSearch{}, domain.Validationf("unknown collection %q", c)
	}
	facetName = strings.TrimSpace(facetName)
	if facetName == "" {
		return FacetSearch{}, domain.Validationf("facet name is required")
	}
	if !c.IsFilterable(facetName) {
		return FacetSearch{}, domain.Validationf("facet %q is not filterable in %s", facetName, c)
	}
	for _, t := range []Text{facetQuery, text} {
		if q, _ := t.Value(); len(q) > MaxQueryLength {
			return FacetSearch{}, domain.Validationf("query too long (max %d chars)", MaxQueryLength)
		}
	}
	return FacetSearch{
		collection: c,
		facetName:  facetName,
		facetQuery: facetQuery,
		text:       text,
		filter:     filter.Input{Raw: raw},
	}, nil
}

// Collection returns the target collection.
func (f *FacetSearch) Collection() collection.Name { return f.collection }

// FacetName returns the facet whose values are searched.
func (f *FacetSearch) FacetName() string { return f.facetName }

// FacetQuery returns the text matched against facet values.
func (f *FacetSearch) FacetQuery() Text { return f.facetQuery }

// Text returns the document query restricting the candidate set.
func (f *FacetSearch) Text() Text { return f.text }

// Filter returns the filter restricting the candidate set.
func (f *FacetSearch) Filter() filter.Input { return f.filter }
