package request

import (
	"math"
	"strings"

	"github.com/kailas-cloud/findex/internal/domain"
	"github.com/kailas-cloud/findex/internal/domain/collection"
	"github.com/kailas-cloud/findex/internal/domain/geo"
	"github.com/kailas-cloud/findex/internal/domain/search/filter"
	"github.com/kailas-cloud/findex/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength  = 4096
	DefaultPageSize = 12
	// MaxPageSize is the hard cap on hits per page.
	MaxPageSize = 1000
	MaxFacets   = 32
	MaxSort     = 8
)

// Text is the query text of a search: either absent (placeholder search)
// or a string, which may be empty.
type Text struct {
	value string
	set   bool
}

// NoQuery is the placeholder search text.
func NoQuery() Text { return Text{} }

// Query wraps a search string.
func Query(s string) Text { return Text{value: s, set: true} }

// Value returns the text and whether it is set.
func (t Text) Value() (string, bool) { return t.value, t.set }

// IsPlaceholder reports whether no text was given.
func (t Text) IsPlaceholder() bool { return !t.set }

// String returns the text or "" for a placeholder search.
func (t Text) String() string { return t.value }

// RangeParam is a caller-supplied numeric interval.
type RangeParam struct {
	Min *float64
	Max *float64
}

// GeoParam is a caller-supplied radius constraint.
type GeoParam struct {
	Lat          float64
	Lng          float64
	RadiusMeters float64
}

// Params are the unvalidated inputs of a search.
type Params struct {
	Collection     collection.Name
	Text           Text
	Facets         []string            // facet distributions to compute
	FacetFilters   map[string][]string // selected facet values
	Flags          map[string]bool
	Ranges         map[string]RangeParam
	Geo            *GeoParam
	Filter         filter.Raw
	Sort           []string
	Page           int
	PageSize       int
	Distinct       string
	Mode           mode.Mode
	SemanticRatio  float64
	ScoreThreshold *float64
	ShowScore      bool
}

// Intent is a validated search over one collection.
type Intent struct {
	collection     collection.Name
	text           Text
	facets         []string
	filter         filter.Input
	sort           []Sort
	page           int
	pageSize       int
	distinct       string
	searchMode     mode.Mode
	semanticRatio  float64
	scoreThreshold *float64
	showScore      bool
}

// NewIntent validates p. Every error wraps domain.ErrValidation.
// Mode defaults to hybrid; the ratio must lie in [0,1].
func NewIntent(p Params) (Intent, error) {
	if !p.Collection.IsValid() {
		return Intent{}, domain.Validationf("unknown collection %q", p.Collection)
	}
	if q, _ := p.Text.Value(); len(q) > MaxQueryLength {
		return Intent{}, domain.Validationf("query too long (max %d chars)", MaxQueryLength)
	}
	if p.Page < 1 {
		return Intent{}, domain.Validationf("page must be >= 1, got %d", p.Page)
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return Intent{}, domain.Validationf("page size must be between 1 and %d, got %d", MaxPageSize, p.PageSize)
	}

	m := p.Mode
	if m == "" {
		m = mode.Hybrid
	}
	if !m.IsValid() {
		return Intent{}, domain.Validationf("invalid search mode: %q", m)
	}
	if math.IsNaN(p.SemanticRatio) || p.SemanticRatio < 0 || p.SemanticRatio > 1 {
		return Intent{}, domain.Validationf("semantic ratio must be between 0 and 1, got %v", p.SemanticRatio)
	}
	if t := p.ScoreThreshold; t != nil && (math.IsNaN(*t) || *t < 0 || *t > 1) {
		return Intent{}, domain.Validationf("ranking score threshold must be between 0 and 1, got %v", *t)
	}

	facets, err := validateFacets(p.Collection, p.Facets)
	if err != nil {
		return Intent{}, err
	}
	in, err := buildFilter(p.Collection, p.FacetFilters, p.Flags, p.Ranges, p.Geo)
	if err != nil {
		return Intent{}, err
	}
	in.Raw = p.Filter

	sorts, err := ParseSorts(p.Collection, p.Sort)
	if err != nil {
		return Intent{}, err
	}

	distinct := strings.TrimSpace(p.Distinct)
	if distinct != "" && !p.Collection.IsFilterable(distinct) {
		return Intent{}, domain.Validationf("distinct attribute %q is not filterable in %s", distinct, p.Collection)
	}

	return Intent{
		collection:     p.Collection,
		text:           p.Text,
		facets:         facets,
		filter:         in,
		sort:           sorts,
		page:           p.Page,
		pageSize:       p.PageSize,
		distinct:       distinct,
		searchMode:     m,
		semanticRatio:  p.SemanticRatio,
		scoreThreshold: p.ScoreThreshold,
		showScore:      p.ShowScore,
	}, nil
}

// Collection returns the target collection.
func (i *Intent) Collection() collection.Name { return i.collection }

// Text returns the query text.
func (i *Intent) Text() Text { return i.text }

// Facets returns the facet distributions to compute.
func (i *Intent) Facets() []string { return i.facets }

// Filter returns the structured filter inputs.
func (i *Intent) Filter() filter.Input { return i.filter }

// Sort returns the sort clauses in priority order.
func (i *Intent) Sort() []Sort { return i.sort }

// Page returns the 1-based page number.
func (i *Intent) Page() int { return i.page }

// PageSize returns the number of hits per page.
func (i *Intent) PageSize() int { return i.pageSize }

// Distinct returns the attribute used to deduplicate hits, or "".
func (i *Intent) Distinct() string { return i.distinct }

// Mode returns the search strategy.
func (i *Intent) Mode() mode.Mode { return i.searchMode }

// SemanticRatio returns the requested hybrid weighting.
func (i *Intent) SemanticRatio() float64 { return i.semanticRatio }

// ScoreThreshold returns the minimum ranking score, nil when unset.
func (i *Intent) ScoreThreshold() *float64 { return i.scoreThreshold }

// ShowScore reports whether hits should carry their ranking score.
func (i *Intent) ShowScore() bool { return i.showScore }

func validateFacets(c collection.Name, facets []string) ([]string, error) {
	if len(facets) > MaxFacets {
		return nil, domain.Validationf("too many facets (max %d)", MaxFacets)
	}
	out := make([]string, 0, len(facets))
	for _, f := range facets {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if f != "*" && !c.IsFilterable(f) {
			return nil, domain.Validationf("facet %q is not filterable in %s", f, c)
		}
		out = append(out, f)
	}
	return out, nil
}

func buildFilter(
	c collection.Name,
	facets map[string][]string,
	flags map[string]bool,
	ranges map[string]RangeParam,
	g *GeoParam,
) (filter.Input, error) {
	var in filter.Input

	for name, values := range facets {
		if !c.IsFilterable(name) {
			return filter.Input{}, domain.Validationf("facet %q is not filterable in %s", name, c)
		}
		if len(values) > filter.MaxValuesPerFacet {
			return filter.Input{}, domain.Validationf("too many values for facet %q (max %d)", name, filter.MaxValuesPerFacet)
		}
		if in.Facets == nil {
			in.Facets = make(map[string][]string, len(facets))
		}
		in.Facets[name] = values
	}

	for name, v := range flags {
		if !c.IsFilterable(name) {
			return filter.Input{}, domain.Validationf("flag %q is not filterable in %s", name, c)
		}
		if in.Flags == nil {
			in.Flags = make(map[string]bool, len(flags))
		}
		in.Flags[name] = v
	}

	for name, rp := range ranges {
		if !c.IsFilterable(name) {
			return filter.Input{}, domain.Validationf("range field %q is not filterable in %s", name, c)
		}
		r, err := filter.NewRange(rp.Min, rp.Max)
		if err != nil {
			return filter.Input{}, domain.Validationf("range %q: %v", name, err)
		}
		if in.Ranges == nil {
			in.Ranges = make(map[string]filter.Range, len(ranges))
		}
		in.Ranges[name] = r
	}

	if g != nil {
		if !c.SupportsGeo() {
			return filter.Input{}, domain.Validationf("collection %s has no coordinates", c)
		}
		r, err := geo.NewRadius(g.Lat, g.Lng, g.RadiusMeters)
		if err != nil {
			return filter.Input{}, domain.Validationf("geo: %v", err)
		}
		in.Geo = &r
	}
	return in, nil
}
