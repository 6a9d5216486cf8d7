package chi

import (
	"encoding/json"
	"strings"

	"github.com/kailas-cloud/findex/internal/domain"
	"github.com/kailas-cloud/findex/internal/domain/collection"
	"github.com/kailas-cloud/findex/internal/domain/search/filter"
	"github.com/kailas-cloud/findex/internal/domain/search/mode"
	"github.com/kailas-cloud/findex/internal/domain/search/request"
)

// SearchDefaults fill the optional parameters of a search request.
type SearchDefaults struct {
	PageSize      int
	MaxPageSize   int
	SemanticRatio float64
}

type rangeRequest struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type geoRequest struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters float64 `json:"radiusMeters"`
}

// searchRequest is the body of POST /api/search and one entry of a multi-search.
// A missing or null q is a placeholder search. Missing page and pageSize take
// the defaults; explicit values below 1 are rejected.
type searchRequest struct {
	Collection            string                  `json:"collection"`
	Q                     *string                 `json:"q"`
	Facets                []string                `json:"facets"`
	FacetFilters          map[string][]string     `json:"facetFilters"`
	Flags                 map[string]bool         `json:"flags"`
	Ranges                map[string]rangeRequest `json:"ranges"`
	Geo                   *geoRequest             `json:"geo"`
	Filter                json.RawMessage         `json:"filter"`
	Sort                  []string                `json:"sort"`
	Page                  *int                    `json:"page"`
	PageSize              *int                    `json:"pageSize"`
	Distinct              string                  `json:"distinct"`
	Mode                  string                  `json:"mode"`
	SemanticRatio         *float64                `json:"semanticRatio"`
	RankingScoreThreshold *float64                `json:"rankingScoreThreshold"`
	ShowRankingScore      bool                    `json:"showRankingScore"`
}

type mergeFacetsRequest struct {
	MaxValuesPerFacet int `json:"maxValuesPerFacet"`
}

type federationRequest struct {
	Page          *int                `json:"page"`
	PageSize      *int                `json:"pageSize"`
	FacetsByIndex map[string][]string `json:"facetsByIndex"`
	MergeFacets   *mergeFacetsRequest `json:"mergeFacets"`
}

type multiSearchRequest struct {
	Queries    []searchRequest    `json:"queries"`
	Federation *federationRequest `json:"federation"`
}

type facetSearchRequest struct {
	Collection string          `json:"collection"`
	FacetName  string          `json:"facetName"`
	FacetQuery *string         `json:"facetQuery"`
	Q          *string         `json:"q"`
	Filter     json.RawMessage `json:"filter"`
}

type similarRequest struct {
	Collection            string          `json:"collection"`
	ID                    string          `json:"id"`
	Limit                 int             `json:"limit"`
	RankingScoreThreshold *float64        `json:"rankingScoreThreshold"`
	Filter                json.RawMessage `json:"filter"`
}

type listResponse[T any] struct {
	Results []T `json:"results"`
}

type facetsResponse struct {
	Collection string                 `json:"collection"`
	Facets     []collection.FacetMeta `json:"facets"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func text(q *string) request.Text {
	if q == nil {
		return request.NoQuery()
	}
	return request.Query(*q)
}

func parseFilter(data json.RawMessage) (filter.Raw, error) {
	raw, err := filter.ParseRaw(data)
	if err != nil {
		return filter.Raw{}, domain.Validationf("%v", err)
	}
	return raw, nil
}

func (d SearchDefaults) pageSize(requested *int) (int, error) {
	if requested == nil {
		return d.PageSize, nil
	}
	if n := *requested; n < 1 || n > d.MaxPageSize {
		return 0, domain.Validationf("pageSize must be between 1 and %d, got %d", d.MaxPageSize, n)
	}
	return *requested, nil
}

func pageNumber(requested *int) (int, error) {
	if requested == nil {
		return 1, nil
	}
	if *requested < 1 {
		return 0, domain.Validationf("page must be >= 1, got %d", *requested)
	}
	return *requested, nil
}

func (d SearchDefaults) intent(req searchRequest) (request.Intent, error) {
	m, err := mode.Parse(req.Mode)
	if err != nil {
		return request.Intent{}, domain.Validationf("%v", err)
	}
	raw, err := parseFilter(req.Filter)
	if err != nil {
		return request.Intent{}, err
	}
	size, err := d.pageSize(req.PageSize)
	if err != nil {
		return request.Intent{}, err
	}
	page, err := pageNumber(req.Page)
	if err != nil {
		return request.Intent{}, err
	}
	ratio := d.SemanticRatio
	if req.SemanticRatio != nil {
		ratio = *req.SemanticRatio
	}

	var ranges map[string]request.RangeParam
	if len(req.Ranges) > 0 {
		ranges = make(map[string]request.RangeParam, len(req.Ranges))
		for name, r := range req.Ranges {
			ranges[name] = request.RangeParam{Min: r.Min, Max: r.Max}
		}
	}
	var g *request.GeoParam
	if req.Geo != nil {
		g = &request.GeoParam{Lat: req.Geo.Lat, Lng: req.Geo.Lng, RadiusMeters: req.Geo.RadiusMeters}
	}

	intent, err := request.NewIntent(request.Params{
		Collection:     collection.Name(req.Collection),
		Text:           text(req.Q),
		Facets:         req.Facets,
		FacetFilters:   req.FacetFilters,
		Flags:          req.Flags,
		Ranges:         ranges,
		Geo:            g,
		Filter:         raw,
		Sort:           req.Sort,
		Page:           page,
		PageSize:       size,
		Distinct:       req.Distinct,
		Mode:           m,
		SemanticRatio:  ratio,
		ScoreThreshold: req.RankingScoreThreshold,
		ShowScore:      req.ShowRankingScore,
	})
	if err != nil {
		return request.Intent{}, err //nolint:wrapcheck // validation error is returned to the caller as is
	}
	return intent, nil
}

func (d SearchDefaults) multi(req multiSearchRequest) (request.Multi, error) {
	if len(req.Queries) > request.MaxMultiQueries {
		return request.Multi{}, domain.Validationf("too many queries (max %d)", request.MaxMultiQueries)
	}
	intents := make([]request.Intent, len(req.Queries))
	for i, q := range req.Queries {
		intent, err := d.intent(q)
		if err != nil {
			return request.Multi{}, domain.Validationf("queries[%d]: %v", i, unwrapValidation(err))
		}
		intents[i] = intent
	}

	var fed *request.Federation
	if f := req.Federation; f != nil {
		page, err := pageNumber(f.Page)
		if err != nil {
			return request.Multi{}, err
		}
		size, err := d.pageSize(f.PageSize)
		if err != nil {
			return request.Multi{}, err
		}
		var byIndex map[collection.Name][]string
		if len(f.FacetsByIndex) > 0 {
			byIndex = make(map[collection.Name][]string, len(f.FacetsByIndex))
			for name, facets := range f.FacetsByIndex {
				byIndex[collection.Name(name)] = facets
			}
		}
		maxValues := 0
		if f.MergeFacets != nil {
			maxValues = f.MergeFacets.MaxValuesPerFacet
		}
		fed, err = request.NewFederation(page, size, byIndex, maxValues)
		if err != nil {
			return request.Multi{}, err //nolint:wrapcheck // validation error is returned to the caller as is
		}
	}

	m, err := request.NewMulti(intents, fed)
	if err != nil {
		return request.Multi{}, err //nolint:wrapcheck // validation error is returned to the caller as is
	}
	return m, nil
}

func facetSearchFromRequest(req facetSearchRequest) (request.FacetSearch, error) {
	raw, err := parseFilter(req.Filter)
	if err != nil {
		return request.FacetSearch{}, err
	}
	fs, err := request.NewFacetSearch(
		collection.Name(req.Collection), req.FacetName, text(req.FacetQuery), text(req.Q), raw,
	)
	if err != nil {
		return request.FacetSearch{}, err //nolint:wrapcheck // validation error is returned to the caller as is
	}
	return fs, nil
}

func similarFromRequest(req similarRequest) (request.SimilarRequest, error) {
	raw, err := parseFilter(req.Filter)
	if err != nil {
		return request.SimilarRequest{}, err
	}
	sr, err := request.NewSimilar(
		collection.Name(req.Collection), req.ID, req.Limit, req.RankingScoreThreshold, raw,
	)
	if err != nil {
		return request.SimilarRequest{}, err //nolint:wrapcheck // validation error is returned to the caller as is
	}
	return sr, nil
}

// unwrapValidation drops the sentinel prefix so that nested messages read once.
func unwrapValidation(err error) string {
	msg, _ := strings.CutPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	return msg
}
