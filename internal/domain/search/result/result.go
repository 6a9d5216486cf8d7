// Package result reshapes raw engine responses into the canonical search result.
package result

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/findex/internal/domain/search/page"
)

// FacetStat holds min/max of a numeric facet over the matched documents.
type FacetStat struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// IndexFacets is the facet data of one index in a federated response.
type IndexFacets struct {
	Distribution map[string]map[string]int `json:"distribution,omitempty"`
	Stats        map[string]FacetStat      `json:"stats,omitempty"`
}

// Raw is the engine's search response. In a multi-search, IndexUID names the
// index the result belongs to.
type Raw struct {
	IndexUID           string                    `json:"indexUid,omitempty"`
	Hits               []json.RawMessage         `json:"hits"`
	Query              string                    `json:"query"`
	ProcessingTimeMs   int                       `json:"processingTimeMs"`
	Limit              int                       `json:"limit"`
	Offset             int                       `json:"offset"`
	EstimatedTotalHits int                       `json:"estimatedTotalHits"`
	FacetDistribution  map[string]map[string]int `json:"facetDistribution,omitempty"`
	FacetStats         map[string]FacetStat      `json:"facetStats,omitempty"`
	FacetsByIndex      map[string]IndexFacets    `json:"facetsByIndex,omitempty"`
}

// Federation tells which sub-query produced a hit of a federated search.
type Federation struct {
	IndexUID             string  `json:"indexUid"`
	QueriesPosition      int     `json:"queriesPosition"`
	WeightedRankingScore float64 `json:"weightedRankingScore,omitempty"`
}

// Hit is one document with its optional ranking details.
type Hit[T any] struct {
	Document     T           `json:"document"`
	RankingScore *float64    `json:"rankingScore,omitempty"`
	Federation   *Federation `json:"federation,omitempty"`
}

// Page is the canonical search result. TotalHits mirrors the engine's
// estimate and is not an exact count.
type Page[T any] struct {
	IndexUID           string                    `json:"indexUid,omitempty"`
	Hits               []Hit[T]                  `json:"hits"`
	Query              string                    `json:"query"`
	ProcessingTimeMs   int                       `json:"processingTimeMs"`
	Limit              int                       `json:"limit"`
	Offset             int                       `json:"offset"`
	EstimatedTotalHits int                       `json:"estimatedTotalHits"`
	Page               int                       `json:"page"`
	PageSize           int                       `json:"pageSize"`
	TotalHits          int                       `json:"totalHits"`
	TotalPages         int                       `json:"totalPages"`
	FacetDistribution  map[string]map[string]int `json:"facetDistribution,omitempty"`
	FacetStats         map[string]FacetStat      `json:"facetStats,omitempty"`
	FacetsByIndex      map[string]IndexFacets    `json:"facetsByIndex,omitempty"`
}

// Document is an untyped hit body, kept as the engine returned it.
type Document = json.RawMessage

// Reserved hit attributes moved out of the document.
const (
	attrRankingScore        = "_rankingScore"
	attrRankingScoreDetails = "_rankingScoreDetails"
	attrFederation          = "_federation"
)

// Normalize converts raw into a Page of T. totalPages is always recomputed
// from estimatedTotalHits and pageSize.
func Normalize[T any](raw Raw, pageNum, pageSize int) (Page[T], error) {
	totalPages, err := page.Count(raw.EstimatedTotalHits, pageSize)
	if err != nil {
		return Page[T]{}, err
	}

	hits := make([]Hit[T], len(raw.Hits))
	for i, h := range raw.Hits {
		hit, err := decodeHit[T](h)
		if err != nil {
			return Page[T]{}, fmt.Errorf("decode hit %d: %w", i, err)
		}
		hits[i] = hit
	}

	return Page[T]{
		IndexUID:           raw.IndexUID,
		Hits:               hits,
		Query:              raw.Query,
		ProcessingTimeMs:   raw.ProcessingTimeMs,
		Limit:              raw.Limit,
		Offset:             raw.Offset,
		EstimatedTotalHits: raw.EstimatedTotalHits,
		Page:               pageNum,
		PageSize:           pageSize,
		TotalHits:          raw.EstimatedTotalHits,
		TotalPages:         totalPages,
		FacetDistribution:  raw.FacetDistribution,
		FacetStats:         raw.FacetStats,
		FacetsByIndex:      raw.FacetsByIndex,
	}, nil
}

// Decode converts the documents of an untyped page into T.
func Decode[T any](p Page[Document]) (Page[T], error) {
	hits := make([]Hit[T], len(p.Hits))
	for i, h := range p.Hits {
		var doc T
		if err := json.Unmarshal(h.Document, &doc); err != nil {
			return Page[T]{}, fmt.Errorf("decode hit %d: %w", i, err)
		}
		hits[i] = Hit[T]{Document: doc, RankingScore: h.RankingScore, Federation: h.Federation}
	}
	return Page[T]{
		IndexUID:           p.IndexUID,
		Hits:               hits,
		Query:              p.Query,
		ProcessingTimeMs:   p.ProcessingTimeMs,
		Limit:              p.Limit,
		Offset:             p.Offset,
		EstimatedTotalHits: p.EstimatedTotalHits,
		Page:               p.Page,
		PageSize:           p.PageSize,
		TotalHits:          p.TotalHits,
		TotalPages:         p.TotalPages,
		FacetDistribution:  p.FacetDistribution,
		FacetStats:         p.FacetStats,
		FacetsByIndex:      p.FacetsByIndex,
	}, nil
}

func decodeHit[T any](data json.RawMessage) (Hit[T], error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Hit[T]{}, err
	}

	var hit Hit[T]
	if v, ok := fields[attrRankingScore]; ok {
		var score float64
		if err := json.Unmarshal(v, &score); err != nil {
			return Hit[T]{}, fmt.Errorf("%s: %w", attrRankingScore, err)
		}
		hit.RankingScore = &score
	}
	if v, ok := fields[attrFederation]; ok {
		var fed Federation
		if err := json.Unmarshal(v, &fed); err != nil {
			return Hit[T]{}, fmt.Errorf("%s: %w", attrFederation, err)
		}
		hit.Federation = &fed
	}
	delete(fields, attrRankingScore)
	delete(fields, attrRankingScoreDetails)
	delete(fields, attrFederation)

	doc, err := json.Marshal(fields)
	if err != nil {
		return Hit[T]{}, err
	}
	if err := json.Unmarshal(doc, &hit.Document); err != nil {
		return Hit[T]{}, err
	}
	return hit, nil
}

// FacetHit is one facet value with its document count.
type FacetHit struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FacetValues is the result of a facet value search.
type FacetValues struct {
	FacetHits        []FacetHit `json:"facetHits"`
	FacetQuery       *string    `json:"facetQuery"`
	ProcessingTimeMs int        `json:"processingTimeMs"`
}

// RawSimilar is the engine's similar-documents response.
type RawSimilar struct {
	Hits               []json.RawMessage `json:"hits"`
	ID                 string            `json:"id"`
	ProcessingTimeMs   int               `json:"processingTimeMs"`
	Limit              int               `json:"limit"`
	Offset             int               `json:"offset"`
	EstimatedTotalHits int               `json:"estimatedTotalHits"`
}

// Similar is the canonical similar-documents result.
type Similar[T any] struct {
	ID               string   `json:"id"`
	Hits             []Hit[T] `json:"hits"`
	ProcessingTimeMs int      `json:"processingTimeMs"`
	Limit            int      `json:"limit"`
}

// NormalizeSimilar converts a raw similar-documents response. id and limit
// fall back to the requested values when the engine omits them.
func NormalizeSimilar[T any](raw RawSimilar, id string, limit int) (Similar[T], error) {
	out := Similar[T]{
		ID:               raw.ID,
		Hits:             make([]Hit[T], len(raw.Hits)),
		ProcessingTimeMs: raw.ProcessingTimeMs,
		Limit:            raw.Limit,
	}
	if out.ID == "" {
		out.ID = id
	}
	if out.Limit == 0 {
		out.Limit = limit
	}
	for i, h := range raw.Hits {
		hit, err := decodeHit[T](h)
		if err != nil {
			return Similar[T]{}, fmt.Errorf("decode hit %d: %w", i, err)
		}
		out.Hits[i] = hit
	}
	return out, nil
}
