package search

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kailas-cloud/findex/internal/domain/collection"
	"github.com/kailas-cloud/findex/internal/domain/search/result"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

const attrFederation = "_federation"

// fuseRRF merges ranked sub-results of a federated search via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) for each sub-result where d appears.
// Hits are identified by index and primary key. The merged page is hits[offset:offset+limit],
// each annotated with the federation block the engine would have returned.
func fuseRRF(subs []result.Raw, offset, limit int) (result.Raw, error) {
	type scored struct {
		hit      json.RawMessage
		index    string
		position int
		score    float64
	}

	merged := make(map[string]*scored)
	order := make([]*scored, 0)

	out := result.Raw{Offset: offset, Limit: limit}

	for pos, sub := range subs {
		out.EstimatedTotalHits += sub.EstimatedTotalHits
		out.ProcessingTimeMs = max(out.ProcessingTimeMs, sub.ProcessingTimeMs)
		addIndexFacets(&out, sub)

		for rank, h := range sub.Hits {
			id, err := primaryKey(h)
			if err != nil {
				return result.Raw{}, fmt.Errorf("query %d hit %d: %w", pos, rank, err)
			}
			s := 1.0 / float64(rrfK+rank+1)
			key := sub.IndexUID + "/" + id
			if existing, ok := merged[key]; ok {
				existing.score += s
				continue
			}
			entry := &scored{hit: h, index: sub.IndexUID, position: pos, score: s}
			merged[key] = entry
			order = append(order, entry)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].score > order[j].score
	})

	if offset > len(order) {
		offset = len(order)
	}
	end := min(offset+limit, len(order))

	out.Hits = make([]json.RawMessage, 0, end-offset)
	for _, s := range order[offset:end] {
		hit, err := withFederation(s.hit, result.Federation{
			IndexUID:             s.index,
			QueriesPosition:      s.position,
			WeightedRankingScore: s.score,
		})
		if err != nil {
			return result.Raw{}, err
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

func addIndexFacets(out *result.Raw, sub result.Raw) {
	if len(sub.FacetDistribution) == 0 && len(sub.FacetStats) == 0 {
		return
	}
	if out.FacetsByIndex == nil {
		out.FacetsByIndex = make(map[string]result.IndexFacets)
	}
	if _, ok := out.FacetsByIndex[sub.IndexUID]; ok {
		return
	}
	out.FacetsByIndex[sub.IndexUID] = result.IndexFacets{
		Distribution: sub.FacetDistribution,
		Stats:        sub.FacetStats,
	}
}

func primaryKey(hit json.RawMessage) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(hit, &fields); err != nil {
		return "", fmt.Errorf("decode hit: %w", err)
	}
	id, ok := fields[collection.PrimaryKey]
	if !ok {
		return "", fmt.Errorf("hit has no %q attribute", collection.PrimaryKey)
	}
	return string(id), nil
}

func withFederation(hit json.RawMessage, fed result.Federation) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(hit, &fields); err != nil {
		return nil, fmt.Errorf("decode hit: %w", err)
	}
	data, err := json.Marshal(fed)
	if err != nil {
		return nil, fmt.Errorf("encode federation: %w", err)
	}
	fields[attrFederation] = data
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode hit: %w", err)
	}
	return out, nil
}
