package search

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/kailas-cloud/findex/internal/domain/search/result"
)

func hits(ids ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(ids))
	for i, id := range ids {
		out[i] = json.RawMessage(`{"id":"` + id + `","title":"doc ` + id + `"}`)
	}
	return out
}

func fedOf(t *testing.T, hit json.RawMessage) (string, result.Federation) {
	t.Helper()
	var doc struct {
		ID         string            `json:"id"`
		Federation result.Federation `json:"_federation"`
	}
	if err := json.Unmarshal(hit, &doc); err != nil {
		t.Fatalf("decode hit: %v", err)
	}
	return doc.ID, doc.Federation
}

func TestFuseRRF_DisjointIndexes(t *testing.T) {
	subs := []result.Raw{
		{IndexUID: "products", Hits: hits("a", "b"), EstimatedTotalHits: 2},
		{IndexUID: "articles", Hits: hits("a", "d"), EstimatedTotalHits: 2},
	}

	merged, err := fuseRRF(subs, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// the same id in two indexes stays two hits
	if len(merged.Hits) != 4 {
		t.Fatalf("expected 4 hits, got %d", len(merged.Hits))
	}
	if merged.EstimatedTotalHits != 4 {
		t.Errorf("EstimatedTotalHits = %d, want 4", merged.EstimatedTotalHits)
	}

	// rank 1 of both lists ties; stable order keeps the first query first
	id, fed := fedOf(t, merged.Hits[0])
	if id != "a" || fed.IndexUID != "products" || fed.QueriesPosition != 0 {
		t.Errorf("first hit = %s %+v", id, fed)
	}
	id, fed = fedOf(t, merged.Hits[1])
	if id != "a" || fed.IndexUID != "articles" || fed.QueriesPosition != 1 {
		t.Errorf("second hit = %s %+v", id, fed)
	}
	if math.Abs(fed.WeightedRankingScore-1.0/61) > 1e-12 {
		t.Errorf("score = %v, want 1/61", fed.WeightedRankingScore)
	}
}

func TestFuseRRF_OverlappingQueriesOnOneIndex(t *testing.T) {
	subs := []result.Raw{
		{IndexUID: "products", Hits: hits("a", "b", "c")},
		{IndexUID: "products", Hits: hits("b", "d", "a")},
	}

	merged, err := fuseRRF(subs, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(merged.Hits) != 4 {
		t.Fatalf("expected 4 hits, got %d", len(merged.Hits))
	}

	// "b": 1/62 + 1/61 beats "a": 1/61 + 1/63
	first, fed := fedOf(t, merged.Hits[0])
	if first != "b" {
		t.Errorf("expected 'b' first, got %s", first)
	}
	want := 1.0/62 + 1.0/61
	if math.Abs(fed.WeightedRankingScore-want) > 1e-12 {
		t.Errorf("score = %v, want %v", fed.WeightedRankingScore, want)
	}
}

func TestFuseRRF_Pagination(t *testing.T) {
	subs := []result.Raw{{IndexUID: "products", Hits: hits("a", "b", "c", "d", "e")}}

	merged, err := fuseRRF(subs, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(merged.Hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(merged.Hits))
	}
	if id, _ := fedOf(t, merged.Hits[0]); id != "c" {
		t.Errorf("expected 'c' at offset 2, got %s", id)
	}
	if merged.Offset != 2 || merged.Limit != 2 {
		t.Errorf("offset/limit = %d/%d", merged.Offset, merged.Limit)
	}

	beyond, err := fuseRRF(subs, 10, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(beyond.Hits) != 0 {
		t.Errorf("expected no hits past the end, got %d", len(beyond.Hits))
	}
}

func TestFuseRRF_FacetsByIndex(t *testing.T) {
	subs := []result.Raw{
		{IndexUID: "products", FacetDistribution: map[string]map[string]int{"brand": {"TechPro": 3}}},
		{IndexUID: "articles"},
	}
	merged, err := fuseRRF(subs, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.FacetsByIndex["products"].Distribution["brand"]["TechPro"] != 3 {
		t.Errorf("FacetsByIndex = %+v", merged.FacetsByIndex)
	}
	if _, ok := merged.FacetsByIndex["articles"]; ok {
		t.Error("index without facets should be omitted")
	}
}

func TestFuseRRF_HitWithoutPrimaryKey(t *testing.T) {
	subs := []result.Raw{{IndexUID: "products", Hits: []json.RawMessage{json.RawMessage(`{"title":"x"}`)}}}
	if _, err := fuseRRF(subs, 0, 10); err == nil {
		t.Fatal("expected error")
	}
}
