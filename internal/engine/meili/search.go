package meili

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/findex/internal/domain/search/query"
	"github.com/kailas-cloud/findex/internal/domain/search/result"
)

// Search runs one query against an index.
func (c *Client) Search(ctx context.Context, index string, q query.Search) (result.Raw, error) {
	q.IndexUID = ""
	var raw result.Raw
	if err := c.post(ctx, "search", indexPath(index, "search"), q, &raw); err != nil {
		return result.Raw{}, err
	}
	return raw, nil
}

// MultiSearch runs independent queries in one request. Results keep the
// order of m.Queries.
func (c *Client) MultiSearch(ctx context.Context, m query.Multi) ([]result.Raw, error) {
	if m.Federation != nil {
		return nil, errors.New("multi_search: federated request, use FederatedSearch")
	}
	var resp struct {
		Results []result.Raw `json:"results"`
	}
	if err := c.post(ctx, "multi_search", "/multi-search", m, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) != len(m.Queries) {
		return nil, fmt.Errorf("multi_search: got %d results for %d queries", len(resp.Results), len(m.Queries))
	}
	return resp.Results, nil
}

// FederatedSearch runs queries whose hits are merged into one list.
func (c *Client) FederatedSearch(ctx context.Context, m query.Multi) (result.Raw, error) {
	if m.Federation == nil {
		return result.Raw{}, errors.New("federated_search: federation directive is required")
	}
	var raw result.Raw
	if err := c.post(ctx, "federated_search", "/multi-search", m, &raw); err != nil {
		return result.Raw{}, err
	}
	return raw, nil
}

// FacetSearch searches the values of one facet.
func (c *Client) FacetSearch(ctx context.Context, index string, q query.FacetSearch) (result.FacetValues, error) {
	var out result.FacetValues
	if err := c.post(ctx, "facet_search", indexPath(index, "facet-search"), q, &out); err != nil {
		return result.FacetValues{}, err
	}
	if out.FacetHits == nil {
		out.FacetHits = []result.FacetHit{}
	}
	return out, nil
}

// Similar returns documents close to a reference document in embedding space.
func (c *Client) Similar(ctx context.Context, index string, q query.Similar) (result.RawSimilar, error) {
	var raw result.RawSimilar
	if err := c.post(ctx, "similar", indexPath(index, "similar"), q, &raw); err != nil {
		return result.RawSimilar{}, err
	}
	return raw, nil
}
