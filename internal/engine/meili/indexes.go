package meili

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/findex/internal/domain"
	"github.com/kailas-cloud/findex/internal/domain/collection"
	"github.com/kailas-cloud/findex/internal/domain/task"
)

// CreateIndex creates an index with the given primary key.
func (c *Client) CreateIndex(ctx context.Context, index, primaryKey string) (task.Summary, error) {
	body := map[string]string{"uid": index, "primaryKey": primaryKey}
	return c.mutate(ctx, "create_index", http.MethodPost, "/indexes", body)
}

// UpdateSettings applies index settings. Omitted fields keep their values.
func (c *Client) UpdateSettings(ctx context.Context, index string, s collection.Settings) (task.Summary, error) {
	return c.mutate(ctx, "update_settings", http.MethodPatch, indexPath(index, "settings"), s)
}

// UpdateSynonyms replaces the synonym table.
func (c *Client) UpdateSynonyms(ctx context.Context, index string, synonyms map[string][]string) (task.Summary, error) {
	return c.mutate(ctx, "update_synonyms", http.MethodPut, indexPath(index, "settings", "synonyms"), synonyms)
}

// UpdateEmbedders configures the vector embedders of an index.
func (c *Client) UpdateEmbedders(
	ctx context.Context, index string, embedders map[string]collection.Embedder,
) (task.Summary, error) {
	return c.mutate(ctx, "update_embedders", http.MethodPatch, indexPath(index, "settings", "embedders"), embedders)
}

// IndexStats returns document count and indexing state.
func (c *Client) IndexStats(ctx context.Context, index string) (collection.Stats, error) {
	var s collection.Stats
	if err := c.get(ctx, "index_stats", indexPath(index, "stats"), &s); err != nil {
		return collection.Stats{}, err
	}
	return s, nil
}

// Health checks that the engine reports itself available.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "health", "/health", &resp); err != nil {
		return err
	}
	if resp.Status != "available" {
		return fmt.Errorf("health: status %q: %w", resp.Status, domain.ErrRemoteUnavailable)
	}
	return nil
}
