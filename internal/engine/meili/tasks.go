package meili

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kailas-cloud/findex/internal/domain/task"
)

// GetTask returns the current state of a task.
func (c *Client) GetTask(ctx context.Context, uid int64) (task.Task, error) {
	var t task.Task
	if err := c.get(ctx, "get_task", "/tasks/"+strconv.FormatInt(uid, 10), &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// ListTasks returns the latest tasks, newest first.
func (c *Client) ListTasks(ctx context.Context, limit int) (task.List, error) {
	path := "/tasks"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var l task.List
	if err := c.get(ctx, "list_tasks", path, &l); err != nil {
		return task.List{}, err
	}
	return l, nil
}

// AddDocuments adds or replaces documents. The write is asynchronous.
func (c *Client) AddDocuments(ctx context.Context, index string, docs []json.RawMessage) (task.Summary, error) {
	var s task.Summary
	if err := c.post(ctx, "add_documents", indexPath(index, "documents"), docs, &s); err != nil {
		return task.Summary{}, err
	}
	return s, nil
}

func (c *Client) mutate(ctx context.Context, op, method, path string, body any) (task.Summary, error) {
	var s task.Summary
	if err := c.do(ctx, op, method, path, body, &s); err != nil {
		return task.Summary{}, err
	}
	return s, nil
}

// DeleteIndex removes an index and its documents.
func (c *Client) DeleteIndex(ctx context.Context, index string) (task.Summary, error) {
	return c.mutate(ctx, "delete_index", http.MethodDelete, indexPath(index), nil)
}
