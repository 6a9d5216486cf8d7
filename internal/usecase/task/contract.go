package task

import (
	"context"

	domtask "github.com/kailas-cloud/findex/internal/domain/task"
)

// StatusReader reads the current state of a mutation task.
type StatusReader interface {
	GetTask(ctx context.Context, uid int64) (domtask.Task, error)
}
