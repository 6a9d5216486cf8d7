// Package task models asynchronous engine mutations.
package task

import (
	"time"

	"github.com/kailas-cloud/findex/internal/domain"
)

// Status is the lifecycle state of a mutation task.
type Status string

// Task statuses reported by the engine.
const (
	Enqueued   Status = "enqueued"
	Processing Status = "processing"
	Succeeded  Status = "succeeded"
	Failed     Status = "failed"
	Canceled   Status = "canceled"
)

// IsTerminal reports whether the engine will not change the status again.
func (s Status) IsTerminal() bool {
	return s == Succeeded || s == Failed || s == Canceled
}

// IsFailure reports whether a terminal status counts as a failed write.
func (s Status) IsFailure() bool {
	return s == Failed || s == Canceled
}

// Error is the failure detail of a task.
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Type    string `json:"type"`
	Link    string `json:"link,omitempty"`
}

// Task is a mutation observed on the engine. It is never modified locally.
type Task struct {
	UID        int64      `json:"uid"`
	IndexUID   string     `json:"indexUid,omitempty"`
	Status     Status     `json:"status"`
	Type       string     `json:"type"`
	EnqueuedAt time.Time  `json:"enqueuedAt"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Error      *Error     `json:"error,omitempty"`
}

// Duration returns the processing time of a finished task, 0 otherwise.
func (t *Task) Duration() time.Duration {
	if t.StartedAt == nil || t.FinishedAt == nil {
		return 0
	}
	return t.FinishedAt.Sub(*t.StartedAt)
}

// Failure describes the task as a failed write.
func (t *Task) Failure() domain.FailedTask {
	f := domain.FailedTask{UID: t.UID, Type: t.Type, Index: t.IndexUID}
	if t.Error != nil {
		f.Code = t.Error.Code
		f.Message = t.Error.Message
	} else if t.Status == Canceled {
		f.Message = "task was canceled"
	}
	return f
}

// Summary is a submitted mutation waiting to be processed.
type Summary struct {
	TaskUID    int64     `json:"taskUid"`
	IndexUID   string    `json:"indexUid,omitempty"`
	Status     Status    `json:"status"`
	Type       string    `json:"type"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// List is one page of the engine's task history, newest first.
type List struct {
	Results []Task `json:"results"`
	Total   int    `json:"total"`
	Limit   int    `json:"limit"`
	From    *int64 `json:"from"`
	Next    *int64 `json:"next"`
}

// CountByStatus tallies the tasks of the page per status.
func (l *List) CountByStatus() map[Status]int {
	out := make(map[Status]int)
	for _, t := range l.Results {
		out[t.Status]++
	}
	return out
}
