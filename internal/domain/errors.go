package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrValidation signals a malformed search intent or request.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound signals a missing resource (index, document, task).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrRemoteUnavailable signals that the search engine could not be reached.
	ErrRemoteUnavailable = errors.New("search engine unavailable")
	// ErrRemoteAPI signals an error response returned by the search engine.
	ErrRemoteAPI = errors.New("search engine error")
	// ErrTaskFailed signals that one or more mutation tasks failed.
	ErrTaskFailed = errors.New("task failed")
	// ErrTaskTimeout signals that a task batch did not finish in time.
	ErrTaskTimeout = errors.New("task wait timed out")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)

// Engine error codes that map onto domain sentinels.
const (
	CodeIndexNotFound      = "index_not_found"
	CodeIndexAlreadyExists = "index_already_exists"
	CodeDocumentNotFound   = "document_not_found"
	CodeTaskNotFound       = "task_not_found"
)

// Validationf builds a validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// RemoteError is an error body returned by the search engine.
type RemoteError struct {
	Op      string
	Status  int
	Code    string
	Type    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: engine returned %d (%s): %s", e.Op, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: engine returned %d: %s", e.Op, e.Status, e.Message)
}

// Is matches ErrRemoteAPI and the sentinels implied by the engine error code.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrRemoteAPI:
		return true
	case ErrNotFound:
		return e.Code == CodeIndexNotFound || e.Code == CodeDocumentNotFound || e.Code == CodeTaskNotFound
	case ErrAlreadyExists:
		return e.Code == CodeIndexAlreadyExists
	}
	return false
}

// FailedTask describes one mutation task that ended in a failed state.
type FailedTask struct {
	UID     int64
	Type    string
	Index   string
	Code    string
	Message string
}

func (f FailedTask) String() string {
	s := fmt.Sprintf("task %d", f.UID)
	if f.Type != "" {
		s += " (" + f.Type
		if f.Index != "" {
			s += " on " + f.Index
		}
		s += ")"
	}
	if f.Message != "" {
		s += ": " + f.Message
	}
	return s
}

// TaskFailureError carries every failed task of a batch.
type TaskFailureError struct {
	Failed []FailedTask
}

func (e *TaskFailureError) Error() string {
	parts := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%d task(s) failed: %s", len(e.Failed), strings.Join(parts, "; "))
}

func (e *TaskFailureError) Unwrap() error { return ErrTaskFailed }

// TaskTimeoutError reports tasks still unfinished when the wait deadline passed.
// Their outcome is unknown.
type TaskTimeoutError struct {
	Pending []int64
	Timeout time.Duration
}

func (e *TaskTimeoutError) Error() string {
	ids := make([]string, len(e.Pending))
	for i, id := range e.Pending {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("timeout after %s waiting for tasks: %s", e.Timeout, strings.Join(ids, ", "))
}

func (e *TaskTimeoutError) Unwrap() error { return ErrTaskTimeout }
