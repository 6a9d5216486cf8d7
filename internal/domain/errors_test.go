package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestValidationf(t *testing.T) {
	err := Validationf("page must be >= 1, got %d", 0)
	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected ErrValidation")
	}
	if !strings.Contains(err.Error(), "got 0") {
		t.Errorf("Error() = %q", err)
	}
}

func TestRemoteError_Is(t *testing.T) {
	tests := []struct {
		code          string
		notFound      bool
		alreadyExists bool
	}{
		{CodeIndexNotFound, true, false},
		{CodeDocumentNotFound, true, false},
		{CodeTaskNotFound, true, false},
		{CodeIndexAlreadyExists, false, true},
		{"invalid_search_filter", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("wrap: %w", &RemoteError{Op: "search", Status: 400, Code: tt.code, Message: "boom"})
			if !errors.Is(err, ErrRemoteAPI) {
				t.Error("every RemoteError matches ErrRemoteAPI")
			}
			if errors.Is(err, ErrNotFound) != tt.notFound {
				t.Errorf("Is(ErrNotFound) = %v, want %v", !tt.notFound, tt.notFound)
			}
			if errors.Is(err, ErrAlreadyExists) != tt.alreadyExists {
				t.Errorf("Is(ErrAlreadyExists) = %v, want %v", !tt.alreadyExists, tt.alreadyExists)
			}
			if errors.Is(err, ErrRemoteUnavailable) {
				t.Error("RemoteError must not match ErrRemoteUnavailable")
			}
		})
	}
}

func TestRemoteError_Message(t *testing.T) {
	withCode := &RemoteError{Op: "search", Status: 400, Code: "invalid_search_filter", Message: "bad filter"}
	if got := withCode.Error(); got != "search: engine returned 400 (invalid_search_filter): bad filter" {
		t.Errorf("Error() = %q", got)
	}
	bare := &RemoteError{Op: "health", Status: 500, Message: "oops"}
	if got := bare.Error(); got != "health: engine returned 500: oops" {
		t.Errorf("Error() = %q", got)
	}
}

func TestTaskFailureError(t *testing.T) {
	err := error(&TaskFailureError{Failed: []FailedTask{
		{UID: 3, Type: "documentAdditionOrUpdate", Index: "products", Message: "invalid document"},
		{UID: 7, Message: "disk full"},
	}})
	if !errors.Is(err, ErrTaskFailed) {
		t.Fatal("expected ErrTaskFailed")
	}
	msg := err.Error()
	for _, want := range []string{"2 task(s) failed", "task 3 (documentAdditionOrUpdate on products): invalid document", "task 7: disk full"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}

	var tf *TaskFailureError
	if !errors.As(fmt.Errorf("ingest: %w", err), &tf) || len(tf.Failed) != 2 {
		t.Error("errors.As should expose every failed task")
	}
}

func TestTaskTimeoutError(t *testing.T) {
	err := error(&TaskTimeoutError{Pending: []int64{4, 9}, Timeout: 2 * time.Second})
	if !errors.Is(err, ErrTaskTimeout) {
		t.Fatal("expected ErrTaskTimeout")
	}
	if errors.Is(err, ErrTaskFailed) {
		t.Error("timeout must stay distinct from failure")
	}
	if got := err.Error(); got != "timeout after 2s waiting for tasks: 4, 9" {
		t.Errorf("Error() = %q", got)
	}
}
