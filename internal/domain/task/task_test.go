package task

import (
	"testing"
	"time"
)

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		s        Status
		terminal bool
		failure  bool
	}{
		{Enqueued, false, false},
		{Processing, false, false},
		{Succeeded, true, false},
		{Failed, true, true},
		{Canceled, true, true},
	}
	for _, tt := range tests {
		if tt.s.IsTerminal() != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v", tt.s, tt.s.IsTerminal())
		}
		if tt.s.IsFailure() != tt.failure {
			t.Errorf("%s.IsFailure() = %v", tt.s, tt.s.IsFailure())
		}
	}
}

func TestTask_Duration(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	tk := Task{StartedAt: &start, FinishedAt: &end}
	if tk.Duration() != 1500*time.Millisecond {
		t.Errorf("Duration() = %v", tk.Duration())
	}
	if (&Task{StartedAt: &start}).Duration() != 0 {
		t.Error("unfinished task should have zero duration")
	}
}

func TestTask_Failure(t *testing.T) {
	tk := Task{
		UID: 7, IndexUID: "products", Type: "documentAdditionOrUpdate", Status: Failed,
		Error: &Error{Code: "invalid_document_id", Message: "bad id"},
	}
	f := tk.Failure()
	if f.UID != 7 || f.Index != "products" || f.Code != "invalid_document_id" || f.Message != "bad id" {
		t.Errorf("Failure() = %+v", f)
	}

	canceled := Task{UID: 8, Status: Canceled}
	if canceled.Failure().Message == "" {
		t.Error("canceled task should carry a message")
	}
}

func TestList_CountByStatus(t *testing.T) {
	l := List{Results: []Task{{Status: Succeeded}, {Status: Succeeded}, {Status: Failed}}}
	c := l.CountByStatus()
	if c[Succeeded] != 2 || c[Failed] != 1 || c[Processing] != 0 {
		t.Errorf("CountByStatus() = %v", c)
	}
}
