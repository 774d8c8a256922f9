package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestNewRejectsInvalidSchedule проверяет разбор расписания.
func TestNewRejectsInvalidSchedule(t *testing.T) {
	job := func(context.Context) error { return nil }
	if _, err := New("every monday", job, time.Second, nil); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

// TestRunRecordsStatus проверяет учет успешных и неудачных запусков.
func TestRunRecordsStatus(t *testing.T) {
	fail := false
	job := func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected job context to have a deadline")
		}
		if fail {
			return errors.New("sources down")
		}
		return nil
	}

	s, err := New("0 14 * * 1", job, time.Second, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	s.run()
	status := s.Status()
	if status.RunCount != 1 || status.FailCount != 0 || status.LastError != nil || status.LastRunAt == nil {
		t.Fatalf("unexpected status after success: %+v", status)
	}

	fail = true
	s.run()
	status = s.Status()
	if status.RunCount != 2 || status.FailCount != 1 || status.LastError == nil || *status.LastError != "sources down" {
		t.Fatalf("unexpected status after failure: %+v", status)
	}
}

// TestStatusNextRun проверяет, что после старта известен следующий запуск в понедельник.
func TestStatusNextRun(t *testing.T) {
	s, err := New("0 14 * * 1", func(context.Context) error { return nil }, time.Second, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	s.Start()
	defer s.Stop(context.Background())

	status := s.Status()
	if status.NextRunAt == nil {
		t.Fatal("expected next run to be scheduled")
	}
	if status.NextRunAt.Weekday() != time.Monday || status.NextRunAt.Hour() != 14 {
		t.Fatalf("expected Monday 14:00 UTC, got %s", status.NextRunAt)
	}
}
