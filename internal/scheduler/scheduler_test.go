package scheduler

import (
	"context"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_IntervalJobRunsAndStops(t *testing.T) {
	t.Parallel()

	s := New(log.New(io.Discard, "", 0))
	var runs atomic.Int64
	s.AddIntervalJob("tick", "Tick", 10*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})

	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	got := runs.Load()
	if got == 0 {
		t.Fatal("expected interval job to run at least once")
	}

	time.Sleep(50 * time.Millisecond)
	if runs.Load() != got {
		t.Fatal("expected no runs after Stop")
	}
}

func TestScheduler_JobsReportsNextRun(t *testing.T) {
	t.Parallel()

	s := New(log.New(io.Discard, "", 0))
	s.AddIntervalJob("publish", "Auto Publish", time.Hour, func(context.Context) {})
	s.AddDailyJob("scrape", "Daily Scrape", 6, func(context.Context) {})

	s.Start()
	defer s.Stop()

	// Give the loops a moment to record their first slots.
	time.Sleep(20 * time.Millisecond)

	jobs := s.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	for _, j := range jobs {
		if j.NextRun.IsZero() {
			t.Fatalf("job %s has no next run recorded", j.ID)
		}
		if !j.NextRun.After(time.Now().Add(-time.Second)) {
			t.Fatalf("job %s next run in the past: %v", j.ID, j.NextRun)
		}
	}
}

func TestScheduler_StartTwiceIsSafe(t *testing.T) {
	t.Parallel()

	s := New(log.New(io.Discard, "", 0))
	s.AddIntervalJob("tick", "Tick", time.Hour, func(context.Context) {})
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestNextDaily(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 10, 5, 30, 0, 0, time.UTC)

	next := nextDaily(6, now)
	want := time.Date(2026, 2, 10, 6, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}

	next = nextDaily(5, now)
	want = time.Date(2026, 2, 11, 5, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("expected next day, got %v", next)
	}

	// Exactly on the slot rolls to the next day.
	onSlot := time.Date(2026, 2, 10, 6, 0, 0, 0, time.UTC)
	next = nextDaily(6, onSlot)
	want = time.Date(2026, 2, 11, 6, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("expected next day for on-slot time, got %v", next)
	}
}
