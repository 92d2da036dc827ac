// Package scheduler runs the recurring pipeline jobs. It is an owned
// component with an explicit Start/Stop lifecycle rather than a process-wide
// singleton, so the host controls shutdown and tests can drive it directly.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

type job struct {
	id   string
	name string
	run  func(context.Context)
	// next computes the following run time from the current instant.
	next func(time.Time) time.Time

	mu      sync.Mutex
	nextRun time.Time
}

type Scheduler struct {
	logger *log.Logger
	jobs   []*job

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	active bool
}

func New(logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{logger: logger}
}

// AddIntervalJob schedules run every interval, first firing one interval
// after Start.
func (s *Scheduler) AddIntervalJob(id, name string, every time.Duration, run func(context.Context)) {
	s.jobs = append(s.jobs, &job{
		id:   id,
		name: name,
		run:  run,
		next: func(now time.Time) time.Time { return now.Add(every) },
	})
}

// AddDailyJob schedules run once a day at the given hour (UTC).
func (s *Scheduler) AddDailyJob(id, name string, hour int, run func(context.Context)) {
	s.jobs = append(s.jobs, &job{
		id:   id,
		name: name,
		run:  run,
		next: func(now time.Time) time.Time { return nextDaily(hour, now) },
	})
}

// Start launches one goroutine per job. Jobs of the same kind never overlap:
// each loop runs its job to completion before sleeping until the next slot.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, j := range s.jobs {
		j := j
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.loop(ctx, j)
		}()
		s.logger.Printf("scheduled job %s (%s)", j.id, j.name)
	}
}

// Stop cancels all jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Printf("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	for {
		next := j.next(time.Now().UTC())
		j.mu.Lock()
		j.nextRun = next
		j.mu.Unlock()

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		j.run(ctx)
	}
}

type JobInfo struct {
	ID      string
	Name    string
	NextRun time.Time
}

// Jobs reports the registered jobs and their next run times.
func (s *Scheduler) Jobs() []JobInfo {
	infos := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		j.mu.Lock()
		next := j.nextRun
		j.mu.Unlock()
		infos = append(infos, JobInfo{ID: j.id, Name: j.name, NextRun: next})
	}
	return infos
}

// nextDaily returns the next occurrence of hour:00:00 UTC strictly after now.
func nextDaily(hour int, now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
