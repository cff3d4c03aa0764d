package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ScheduleTime is a time of day at which the scheduler runs its jobs.
type ScheduleTime struct {
	Hour   int
	Minute int
}

func (st ScheduleTime) String() string {
	return fmt.Sprintf("%02d:%02d", st.Hour, st.Minute)
}

// ParseScheduleTime parses "HH:MM".
func ParseScheduleTime(s string) (ScheduleTime, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return ScheduleTime{}, fmt.Errorf("invalid time format (expected HH:MM): %w", err)
	}

	if hour < 0 || hour > 23 {
		return ScheduleTime{}, fmt.Errorf("invalid hour: %d (must be 0-23)", hour)
	}
	if minute < 0 || minute > 59 {
		return ScheduleTime{}, fmt.Errorf("invalid minute: %d (must be 0-59)", minute)
	}

	return ScheduleTime{Hour: hour, Minute: minute}, nil
}

// JobProvider returns the jobs for one scheduled run.
type JobProvider func(ctx context.Context) ([]Job, error)

// Scheduler submits the provider's jobs to a worker pool at fixed times of day.
type Scheduler struct {
	pool          *WorkerPool
	scheduleTimes []ScheduleTime
	jobProvider   JobProvider
	now           func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun string
}

func NewScheduler(pool *WorkerPool, times []string, provider JobProvider) (*Scheduler, error) {
	scheduleTimes := make([]ScheduleTime, 0, len(times))
	for _, t := range times {
		st, err := ParseScheduleTime(t)
		if err != nil {
			return nil, fmt.Errorf("failed to parse schedule time %q: %w", t, err)
		}
		scheduleTimes = append(scheduleTimes, st)
	}

	if len(scheduleTimes) == 0 {
		return nil, fmt.Errorf("at least one schedule time is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		pool:          pool,
		scheduleTimes: scheduleTimes,
		jobProvider:   provider,
		now:           time.Now,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// Start runs the schedule loop. The worker pool is started by its owner.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.scheduleLoop()
	log.Info().Interface("times", s.scheduleTimes).Msg("scheduler started")
}

func (s *Scheduler) scheduleLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if s.shouldRun(s.now()) {
				s.runJobs()
			}
		}
	}
}

// shouldRun reports whether now matches a schedule time that has not run
// yet today.
func (s *Scheduler) shouldRun(now time.Time) bool {
	key := now.Format("2006-01-02T15:04")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastRun == key {
		return false
	}

	for _, st := range s.scheduleTimes {
		if now.Hour() == st.Hour && now.Minute() == st.Minute {
			s.lastRun = key
			return true
		}
	}
	return false
}

func (s *Scheduler) runJobs() {
	ctx, cancel := context.WithTimeout(s.ctx, time.Minute)
	defer cancel()

	jobs, err := s.jobProvider(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduler failed to fetch jobs")
		return
	}
	if len(jobs) == 0 {
		return
	}

	s.pool.SubmitBatch(jobs)
}

// Shutdown stops the schedule loop. It does not stop the worker pool.
func (s *Scheduler) Shutdown(timeout time.Duration) {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("scheduler stopped")
	case <-time.After(timeout):
		log.Warn().Msg("timeout waiting for scheduler loop to stop")
	}
}

// NextRun returns the next time the scheduler will fire after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	var next time.Time
	for _, st := range s.scheduleTimes {
		t := time.Date(now.Year(), now.Month(), now.Day(), st.Hour, st.Minute, 0, 0, now.Location())
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		if next.IsZero() || t.Before(next) {
			next = t
		}
	}
	return next
}
