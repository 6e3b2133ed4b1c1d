package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmcruz/news-digest/app/cfg"
	"github.com/dmcruz/news-digest/app/digest"
)

// ErrInvalidTime rejects malformed daily-time input before any state
// transition happens.
var ErrInvalidTime = errors.New("invalid time format, use HH:MM")

// Clock abstracts wall-clock time so due-trigger logic is testable
// without real waits.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns the real wall clock.
func SystemClock() Clock {
	return systemClock{}
}

// Status is a side-effect-free snapshot of the scheduler state.
type Status struct {
	IsRunning bool       `json:"is_running"`
	NextRun   *time.Time `json:"next_run"`
	JobsCount int        `json:"jobs_count"`
}

// Scheduler owns the single daily digest trigger. It is a two-state
// machine (stopped/running) driven externally by Start/Stop/RunNow and
// internally by a polling loop that checks for a due trigger.
type Scheduler struct {
	runner       digest.BatchRunner
	clock        Clock
	pollInterval time.Duration

	mu          sync.Mutex
	running     bool
	dailyHour   int
	dailyMinute int
	nextRun     time.Time
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewScheduler(runner digest.BatchRunner, clock Clock) *Scheduler {
	cfg := cfg.Get()

	return &Scheduler{
		runner:       runner,
		clock:        clock,
		pollInterval: time.Duration(cfg.PollInterval) * time.Second,
	}
}

// Start validates the daily time, registers the single trigger and
// launches the polling loop. Starting while already running is a no-op;
// reconfiguring requires an explicit Stop first.
func (s *Scheduler) Start(dailyTime string) error {
	hour, minute, err := parseDailyTime(dailyTime)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		slog.Debug("Scheduler already running, ignoring start", "daily_time", dailyTime)
		return nil
	}

	s.dailyHour = hour
	s.dailyMinute = minute
	s.nextRun = nextFireAfter(s.clock.Now(), hour, minute)
	s.running = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	slog.Info("Scheduler started", "daily_time", dailyTime, "next_run", s.nextRun.Format(time.RFC3339))
	return nil
}

// Stop clears the schedule and transitions to stopped, regardless of
// current state. A digest run already in progress completes; stopping
// only prevents the next fire.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	wasRunning := s.running
	s.running = false
	s.nextRun = time.Time{}
	s.mu.Unlock()

	s.wg.Wait()

	if wasRunning {
		slog.Info("Scheduler stopped")
	}
}

// Status reports the current state without side effects.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{IsRunning: s.running}
	if s.running {
		next := s.nextRun
		status.NextRun = &next
		status.JobsCount = 1
	}
	return status
}

// RunNow triggers a full batch run on its own goroutine so the caller
// is never blocked for the duration of the batch. The daily schedule is
// unaffected.
func (s *Scheduler) RunNow() {
	slog.Info("Immediate digest run requested")
	go s.runner.RunForAllUsers(context.Background())
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.consumeDueTrigger() {
				// The run deliberately ignores the loop context: a
				// fire already consumed must complete even if Stop
				// races with it.
				s.runner.RunForAllUsers(context.Background())
			}
		}
	}
}

// consumeDueTrigger reports whether the daily trigger is due and, if
// so, advances it to the next day.
func (s *Scheduler) consumeDueTrigger() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false
	}

	now := s.clock.Now()
	if now.Before(s.nextRun) {
		return false
	}

	s.nextRun = nextFireAfter(now, s.dailyHour, s.dailyMinute)
	return true
}

func parseDailyTime(dailyTime string) (int, int, error) {
	parts := strings.Split(dailyTime, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: '%s'", ErrInvalidTime, dailyTime)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: '%s'", ErrInvalidTime, dailyTime)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: '%s'", ErrInvalidTime, dailyTime)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: '%s'", ErrInvalidTime, dailyTime)
	}

	return hour, minute, nil
}

// nextFireAfter returns the first occurrence of hour:minute strictly
// after now.
func nextFireAfter(now time.Time, hour, minute int) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}
