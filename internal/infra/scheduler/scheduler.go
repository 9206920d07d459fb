// Package scheduler runs the daily quest rollover on a cron schedule.
//
// Quests are generated lazily on first read anyway; the rollover only makes
// sure every user finds their quests waiting when the day starts.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"
)

// QuestGenerator issues today's quests to every user who does not have them.
// Implemented by engagement.Service.
type QuestGenerator interface {
	GenerateDailyQuestsForAll(ctx context.Context) (int, error)
}

// Config configures the rollover job.
type Config struct {
	// Schedule is a six-field cron expression (seconds first).
	Schedule string
	// Timeout bounds a single run.
	Timeout time.Duration
}

// DefaultConfig runs the rollover at 00:05:00 server time.
func DefaultConfig() Config {
	return Config{
		Schedule: "0 5 0 * * *",
		Timeout:  time.Minute,
	}
}

var parser = rcron.NewParser(
	rcron.Second | rcron.Minute | rcron.Hour | rcron.Dom | rcron.Month | rcron.Dow | rcron.Descriptor,
)

// ValidateSchedule reports whether expr is a valid six-field cron expression.
func ValidateSchedule(expr string) error {
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return nil
}

// Status is a snapshot of the rollover job.
type Status struct {
	Schedule  string    `json:"schedule"`
	Running   bool      `json:"running"`
	Runs      int       `json:"runs"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastCount int       `json:"last_count"`
	LastError string    `json:"last_error,omitempty"`
	NextRun   time.Time `json:"next_run,omitempty"`
}

// Scheduler owns the cron runner for the rollover job.
type Scheduler struct {
	cfg    Config
	gen    QuestGenerator
	logger *slog.Logger

	mu      sync.Mutex
	cron    *rcron.Cron
	entry   rcron.EntryID
	stopCh  chan struct{}
	runs    int
	lastRun time.Time
	lastN   int
	lastErr error
}

// New creates a stopped scheduler.
func New(cfg Config, gen QuestGenerator, logger *slog.Logger) (*Scheduler, error) {
	if gen == nil {
		return nil, errors.New("scheduler: nil quest generator")
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultConfig().Schedule
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if err := ValidateSchedule(cfg.Schedule); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:    cfg,
		gen:    gen,
		logger: logger.With("component", "scheduler"),
	}, nil
}

// Start registers the rollover job and starts the cron runner. The runner
// stops when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.New("scheduler: already started")
	}

	c := rcron.New(rcron.WithSeconds())
	id, err := c.AddFunc(s.cfg.Schedule, func() {
		s.RunNow(ctx)
	})
	if err != nil {
		return fmt.Errorf("register rollover: %w", err)
	}
	s.cron = c
	s.entry = id
	s.stopCh = make(chan struct{})
	c.Start()
	s.logger.Info("scheduler started", "schedule", s.cfg.Schedule, "next", c.Entry(id).Next)

	stopCh := s.stopCh
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stopCh:
		}
	}()
	return nil
}

// Stop halts the runner and waits for a running job to finish.
// Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	if c == nil {
		s.mu.Unlock()
		return
	}
	s.cron = nil
	close(s.stopCh)
	s.mu.Unlock()

	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunNow runs the rollover immediately and returns how many quests were issued.
func (s *Scheduler) RunNow(ctx context.Context) (int, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	n, err := s.gen.GenerateDailyQuestsForAll(runCtx)

	s.mu.Lock()
	s.runs++
	s.lastRun = start
	s.lastN = n
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("quest rollover failed", "error", err, "issued", n)
		return n, err
	}
	s.logger.Info("quest rollover done", "issued", n, "took", time.Since(start))
	return n, nil
}

// Status returns the job's latest run and next scheduled time.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Schedule:  s.cfg.Schedule,
		Running:   s.cron != nil,
		Runs:      s.runs,
		LastRun:   s.lastRun,
		LastCount: s.lastN,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	if s.cron != nil {
		st.NextRun = s.cron.Entry(s.entry).Next
	}
	return st
}
