// Package scheduler runs named recurring jobs on robfig/cron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ninjahub/ninjahub-core/internal/metrics"
)

// Named intervals accepted in place of a cron expression.
var Intervals = map[string]time.Duration{
	"hourly":     time.Hour,
	"twicedaily": 12 * time.Hour,
	"daily":      24 * time.Hour,
	"weekly":     7 * 24 * time.Hour,
}

// Spec turns a named interval into "@every <d>". Anything else is returned
// unchanged and parsed as a cron expression or descriptor.
func Spec(schedule string) string {
	if d, ok := Intervals[strings.ToLower(schedule)]; ok {
		return "@every " + d.String()
	}
	return schedule
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Job is one unit of recurring work. A non-nil error is logged and the job
// waits for its next activation.
type Job func(ctx context.Context) error

// Scheduler owns a cron instance. Overlapping activations of one job are
// skipped and panics are recovered.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	mu    sync.Mutex
	ctx   context.Context
	names map[string]cron.EntryID
	jobs  map[string]Job
}

// New returns a scheduler whose jobs run with at most timeout each. Zero
// means no limit beyond the Start context.
func New(logger *slog.Logger, timeout time.Duration) *Scheduler {
	logger = logger.With("component", "scheduler")
	cl := cronLogger{logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		timeout: timeout,
		ctx:     context.Background(),
		names:   make(map[string]cron.EntryID),
		jobs:    make(map[string]Job),
	}
}

// Add registers job under name. Registering a name twice is an error.
func (s *Scheduler) Add(name, schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.names[name]; dup {
		return fmt.Errorf("job %q already scheduled", name)
	}
	spec := Spec(schedule)
	id, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("schedule %q (%s): %w", name, spec, err)
	}
	s.names[name] = id
	s.jobs[name] = job
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// Next returns the next activation of name.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.names[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// RunNow runs name once on the calling goroutine, outside the cron chain.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %q not scheduled", name)
	}
	return job(ctx)
}

// Start runs the scheduler until ctx is cancelled, then waits for running
// jobs to return.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	metrics.SchedulerStartTime.SetToCurrentTime()
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler shut down")
}

func (s *Scheduler) run(name string, job Job) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.ErrorContext(ctx, "job failed", "job", name, "duration", time.Since(start), "error", err)
		return
	}
	s.logger.InfoContext(ctx, "job finished", "job", name, "duration", time.Since(start))
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, kv ...any) {
	c.l.Debug(msg, kv...)
}

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error(msg, append(kv, "error", err)...)
}
