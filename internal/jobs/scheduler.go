package jobs

// scheduler.go runs periodic maintenance on the job table.
//
// Pruning keeps the in-memory job table from growing without bound. It only
// removes finished jobs, so a pending or running job is never lost.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultPruneSchedule runs pruning every ten minutes.
const DefaultPruneSchedule = "@every 10m"

// Scheduler wraps a cron instance whose jobs log through slog.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler returns a stopped scheduler evaluating specs in loc. A nil
// loc uses UTC.
func NewScheduler(loc *time.Location, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}
}

// SchedulePrune registers a job that prunes r's finished jobs older than
// retention. spec uses standard five-field cron syntax or descriptors such
// as "@every 10m".
func (s *Scheduler) SchedulePrune(spec string, r *Runner, retention time.Duration) error {
	if spec == "" {
		spec = DefaultPruneSchedule
	}
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		n := r.Prune(retention)
		s.logger.Info("pruned finished jobs",
			"removed", n,
			"retention", retention,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
	if err != nil {
		return fmt.Errorf("schedule job pruning %q: %w", spec, err)
	}
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "entries", len(s.cron.Entries()))
}

// Stop stops scheduling and waits for running entries until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
