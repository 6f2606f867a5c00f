// Package jobs runs uploaded files through the ingest pipeline off the
// request path and keeps their status for polling.
//
// Submit returns a job ID immediately. The job stays pending until a
// processing slot is free, runs the pipeline once, and ends succeeded (with
// an ingest.Result) or failed (with the error and its support code). There
// is no retry and no cancellation of a running job.
//
// Job records live in memory. A Scheduler prunes finished jobs once they are
// older than the configured retention.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/recon/internal/ingest"
)

// ErrJobNotFound is returned for unknown or pruned job IDs.
var ErrJobNotFound = errors.New("job not found")

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Done reports whether the job has finished.
func (s Status) Done() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Job is a snapshot of one submitted file.
type Job struct {
	ID          string                 `json:"job_id"`
	FileName    string                 `json:"file_name"`
	Bank        string                 `json:"bank"`
	Type        ingest.TransactionType `json:"transaction_type"`
	Status      Status                 `json:"status"`
	Result      *ingest.Result         `json:"result,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Message     string                 `json:"message,omitempty"`
	ErrorCode   string                 `json:"error_code,omitempty"`
	SubmittedAt time.Time              `json:"submitted_at"`
	StartedAt   time.Time              `json:"started_at,omitzero"`
	FinishedAt  time.Time              `json:"finished_at,omitzero"`
}

// Processor handles one file. *ingest.Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, up ingest.Upload) (*ingest.Result, error)
}

// Runner executes submitted uploads concurrently, bounded by a Limiter.
type Runner struct {
	processor Processor
	limiter   *Limiter
	logger    *slog.Logger

	mu   sync.RWMutex
	jobs map[string]*Job
	wg   sync.WaitGroup

	now func() time.Time
}

// NewRunner returns a runner. A nil logger uses slog.Default().
func NewRunner(p Processor, limiter *Limiter, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		processor: p,
		limiter:   limiter,
		logger:    logger,
		jobs:      make(map[string]*Job),
		now:       time.Now,
	}
}

// Submit queues up for processing and returns its job ID without waiting.
func (r *Runner) Submit(up ingest.Upload) string {
	id := uuid.New().String()
	job := &Job{
		ID:          id,
		FileName:    up.FileName,
		Bank:        up.Bank,
		Type:        up.Type,
		Status:      StatusPending,
		SubmittedAt: r.now(),
	}

	r.mu.Lock()
	r.jobs[id] = job
	r.mu.Unlock()

	log := r.logger.With("job_id", id, "file", up.FileName, "bank", up.Bank, "type", up.Type)
	log.Info("job submitted")

	r.wg.Add(1)
	go r.run(id, up, log)

	return id
}

func (r *Runner) run(id string, up ingest.Upload, log *slog.Logger) {
	defer r.wg.Done()

	// The job outlives the request that submitted it.
	ctx := context.Background()

	if err := r.limiter.Acquire(ctx); err != nil {
		log.Warn("job not started", "error", err)
		r.finish(id, nil, err)
		return
	}
	defer r.limiter.Release()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic in job", "panic", rec)
			r.finish(id, nil, fmt.Errorf("internal error: %v", rec))
		}
	}()

	r.update(id, func(j *Job) {
		j.Status = StatusRunning
		j.StartedAt = r.now()
	})
	log.Info("job started", "active", r.limiter.ActiveCount())

	res, err := r.processor.Process(ctx, up)
	r.finish(id, res, err)

	switch {
	case err != nil && ingest.IsUserFacing(err):
		log.Warn("job rejected", "error", err)
		return
	case err != nil:
		log.Error("job failed", "error", err)
		return
	}
	log.Info("job succeeded", "inserted", res.Inserted, "duplicates", res.Duplicates)
}

func (r *Runner) finish(id string, res *ingest.Result, err error) {
	r.update(id, func(j *Job) {
		j.FinishedAt = r.now()
		if err != nil {
			j.Status = StatusFailed
			j.Error = err.Error()
			j.ErrorCode = ingest.MapError(err).Code
			j.Message = ingest.FormatUserError(err)
			return
		}
		j.Status = StatusSucceeded
		j.Result = res
	})
}

func (r *Runner) update(id string, fn func(*Job)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		fn(j)
	}
}

// Get returns a snapshot of job id.
func (r *Runner) Get(id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return *j, nil
}

// List returns snapshots of the given jobs, newest first. Unknown IDs are
// skipped.
func (r *Runner) List(ids []string) []Job {
	r.mu.RLock()
	out := make([]Job, 0, len(ids))
	for _, id := range ids {
		if j, ok := r.jobs[id]; ok {
			out = append(out, *j)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		return out[a].SubmittedAt.After(out[b].SubmittedAt)
	})
	return out
}

// Prune removes finished jobs that finished more than retention ago and
// returns how many were removed.
func (r *Runner) Prune(retention time.Duration) int {
	cutoff := r.now().Add(-retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, j := range r.jobs {
		if j.Status.Done() && j.FinishedAt.Before(cutoff) {
			delete(r.jobs, id)
			n++
		}
	}
	return n
}

// Wait blocks until every submitted job has finished or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Limiter exposes the runner's concurrency limiter for status reporting.
func (r *Runner) Limiter() *Limiter {
	return r.limiter
}
