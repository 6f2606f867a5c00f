package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/recon/internal/ingest"
)

// fakeProcessor returns canned results. When gate is non-nil every call
// blocks until the gate is closed.
type fakeProcessor struct {
	gate    chan struct{}
	started chan string

	mu    sync.Mutex
	errs  map[string]error
	panic string
}

func (p *fakeProcessor) Process(_ context.Context, up ingest.Upload) (*ingest.Result, error) {
	if p.started != nil {
		p.started <- up.FileName
	}
	if p.gate != nil {
		<-p.gate
	}

	p.mu.Lock()
	err := p.errs[up.FileName]
	doPanic := p.panic == up.FileName
	p.mu.Unlock()

	if doPanic {
		panic("boom")
	}
	if err != nil {
		return nil, err
	}
	return &ingest.Result{FileName: up.FileName, Inserted: 1, TotalRows: 1}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitAll(t *testing.T, r *Runner) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func TestRunner_Outcomes(t *testing.T) {
	proc := &fakeProcessor{
		errs: map[string]error{
			"bad.csv": fmt.Errorf("job: %w", ingest.ErrUnknownBank),
		},
		panic: "panic.csv",
	}
	r := NewRunner(proc, NewLimiter(2, time.Second), quietLogger())

	ok := r.Submit(ingest.Upload{FileName: "ok.csv", Bank: "hdfc", Type: ingest.Booking})
	bad := r.Submit(ingest.Upload{FileName: "bad.csv", Bank: "axis", Type: ingest.Booking})
	crashed := r.Submit(ingest.Upload{FileName: "panic.csv", Bank: "hdfc", Type: ingest.Refund})
	waitAll(t, r)

	tests := []struct {
		id       string
		want     Status
		wantCode string
	}{
		{id: ok, want: StatusSucceeded},
		{id: bad, want: StatusFailed, wantCode: "BNK001"},
		{id: crashed, want: StatusFailed, wantCode: "ERR000"},
	}
	for _, tt := range tests {
		job, err := r.Get(tt.id)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", tt.id, err)
		}
		if job.Status != tt.want {
			t.Errorf("%s: Status = %s, want %s", job.FileName, job.Status, tt.want)
		}
		if job.ErrorCode != tt.wantCode {
			t.Errorf("%s: ErrorCode = %q, want %q", job.FileName, job.ErrorCode, tt.wantCode)
		}
		if job.FinishedAt.IsZero() {
			t.Errorf("%s: FinishedAt not set", job.FileName)
		}
	}

	job, _ := r.Get(ok)
	if job.Result == nil || job.Result.Inserted != 1 {
		t.Errorf("Result = %+v", job.Result)
	}
	if got := r.Limiter().ActiveCount(); got != 0 {
		t.Errorf("limiter still holds %d slots", got)
	}
}

func TestRunner_SubmitDoesNotBlock(t *testing.T) {
	proc := &fakeProcessor{gate: make(chan struct{}), started: make(chan string, 2)}
	r := NewRunner(proc, NewLimiter(1, 5*time.Second), quietLogger())

	first := r.Submit(ingest.Upload{FileName: "a.csv"})
	<-proc.started

	second := r.Submit(ingest.Upload{FileName: "b.csv"})

	if job, _ := r.Get(first); job.Status != StatusRunning {
		t.Errorf("first job Status = %s, want running", job.Status)
	}
	if job, _ := r.Get(second); job.Status != StatusPending {
		t.Errorf("second job Status = %s, want pending", job.Status)
	}

	close(proc.gate)
	<-proc.started
	waitAll(t, r)

	for _, id := range []string{first, second} {
		if job, _ := r.Get(id); job.Status != StatusSucceeded {
			t.Errorf("job %s Status = %s, want succeeded", id, job.Status)
		}
	}
}

func TestRunner_FailsWhenNoSlot(t *testing.T) {
	proc := &fakeProcessor{gate: make(chan struct{}), started: make(chan string, 2)}
	r := NewRunner(proc, NewLimiter(1, 50*time.Millisecond), quietLogger())

	r.Submit(ingest.Upload{FileName: "slow.csv"})
	<-proc.started

	starved := r.Submit(ingest.Upload{FileName: "starved.csv"})

	deadline := time.Now().Add(2 * time.Second)
	for {
		job, _ := r.Get(starved)
		if job.Status == StatusFailed {
			if job.ErrorCode != "UPL002" {
				t.Errorf("ErrorCode = %q, want UPL002", job.ErrorCode)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("starved job Status = %s, want failed", job.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	close(proc.gate)
	waitAll(t, r)
}

func TestRunner_GetUnknown(t *testing.T) {
	r := NewRunner(&fakeProcessor{}, NewLimiter(1, time.Second), quietLogger())
	if _, err := r.Get("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Get() error = %v, want ErrJobNotFound", err)
	}
}

func TestRunner_ListAndPrune(t *testing.T) {
	var (
		mu  sync.Mutex
		now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	)
	r := NewRunner(&fakeProcessor{}, NewLimiter(1, time.Second), quietLogger())
	r.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	old := r.Submit(ingest.Upload{FileName: "old.csv"})
	waitAll(t, r)
	advance(time.Hour)
	recent := r.Submit(ingest.Upload{FileName: "recent.csv"})
	waitAll(t, r)

	list := r.List([]string{old, "unknown", recent})
	if len(list) != 2 || list[0].ID != recent || list[1].ID != old {
		t.Fatalf("List() = %+v, want recent then old", list)
	}

	if n := r.Prune(30 * time.Minute); n != 1 {
		t.Errorf("Prune() removed %d, want 1", n)
	}
	if _, err := r.Get(old); !errors.Is(err, ErrJobNotFound) {
		t.Error("old job should be pruned")
	}
	if _, err := r.Get(recent); err != nil {
		t.Errorf("recent job should remain: %v", err)
	}
}

func TestRunner_PruneKeepsUnfinished(t *testing.T) {
	proc := &fakeProcessor{gate: make(chan struct{}), started: make(chan string, 1)}
	r := NewRunner(proc, NewLimiter(1, time.Second), quietLogger())

	id := r.Submit(ingest.Upload{FileName: "running.csv"})
	<-proc.started

	if n := r.Prune(0); n != 0 {
		t.Errorf("Prune() removed %d running jobs", n)
	}
	close(proc.gate)
	waitAll(t, r)

	if _, err := r.Get(id); err != nil {
		t.Errorf("Get() error = %v", err)
	}
}

func TestRunner_FailureMessagesAndLogLevels(t *testing.T) {
	var logs syncBuffer
	proc := &fakeProcessor{
		errs: map[string]error{
			"missing.csv": &ingest.MissingColumnsError{Missing: []string{"CREDITEDON"}},
			"broken.csv":  errors.New("disk on fire"),
		},
	}
	r := NewRunner(proc, NewLimiter(1, time.Second), slog.New(slog.NewTextHandler(&logs, nil)))

	rejected := r.Submit(ingest.Upload{FileName: "missing.csv"})
	waitAll(t, r)
	failed := r.Submit(ingest.Upload{FileName: "broken.csv"})
	waitAll(t, r)

	job, _ := r.Get(rejected)
	want := "Required columns are missing from the file (Code: VAL004). Check that all required columns are present in your file"
	if job.Message != want {
		t.Errorf("Message = %q, want %q", job.Message, want)
	}
	if job, _ := r.Get(failed); job.ErrorCode != "ERR000" || !strings.Contains(job.Message, "(Code: ERR000)") {
		t.Errorf("failed job = %q / %q", job.ErrorCode, job.Message)
	}

	out := logs.String()
	for _, want := range []string{
		`level=INFO msg="job started"`,
		"active=1",
		`level=WARN msg="job rejected"`,
		`level=ERROR msg="job failed"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("logs missing %q:\n%s", want, out)
		}
	}
}

// syncBuffer is a bytes.Buffer safe for the runner's goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
