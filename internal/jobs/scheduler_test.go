package jobs

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestScheduler_SchedulePrune(t *testing.T) {
	r := NewRunner(&fakeProcessor{}, NewLimiter(1, time.Second), quietLogger())

	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "descriptor", spec: "@every 10m"},
		{name: "five field", spec: "*/5 * * * *"},
		{name: "empty uses default", spec: ""},
		{name: "invalid", spec: "every ten minutes", wantErr: true},
		{name: "seconds field not accepted", spec: "0 */5 * * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(nil, quietLogger())
			err := s.SchedulePrune(tt.spec, r, time.Hour)
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "schedule job pruning") {
					t.Errorf("SchedulePrune(%q) error = %v, want schedule error", tt.spec, err)
				}
				return
			}
			if err != nil {
				t.Errorf("SchedulePrune(%q) error = %v", tt.spec, err)
			}
		})
	}
}

func TestScheduler_StartStop(t *testing.T) {
	r := NewRunner(&fakeProcessor{}, NewLimiter(1, time.Second), quietLogger())
	s := NewScheduler(time.UTC, quietLogger())
	if err := s.SchedulePrune("@every 1h", r, time.Hour); err != nil {
		t.Fatal(err)
	}

	s.Start()
	if got := len(s.cron.Entries()); got != 1 {
		t.Errorf("Entries = %d, want 1", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
