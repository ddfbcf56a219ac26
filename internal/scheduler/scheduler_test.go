package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ninjahub/ninjahub-core/internal/scheduler"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestSpec(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"daily", "@every 24h0m0s"},
		{"Hourly", "@every 1h0m0s"},
		{"twicedaily", "@every 12h0m0s"},
		{"*/5 * * * *", "*/5 * * * *"},
		{"@midnight", "@midnight"},
	}
	for _, tc := range tests {
		if got := scheduler.Spec(tc.in); got != tc.want {
			t.Errorf("Spec(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAdd_RejectsDuplicatesAndBadSpecs(t *testing.T) {
	s := scheduler.New(discard, 0)
	noop := func(context.Context) error { return nil }

	if err := s.Add("a", "daily", noop); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("a", "hourly", noop); err == nil {
		t.Error("duplicate name accepted")
	}
	if err := s.Add("b", "every so often", noop); err == nil {
		t.Error("unparseable schedule accepted")
	}
	if _, ok := s.Next("b"); ok {
		t.Error("rejected job has a next activation")
	}
}

func TestNext_DailyIsADayAway(t *testing.T) {
	s := scheduler.New(discard, 0)
	if err := s.Add(scheduler.CheckNotifications, "daily", func(context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { s.Start(ctx); close(done) }()

	deadline := time.Now().Add(time.Second)
	var next time.Time
	for time.Now().Before(deadline) {
		if next, _ = s.Next(scheduler.CheckNotifications); !next.IsZero() {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if d := time.Until(next); d < 23*time.Hour || d > 25*time.Hour {
		t.Errorf("next activation in %v, want about 24h", d)
	}
}

type fakePruner struct {
	calls atomic.Int32
	err   error
}

func (p *fakePruner) Prune(context.Context) ([]int64, error) {
	p.calls.Add(1)
	return []int64{3, 2, 1}, p.err
}

func TestRunNow_PruneJob(t *testing.T) {
	p := &fakePruner{}
	s := scheduler.New(discard, time.Second)
	if err := s.Add(scheduler.CheckNotifications, "daily", scheduler.PruneJob(p, discard)); err != nil {
		t.Fatal(err)
	}

	if err := s.RunNow(context.Background(), scheduler.CheckNotifications); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if p.calls.Load() != 1 {
		t.Errorf("prune calls = %d, want 1", p.calls.Load())
	}

	p.err = errors.New("db gone")
	if err := s.RunNow(context.Background(), scheduler.CheckNotifications); !errors.Is(err, p.err) {
		t.Errorf("err = %v, want %v", err, p.err)
	}
	if err := s.RunNow(context.Background(), "missing"); err == nil {
		t.Error("unknown job ran")
	}
}

func TestStart_RunsEverySecondJob(t *testing.T) {
	s := scheduler.New(discard, 0)
	var runs atomic.Int32
	if err := s.Add("tick", "@every 1s", func(context.Context) error {
		runs.Add(1)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	s.Start(ctx)

	if n := runs.Load(); n < 1 {
		t.Errorf("job ran %d times in 2.5s", n)
	}
}
