package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/callcenter-backend/pkg/logger"
	"go.uber.org/multierr"
)

type fakeLock struct {
	acquired bool
	err      error
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.acquired = false
	f.releases++
	return nil
}

type testJob struct {
	name  string
	err   error
	runs  int
	onRun func()
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	if t.onRun != nil {
		t.onRun()
	}
	return t.err
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	service, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Registry: registry,
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return service
}

func TestServiceRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	success := &testJob{name: "success"}
	failure := &testJob{name: "fail", err: errors.New("boom")}
	lock := &fakeLock{}
	service := newTestService(t, lock, success, failure)

	err := service.runCycle(context.Background())
	if err == nil {
		t.Fatal("expected combined error")
	}
	if got := len(multierr.Errors(err)); got != 1 {
		t.Fatalf("expected 1 combined error, got %d", got)
	}
	if success.runs != 1 || failure.runs != 1 {
		t.Fatalf("expected each job to run once, got %d and %d", success.runs, failure.runs)
	}
	if lock.releases != 1 {
		t.Fatalf("expected lock released once, got %d", lock.releases)
	}
}

func TestServiceRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "job"}
	service := newTestService(t, &fakeLock{acquired: true}, job)

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected job skipped, ran %d", job.runs)
	}
}

func TestServiceRunCycleLockError(t *testing.T) {
	job := &testJob{name: "job"}
	service := newTestService(t, &fakeLock{err: errors.New("redis down")}, job)

	if err := service.runCycle(context.Background()); err == nil {
		t.Fatal("expected lock error")
	}
	if job.runs != 0 {
		t.Fatalf("expected job skipped, ran %d", job.runs)
	}
}

func TestServiceRunOnStartThenWaitsForMidnight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := &testJob{name: "job"}
	service := newTestService(t, &fakeLock{}, job)
	service.runOnStart = true
	service.now = func() time.Time { return time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC) }

	var waited time.Duration
	tick := make(chan time.Time, 1)
	service.after = func(d time.Duration) <-chan time.Time {
		waited = d
		if job.runs == 1 {
			tick <- time.Time{}
		} else {
			cancel()
		}
		return tick
	}

	err := service.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if job.runs != 2 {
		t.Fatalf("expected start-up run plus one tick, got %d", job.runs)
	}
	if waited != 90*time.Minute {
		t.Fatalf("expected wait of 90m, got %s", waited)
	}
}

func TestServiceSkipsStartupRunWhenDisabled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	job := &testJob{name: "job"}
	service := newTestService(t, &fakeLock{}, job)
	service.after = func(time.Duration) <-chan time.Time {
		cancel()
		return make(chan time.Time)
	}

	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected no runs, got %d", job.runs)
	}
}

func TestNextRunUsesLocalMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	now := time.Date(2026, 3, 8, 3, 0, 0, 0, time.UTC) // 22:00 on Mar 7 in New York
	next := NextRun(now, loc)
	want := time.Date(2026, 3, 8, 0, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("expected %s, got %s", want, next)
	}

	// DST starts on Mar 8; the following midnight is 23 hours later.
	after := NextRun(want, loc)
	if got := after.Sub(want); got != 23*time.Hour {
		t.Fatalf("expected 23h day across DST, got %s", got)
	}
}
