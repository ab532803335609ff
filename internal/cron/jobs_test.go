package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/callcenter-backend/internal/tasks"
	"github.com/angelmondragon/callcenter-backend/pkg/logger"
	"github.com/angelmondragon/callcenter-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeSweeper struct {
	swept  int64
	err    error
	called int
	lastAt time.Time
}

func (f *fakeSweeper) SweepExpired(_ context.Context, now time.Time) (int64, error) {
	f.called++
	f.lastAt = now
	return f.swept, f.err
}

type fakeResetter struct {
	result tasks.ResetResult
	err    error
	called int
}

func (f *fakeResetter) ResetAllForNewDay(context.Context, time.Time) (tasks.ResetResult, error) {
	f.called++
	return f.result, f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test"})
}

func TestCallRetentionJobSweepsAndRecordsRows(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	reg := prometheus.NewRegistry()
	sweeper := &fakeSweeper{swept: 7}
	jobIface, err := NewCallRetentionJob(CallRetentionJobParams{
		Logger:  testLogger(),
		Calls:   sweeper,
		Metrics: metrics.NewCronJobMetrics(reg),
	})
	if err != nil {
		t.Fatalf("NewCallRetentionJob: %v", err)
	}
	job := jobIface.(*callRetentionJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.called != 1 || !sweeper.lastAt.Equal(now) {
		t.Fatalf("unexpected sweep call: %d at %s", sweeper.called, sweeper.lastAt)
	}
	expected := `
# HELP callcenter_job_rows_affected_total Rows written by cron jobs (calls expired, task rows seeded).
# TYPE callcenter_job_rows_affected_total counter
callcenter_job_rows_affected_total{job="call-retention"} 7
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "callcenter_job_rows_affected_total"); err != nil {
		t.Fatalf("metrics: %v", err)
	}
}

func TestCallRetentionJobPropagatesErrors(t *testing.T) {
	job, err := NewCallRetentionJob(CallRetentionJobParams{
		Logger: testLogger(),
		Calls:  &fakeSweeper{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("NewCallRetentionJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestCallRetentionJobRequiresDeps(t *testing.T) {
	if _, err := NewCallRetentionJob(CallRetentionJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected missing call service error")
	}
	if _, err := NewDailyTaskResetJob(DailyTaskResetJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected missing tracker error")
	}
}

func TestDailyTaskResetJobRunsReset(t *testing.T) {
	resetter := &fakeResetter{result: tasks.ResetResult{Created: 3}}
	job, err := NewDailyTaskResetJob(DailyTaskResetJobParams{
		Logger:  testLogger(),
		Tracker: resetter,
	})
	if err != nil {
		t.Fatalf("NewDailyTaskResetJob: %v", err)
	}
	if job.Name() != "daily-task-reset" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resetter.called != 1 {
		t.Fatalf("expected reset called once, got %d", resetter.called)
	}
}

func TestDailyTaskResetJobReturnsPartialFailure(t *testing.T) {
	resetter := &fakeResetter{
		result: tasks.ResetResult{Created: 2, Failed: 1},
		err:    errors.New("account x: insert failed"),
	}
	job, err := NewDailyTaskResetJob(DailyTaskResetJobParams{
		Logger:  testLogger(),
		Tracker: resetter,
	})
	if err != nil {
		t.Fatalf("NewDailyTaskResetJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
