package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/callcenter-backend/internal/tasks"
	"github.com/angelmondragon/callcenter-backend/pkg/logger"
	"github.com/angelmondragon/callcenter-backend/pkg/metrics"
)

const dailyTaskResetJobName = "daily-task-reset"

type dailyResetter interface {
	ResetAllForNewDay(ctx context.Context, now time.Time) (tasks.ResetResult, error)
}

type DailyTaskResetJobParams struct {
	Logger  *logger.Logger
	Tracker dailyResetter
	Metrics *metrics.CronJobMetrics
}

func NewDailyTaskResetJob(params DailyTaskResetJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Tracker == nil {
		return nil, fmt.Errorf("task tracker required")
	}
	return &dailyTaskResetJob{
		logg:    params.Logger,
		tracker: params.Tracker,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type dailyTaskResetJob struct {
	logg    *logger.Logger
	tracker dailyResetter
	metrics *metrics.CronJobMetrics
	now     func() time.Time
}

func (j *dailyTaskResetJob) Name() string { return dailyTaskResetJobName }

// Run seeds today's rows. Partial failures still count the rows that were
// created before the error is returned.
func (j *dailyTaskResetJob) Run(ctx context.Context) error {
	result, err := j.tracker.ResetAllForNewDay(ctx, j.now())
	j.metrics.AddAffected(dailyTaskResetJobName, int64(result.Created))
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"task_day": result.Day,
		"created":  result.Created,
		"failed":   result.Failed,
	})
	if err != nil {
		j.logg.Warn(logCtx, "daily task reset incomplete")
		return fmt.Errorf("daily task reset: %w", err)
	}
	j.logg.Info(logCtx, "daily task reset complete")
	return nil
}
