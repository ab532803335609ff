package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/callcenter-backend/pkg/logger"
	"github.com/angelmondragon/callcenter-backend/pkg/metrics"
)

const callRetentionJobName = "call-retention"

type callSweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

type CallRetentionJobParams struct {
	Logger  *logger.Logger
	Calls   callSweeper
	Metrics *metrics.CronJobMetrics
}

func NewCallRetentionJob(params CallRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Calls == nil {
		return nil, fmt.Errorf("call service required")
	}
	return &callRetentionJob{
		logg:    params.Logger,
		calls:   params.Calls,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type callRetentionJob struct {
	logg    *logger.Logger
	calls   callSweeper
	metrics *metrics.CronJobMetrics
	now     func() time.Time
}

func (j *callRetentionJob) Name() string { return callRetentionJobName }

func (j *callRetentionJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	swept, err := j.calls.SweepExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("sweep expired calls: %w", err)
	}
	j.metrics.AddAffected(callRetentionJobName, swept)
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"swept_at":     now,
		"rows_deleted": swept,
	}), "call retention sweep complete")
	return nil
}
