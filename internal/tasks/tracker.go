package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/callcenter-backend/pkg/db"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
	"github.com/angelmondragon/callcenter-backend/pkg/metrics"
)

// Recorder is the write side of the tracker that lead and report flows call
// from inside their own transactions.
type Recorder interface {
	RecordLeadAdded(ctx context.Context, accountID uuid.UUID, now time.Time) (Snapshot, error)
	RecordLeadTransferred(ctx context.Context, accountID uuid.UUID, now time.Time) (Snapshot, error)
	RecordReportSubmitted(ctx context.Context, accountID uuid.UUID, now time.Time) (Snapshot, error)
}

// TrackerParams wires a Tracker.
type TrackerParams struct {
	Repo     Repository
	Location *time.Location
	Metrics  *metrics.ActivityMetrics
}

// Tracker keeps one row of quota progress per account per local calendar day.
type Tracker struct {
	repo    Repository
	loc     *time.Location
	metrics *metrics.ActivityMetrics
}

// NewTracker builds a tracker. A nil location means UTC.
func NewTracker(params TrackerParams) (*Tracker, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "daily task repository required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{repo: params.Repo, loc: loc, metrics: params.Metrics}, nil
}

// WithTx returns a tracker whose statements run on tx.
func (t *Tracker) WithTx(tx *gorm.DB) *Tracker {
	if tx == nil {
		return t
	}
	return &Tracker{repo: t.repo.WithTx(tx), loc: t.loc, metrics: t.metrics}
}

// ForTx is WithTx behind the Recorder interface.
func (t *Tracker) ForTx(tx *gorm.DB) Recorder {
	return t.WithTx(tx)
}

// Location returns the timezone that defines a calendar day.
func (t *Tracker) Location() *time.Location {
	return t.loc
}

// GetOrCreateToday returns the row for the account's current day, creating a
// zeroed one on first touch.
func (t *Tracker) GetOrCreateToday(ctx context.Context, accountID uuid.UUID, now time.Time) (*models.DailyTask, error) {
	day := DayKey(now, t.loc)
	if _, err := t.repo.InsertIgnore(ctx, accountID, day, now.UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create daily task")
	}
	task, err := t.repo.FindForDay(ctx, accountID, day)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load daily task")
	}
	return task, nil
}

func (t *Tracker) RecordLeadAdded(ctx context.Context, accountID uuid.UUID, now time.Time) (Snapshot, error) {
	return t.increment(ctx, accountID, now, QuotaAddLead, AddLeadTarget, t.repo.IncrementAddLead, func(task *models.DailyTask) int {
		return task.AddLeadCount
	})
}

func (t *Tracker) RecordLeadTransferred(ctx context.Context, accountID uuid.UUID, now time.Time) (Snapshot, error) {
	return t.increment(ctx, accountID, now, QuotaTransferLead, TransferLeadTarget, t.repo.IncrementTransferLead, func(task *models.DailyTask) int {
		return task.TransferLeadCount
	})
}

type incrementFn func(ctx context.Context, accountID uuid.UUID, day, now time.Time, target int) error

func (t *Tracker) increment(ctx context.Context, accountID uuid.UUID, now time.Time, quota string, target int, bump incrementFn, count func(*models.DailyTask) int) (Snapshot, error) {
	if _, err := t.GetOrCreateToday(ctx, accountID, now); err != nil {
		return Snapshot{}, err
	}
	day := DayKey(now, t.loc)
	if err := bump(ctx, accountID, day, now.UTC(), target); err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("record %s", quota))
	}
	task, err := t.repo.FindForDay(ctx, accountID, day)
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load daily task")
	}
	if count(task) == target {
		t.metrics.QuotaCompleted(quota)
	}
	return FromModel(task, t.loc), nil
}

// RecordReportSubmitted sets the report flag for the day. Repeats are no-ops.
func (t *Tracker) RecordReportSubmitted(ctx context.Context, accountID uuid.UUID, now time.Time) (Snapshot, error) {
	before, err := t.GetOrCreateToday(ctx, accountID, now)
	if err != nil {
		return Snapshot{}, err
	}
	day := DayKey(now, t.loc)
	if err := t.repo.MarkReportSubmitted(ctx, accountID, day, now.UTC()); err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record report submission")
	}
	if !before.ReportSubmitted {
		t.metrics.QuotaCompleted(QuotaReport)
	}
	task, err := t.repo.FindForDay(ctx, accountID, day)
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load daily task")
	}
	return FromModel(task, t.loc), nil
}

// ResetResult summarizes one ResetAllForNewDay pass.
type ResetResult struct {
	Day     time.Time
	Created int
	Failed  int
}

// ResetAllForNewDay gives every active CC agent a zeroed row for the day of
// now. Rows of earlier days are left alone, so rerunning is harmless. Every
// account is attempted; failures are combined into the returned error.
func (t *Tracker) ResetAllForNewDay(ctx context.Context, now time.Time) (ResetResult, error) {
	day := DayKey(now, t.loc)
	result := ResetResult{Day: day}

	ids, err := t.repo.ListAccountsMissingDay(ctx, day)
	if err != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts for daily reset")
	}

	var errs error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, multierr.Append(errs, err)
		}
		inserted, err := t.repo.InsertIgnore(ctx, id, day, now.UTC())
		if err != nil {
			result.Failed++
			errs = multierr.Append(errs, fmt.Errorf("account %s: %w", id, err))
			continue
		}
		if inserted {
			result.Created++
		}
	}
	return result, errs
}

// Today returns the account's progress for the day of now. A missing row is
// reported as zero progress.
func (t *Tracker) Today(ctx context.Context, accountID uuid.UUID, now time.Time) (Snapshot, error) {
	day := DayKey(now, t.loc)
	task, err := t.repo.FindForDay(ctx, accountID, day)
	if err != nil {
		if db.IsNotFound(err) {
			return zeroSnapshot(accountID, day, t.loc), nil
		}
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load daily task")
	}
	return FromModel(task, t.loc), nil
}

// MaxHistoryDays bounds a History range.
const MaxHistoryDays = 92

// History lists stored rows for the days between from and to inclusive,
// newest first.
func (t *Tracker) History(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]Snapshot, error) {
	start := DayKey(from, t.loc)
	end := DayKey(to, t.loc)
	if end.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to")
	}
	if end.Sub(start) > MaxHistoryDays*24*time.Hour {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("range may span at most %d days", MaxHistoryDays))
	}
	rows, err := t.repo.ListRange(ctx, accountID, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list daily tasks")
	}
	out := make([]Snapshot, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i], t.loc))
	}
	return out, nil
}

var _ Recorder = (*Tracker)(nil)
