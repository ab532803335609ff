package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/callcenter-backend/internal/repo"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
)

// Repository exposes daily task persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertIgnore(ctx context.Context, accountID uuid.UUID, day, now time.Time) (bool, error)
	FindForDay(ctx context.Context, accountID uuid.UUID, day time.Time) (*models.DailyTask, error)
	IncrementAddLead(ctx context.Context, accountID uuid.UUID, day, now time.Time, target int) error
	IncrementTransferLead(ctx context.Context, accountID uuid.UUID, day, now time.Time, target int) error
	MarkReportSubmitted(ctx context.Context, accountID uuid.UUID, day, now time.Time) error
	ListAccountsMissingDay(ctx context.Context, day time.Time) ([]uuid.UUID, error)
	ListRange(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]models.DailyTask, error)
}

type repositoryImpl struct {
	repo.Base
}

// NewRepository returns a daily task repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{Base: repo.NewBase(db)}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{Base: r.Bind(tx)}
}

// InsertIgnore creates a zeroed row for (account, day) unless one exists.
// It reports whether a row was inserted.
func (r *repositoryImpl) InsertIgnore(ctx context.Context, accountID uuid.UUID, day, now time.Time) (bool, error) {
	row := &models.DailyTask{
		AccountID: accountID,
		TaskDate:  day,
		CreatedAt: now,
		UpdatedAt: now,
	}
	result := r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}, {Name: "task_date"}},
			DoNothing: true,
		}).
		Create(row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindForDay returns the row for (account, day). Should duplicates ever exist,
// the most recently created one wins.
func (r *repositoryImpl) FindForDay(ctx context.Context, accountID uuid.UUID, day time.Time) (*models.DailyTask, error) {
	var task models.DailyTask
	err := r.DB(ctx).
		Where("account_id = ? AND task_date = ?", accountID, day).
		Order("created_at DESC").
		Order("id DESC").
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *repositoryImpl) IncrementAddLead(ctx context.Context, accountID uuid.UUID, day, now time.Time, target int) error {
	return r.increment(ctx, accountID, day, now, "add_lead_count", "add_lead_completed", target)
}

func (r *repositoryImpl) IncrementTransferLead(ctx context.Context, accountID uuid.UUID, day, now time.Time, target int) error {
	return r.increment(ctx, accountID, day, now, "transfer_lead_count", "transfer_lead_completed", target)
}

// increment bumps a counter and recomputes its completion flag in one statement;
// both SET expressions read the pre-update count.
func (r *repositoryImpl) increment(ctx context.Context, accountID uuid.UUID, day, now time.Time, countCol, doneCol string, target int) error {
	result := r.DB(ctx).
		Model(&models.DailyTask{}).
		Where("account_id = ? AND task_date = ?", accountID, day).
		Updates(map[string]any{
			countCol:     gorm.Expr(countCol + " + 1"),
			doneCol:      gorm.Expr(countCol+" + 1 >= ?", target),
			"updated_at": now,
		})
	return repo.OneRow(result)
}

func (r *repositoryImpl) MarkReportSubmitted(ctx context.Context, accountID uuid.UUID, day, now time.Time) error {
	result := r.DB(ctx).
		Model(&models.DailyTask{}).
		Where("account_id = ? AND task_date = ?", accountID, day).
		Updates(map[string]any{
			"report_submitted": true,
			"updated_at":       now,
		})
	return repo.OneRow(result)
}

// ListAccountsMissingDay returns active CC agents that have no row for day.
func (r *repositoryImpl) ListAccountsMissingDay(ctx context.Context, day time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB(ctx).
		Model(&models.Account{}).
		Where("role = ? AND is_active = ?", enums.AccountRoleCCAgent, true).
		Where("NOT EXISTS (SELECT 1 FROM daily_tasks dt WHERE dt.account_id = accounts.id AND dt.task_date = ?)", day).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListRange returns rows with from <= task_date <= to, newest first.
func (r *repositoryImpl) ListRange(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]models.DailyTask, error) {
	var rows []models.DailyTask
	err := r.DB(ctx).
		Where("account_id = ? AND task_date >= ? AND task_date <= ?", accountID, from, to).
		Order("task_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
