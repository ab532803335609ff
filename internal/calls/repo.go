package calls

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/callcenter-backend/internal/repo"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	"github.com/angelmondragon/callcenter-backend/pkg/pagination"
)

// ListFilter narrows a call listing. A nil AccountID lists every agent.
type ListFilter struct {
	AccountID *uuid.UUID
	Category  *enums.CallCategory
	Limit     int
	Cursor    *pagination.Cursor
}

// Repository persists call records.
type Repository struct {
	repo.Base
}

// NewRepository binds a call repository to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, call *models.Call) error {
	return r.DB(ctx).Create(call).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Call, error) {
	var call models.Call
	if err := r.DB(ctx).First(&call, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &call, nil
}

// List fetches up to filter.Limit rows (callers pass a look-ahead limit),
// newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Call, error) {
	query := r.DB(ctx).Model(&models.Call{})
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	query = pagination.Keyset(query, "created_at", filter.Cursor)

	var rows []models.Call
	if err := query.Limit(filter.Limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, id uuid.UUID, category enums.CallCategory) error {
	result := r.DB(ctx).
		Model(&models.Call{}).
		Where("id = ?", id).
		UpdateColumn("category", category)
	return repo.OneRow(result)
}

// SoftDeleteCategorizedBefore marks categorized calls created before cutoff
// as deleted. Already deleted rows are excluded by the soft delete scope.
func (r *Repository) SoftDeleteCategorizedBefore(ctx context.Context, cutoff, now time.Time) (int64, error) {
	result := r.DB(ctx).
		Model(&models.Call{}).
		Where("category IS NOT NULL AND category <> ''").
		Where("created_at < ?", cutoff).
		UpdateColumn("deleted_at", now)
	return result.RowsAffected, result.Error
}

// Count returns the number of live calls.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.DB(ctx).Model(&models.Call{}).Count(&total).Error
	return total, err
}
