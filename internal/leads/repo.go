package leads

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/callcenter-backend/internal/repo"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	"github.com/angelmondragon/callcenter-backend/pkg/pagination"
)

// Repository persists leads.
type Repository struct {
	repo.Base
}

// NewRepository binds a lead repository to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository that issues statements on tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

func (r *Repository) Create(ctx context.Context, lead *models.Lead) error {
	return r.DB(ctx).Create(lead).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	if err := r.DB(ctx).First(&lead, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// UpdateActive applies fields only while the lead is still untransferred.
// It reports whether a row matched.
func (r *Repository) UpdateActive(ctx context.Context, id uuid.UUID, fields map[string]any) (bool, error) {
	result := r.DB(ctx).
		Model(&models.Lead{}).
		Where("id = ? AND is_transferred = ?", id, false).
		Updates(fields)
	return result.RowsAffected > 0, result.Error
}

// SoftDeleteActive marks an untransferred lead as deleted.
func (r *Repository) SoftDeleteActive(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.DB(ctx).
		Where("id = ? AND is_transferred = ?", id, false).
		Delete(&models.Lead{})
	return result.RowsAffected > 0, result.Error
}

// MarkTransferred flips an active lead to transferred. The is_transferred
// guard makes a concurrent second transfer match zero rows.
func (r *Repository) MarkTransferred(ctx context.Context, id, recipientID uuid.UUID, at time.Time) (bool, error) {
	result := r.DB(ctx).
		Model(&models.Lead{}).
		Where("id = ? AND is_transferred = ?", id, false).
		Updates(map[string]any{
			"is_transferred": true,
			"transferred_to": recipientID,
			"transferred_at": at,
			"updated_at":     at,
		})
	return result.RowsAffected > 0, result.Error
}

// ListByCreator returns leads created by accountID, newest first.
func (r *Repository) ListByCreator(ctx context.Context, accountID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Lead, error) {
	query := r.DB(ctx).Model(&models.Lead{}).Where("account_id = ?", accountID)
	query = pagination.Keyset(query, "created_at", cursor)

	var rows []models.Lead
	if err := query.Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListReceived returns leads transferred to recipientID, most recently
// transferred first.
func (r *Repository) ListReceived(ctx context.Context, recipientID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Lead, error) {
	query := r.DB(ctx).
		Model(&models.Lead{}).
		Where("transferred_to = ? AND is_transferred = ?", recipientID, true)
	query = pagination.Keyset(query, "transferred_at", cursor)

	var rows []models.Lead
	if err := query.Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Counts returns the live and transferred lead totals.
func (r *Repository) Counts(ctx context.Context) (total, transferred int64, err error) {
	if err = r.DB(ctx).Model(&models.Lead{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = r.DB(ctx).Model(&models.Lead{}).Where("is_transferred = ?", true).Count(&transferred).Error; err != nil {
		return 0, 0, err
	}
	return total, transferred, nil
}
