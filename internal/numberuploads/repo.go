package numberuploads

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/callcenter-backend/internal/repo"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	"github.com/angelmondragon/callcenter-backend/pkg/pagination"
)

// Repository persists number upload batches.
type Repository struct {
	repo.Base
}

// NewRepository binds an upload repository to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, upload *models.NumberUpload) error {
	return r.DB(ctx).Create(upload).Error
}

// List returns batches newest first. A nil assignee lists every batch.
func (r *Repository) List(ctx context.Context, assignee *uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.NumberUpload, error) {
	query := r.DB(ctx).Model(&models.NumberUpload{})
	if assignee != nil {
		query = query.Where("assigned_to = ?", *assignee)
	}
	query = pagination.Keyset(query, "created_at", cursor)

	var rows []models.NumberUpload
	if err := query.Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
