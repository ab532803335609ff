package reports

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/callcenter-backend/internal/repo"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	"github.com/angelmondragon/callcenter-backend/pkg/pagination"
)

// Repository persists daily reports.
type Repository struct {
	repo.Base
}

// NewRepository binds a report repository to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository that issues statements on tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

func (r *Repository) Create(ctx context.Context, report *models.Report) error {
	return r.DB(ctx).Create(report).Error
}

// List returns reports newest first. A nil accountID lists every agent.
func (r *Repository) List(ctx context.Context, accountID *uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Report, error) {
	query := r.DB(ctx).Model(&models.Report{})
	if accountID != nil {
		query = query.Where("account_id = ?", *accountID)
	}
	query = pagination.Keyset(query, "created_at", cursor)

	var rows []models.Report
	if err := query.Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
