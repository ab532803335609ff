package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/callcenter-backend/internal/repo"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
)

// Repository exposes account persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs an accounts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository that issues statements on tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

// Create inserts a new account.
func (r *Repository) Create(ctx context.Context, account *models.Account) error {
	return r.DB(ctx).Create(account).Error
}

// FindByEmail retrieves the account matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.DB(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByID loads an account by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.DB(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateLastLogin refreshes the account's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdateFields applies a partial update keyed by column name.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	result := r.DB(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Updates(fields)
	return repo.OneRow(result)
}

// List returns every account, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Account, error) {
	var rows []models.Account
	if err := r.DB(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActiveByRole returns active accounts holding role, ordered by name.
func (r *Repository) ListActiveByRole(ctx context.Context, role enums.AccountRole) ([]models.Account, error) {
	var rows []models.Account
	err := r.DB(ctx).
		Where("role = ? AND is_active = ?", role, true).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountActive returns the number of active accounts.
func (r *Repository) CountActive(ctx context.Context) (int64, error) {
	var total int64
	err := r.DB(ctx).Model(&models.Account{}).Where("is_active = ?", true).Count(&total).Error
	return total, err
}
