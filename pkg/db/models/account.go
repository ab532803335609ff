package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/callcenter-backend/pkg/enums"
)

// Account is an agent or administrator identity. Accounts are deactivated, never deleted.
type Account struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Name           string            `gorm:"column:name;type:text;not null"`
	Email          string            `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash   string            `gorm:"column:password_hash;not null"`
	Role           enums.AccountRole `gorm:"column:role;type:text;not null"`
	OfficialNumber *string           `gorm:"column:official_number;type:text"`
	ProfilePicture *string           `gorm:"column:profile_picture;type:text"`
	IsActive       bool              `gorm:"column:is_active;not null"`
	LastLoginAt    *time.Time        `gorm:"column:last_login_at"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
