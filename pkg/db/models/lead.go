package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead is a customer contact owned by the CC agent who created it.
type Lead struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	AccountID      uuid.UUID      `gorm:"column:account_id;type:uuid;not null;index"`
	CustomerName   string         `gorm:"column:customer_name;type:text;not null"`
	CustomerNumber string         `gorm:"column:customer_number;type:text;not null"`
	DocumentRef    *string        `gorm:"column:document_ref;type:text"`
	Notes          *string        `gorm:"column:notes;type:text"`
	IsTransferred  bool           `gorm:"column:is_transferred;not null"`
	TransferredTo  *uuid.UUID     `gorm:"column:transferred_to;type:uuid;index"`
	TransferredAt  *time.Time     `gorm:"column:transferred_at"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (l *Lead) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
