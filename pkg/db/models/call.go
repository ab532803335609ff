package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/callcenter-backend/pkg/enums"
)

// Call is a single dial attempt logged by an agent.
type Call struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey"`
	AccountID      uuid.UUID           `gorm:"column:account_id;type:uuid;not null;index"`
	CustomerNumber string              `gorm:"column:customer_number;type:text;not null"`
	Category       *enums.CallCategory `gorm:"column:category;type:text"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	DeletedAt      gorm.DeletedAt      `gorm:"column:deleted_at;index"`
}

func (c *Call) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
