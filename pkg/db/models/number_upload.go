package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/angelmondragon/callcenter-backend/pkg/db/types"
)

// NumberUpload is a batch of phone numbers handed to a CC agent.
type NumberUpload struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey"`
	UploadedBy uuid.UUID            `gorm:"column:uploaded_by;type:uuid;not null"`
	AssignedTo uuid.UUID            `gorm:"column:assigned_to;type:uuid;not null;index"`
	FileName   string               `gorm:"column:file_name;type:text;not null"`
	Numbers    dbtypes.PhoneNumbers `gorm:"column:numbers;type:jsonb;not null"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (n *NumberUpload) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
