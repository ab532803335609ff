package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyTask tracks one account's quota progress for one calendar day.
// TaskDate holds local midnight of that day, normalised to UTC.
type DailyTask struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID             uuid.UUID `gorm:"column:account_id;type:uuid;not null;uniqueIndex:uq_daily_tasks_account_day,priority:1"`
	TaskDate              time.Time `gorm:"column:task_date;not null;uniqueIndex:uq_daily_tasks_account_day,priority:2"`
	AddLeadCount          int       `gorm:"column:add_lead_count;not null"`
	AddLeadCompleted      bool      `gorm:"column:add_lead_completed;not null"`
	TransferLeadCount     int       `gorm:"column:transfer_lead_count;not null"`
	TransferLeadCompleted bool      `gorm:"column:transfer_lead_completed;not null"`
	ReportSubmitted       bool      `gorm:"column:report_submitted;not null"`
	CreatedAt             time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *DailyTask) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
