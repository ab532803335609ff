package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report is an agent's end-of-day call and lead tally.
type Report struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID    uuid.UUID `gorm:"column:account_id;type:uuid;not null;index"`
	OnlineCalls  int       `gorm:"column:online_calls;not null"`
	OfflineCalls int       `gorm:"column:offline_calls;not null"`
	TotalLeads   int       `gorm:"column:total_leads;not null"`
	ReportDate   time.Time `gorm:"column:report_date;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (r *Report) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
