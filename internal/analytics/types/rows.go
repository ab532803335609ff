package types

import "github.com/google/uuid"

// CategoryCountRow is one bucket of the call category rollup.
type CategoryCountRow struct {
	Category *string `gorm:"column:category"`
	Total    int64   `gorm:"column:total"`
}

// LeadStatsRow is the raw per-agent lead aggregate.
type LeadStatsRow struct {
	AccountID   uuid.UUID `gorm:"column:account_id"`
	Name        string    `gorm:"column:name"`
	IsActive    bool      `gorm:"column:is_active"`
	Total       int64     `gorm:"column:total_leads"`
	Transferred int64     `gorm:"column:transferred_leads"`
}

// ReportStatsRow is the raw per-agent report aggregate.
type ReportStatsRow struct {
	AccountID    uuid.UUID `gorm:"column:account_id"`
	Name         string    `gorm:"column:name"`
	ReportCount  int64     `gorm:"column:report_count"`
	OnlineCalls  int64     `gorm:"column:online_calls"`
	OfflineCalls int64     `gorm:"column:offline_calls"`
	TotalLeads   int64     `gorm:"column:total_leads"`
}
