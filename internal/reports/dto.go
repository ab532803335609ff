package reports

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/callcenter-backend/internal/tasks"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
)

// ReportDTO is the API shape of a daily report.
type ReportDTO struct {
	ID           uuid.UUID `json:"id"`
	AccountID    uuid.UUID `json:"account_id"`
	OnlineCalls  int       `json:"online_calls"`
	OfflineCalls int       `json:"offline_calls"`
	TotalLeads   int       `json:"total_leads"`
	ReportDate   string    `json:"report_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubmitInput carries the counters of a report.
type SubmitInput struct {
	OnlineCalls  int
	OfflineCalls int
	TotalLeads   int
}

// SubmitResult pairs the stored report with the submitter's task progress.
type SubmitResult struct {
	Report ReportDTO      `json:"report"`
	Tasks  tasks.Snapshot `json:"tasks"`
}

func fromModel(r *models.Report, loc *time.Location) ReportDTO {
	return ReportDTO{
		ID:           r.ID,
		AccountID:    r.AccountID,
		OnlineCalls:  r.OnlineCalls,
		OfflineCalls: r.OfflineCalls,
		TotalLeads:   r.TotalLeads,
		ReportDate:   r.ReportDate.In(loc).Format("2006-01-02"),
		CreatedAt:    r.CreatedAt,
	}
}
