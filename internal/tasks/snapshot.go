package tasks

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
)

// Snapshot is the read view of one account's quota progress for a day.
type Snapshot struct {
	AccountID             uuid.UUID  `json:"account_id"`
	TaskDate              string     `json:"task_date"`
	AddLeadCount          int        `json:"add_lead_count"`
	AddLeadTarget         int        `json:"add_lead_target"`
	AddLeadCompleted      bool       `json:"add_lead_completed"`
	TransferLeadCount     int        `json:"transfer_lead_count"`
	TransferLeadTarget    int        `json:"transfer_lead_target"`
	TransferLeadCompleted bool       `json:"transfer_lead_completed"`
	ReportSubmitted       bool       `json:"report_submitted"`
	UpdatedAt             *time.Time `json:"updated_at,omitempty"`
}

const dayLayout = "2006-01-02"

func zeroSnapshot(accountID uuid.UUID, day time.Time, loc *time.Location) Snapshot {
	return Snapshot{
		AccountID:          accountID,
		TaskDate:           day.In(loc).Format(dayLayout),
		AddLeadTarget:      AddLeadTarget,
		TransferLeadTarget: TransferLeadTarget,
	}
}

// FromModel renders a stored row, formatting the day key in loc.
func FromModel(task *models.DailyTask, loc *time.Location) Snapshot {
	if loc == nil {
		loc = time.UTC
	}
	snap := zeroSnapshot(task.AccountID, task.TaskDate, loc)
	snap.AddLeadCount = task.AddLeadCount
	snap.AddLeadCompleted = task.AddLeadCompleted
	snap.TransferLeadCount = task.TransferLeadCount
	snap.TransferLeadCompleted = task.TransferLeadCompleted
	snap.ReportSubmitted = task.ReportSubmitted
	if !task.UpdatedAt.IsZero() {
		updated := task.UpdatedAt.UTC()
		snap.UpdatedAt = &updated
	}
	return snap
}
