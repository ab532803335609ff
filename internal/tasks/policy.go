package tasks

import "time"

// Daily quota targets. They are fixed policy, not per-account settings.
const (
	AddLeadTarget      = 5
	TransferLeadTarget = 3
)

// Quota names used in logs and metrics.
const (
	QuotaAddLead      = "add_lead"
	QuotaTransferLead = "transfer_lead"
	QuotaReport       = "report"
)

// DayKey maps an instant to the calendar day it falls on in loc, expressed as
// that day's local midnight in UTC. Every task row for the same local day
// carries the same key.
func DayKey(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).UTC()
}
