package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Summary is the headline rollup shown on every dashboard.
type Summary struct {
	TotalLeads            int64            `json:"total_leads"`
	TotalTransferredLeads int64            `json:"total_transferred_leads"`
	TotalCalls            int64            `json:"total_calls"`
	TotalActiveAccounts   int64            `json:"total_active_accounts"`
	CallsByCategory       map[string]int64 `json:"calls_by_category"`
	GeneratedAt           time.Time        `json:"generated_at"`
}

// ReportWindow optionally bounds report rollups by report day, inclusive.
type ReportWindow struct {
	From *time.Time
	To   *time.Time
}

// AgentLeadStats is one CC agent's lead activity. TransferRate is a
// percentage with two decimal places.
type AgentLeadStats struct {
	AccountID        uuid.UUID       `json:"account_id"`
	Name             string          `json:"name"`
	IsActive         bool            `json:"is_active"`
	TotalLeads       int64           `json:"total_leads"`
	TransferredLeads int64           `json:"transferred_leads"`
	ActiveLeads      int64           `json:"active_leads"`
	TransferRate     decimal.Decimal `json:"transfer_rate"`
}

// AgentReportStats sums and averages one agent's reports.
type AgentReportStats struct {
	AccountID         uuid.UUID       `json:"account_id"`
	Name              string          `json:"name"`
	ReportCount       int64           `json:"report_count"`
	OnlineCalls       int64           `json:"online_calls"`
	OfflineCalls      int64           `json:"offline_calls"`
	TotalLeads        int64           `json:"total_leads"`
	AvgOnlineCalls    decimal.Decimal `json:"avg_online_calls"`
	AvgOfflineCalls   decimal.Decimal `json:"avg_offline_calls"`
	AvgLeadsPerReport decimal.Decimal `json:"avg_leads_per_report"`
}
