package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/callcenter-backend/internal/analytics/query"
	"github.com/angelmondragon/callcenter-backend/internal/analytics/types"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
)

const uncategorized = "uncategorized"

// Service provides read-only rollups over calls, leads, reports and accounts.
// Every call recomputes from the database.
type Service interface {
	Summary(ctx context.Context) (*types.Summary, error)
	LeadBreakdown(ctx context.Context) ([]types.AgentLeadStats, error)
	ReportBreakdown(ctx context.Context, window types.ReportWindow) ([]types.AgentReportStats, error)
}

type leadCounter interface {
	Counts(ctx context.Context) (total, transferred int64, err error)
}

type callCounter interface {
	Count(ctx context.Context) (int64, error)
}

type accountCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

type rollups interface {
	CallsByCategory(ctx context.Context) ([]types.CategoryCountRow, error)
	LeadStats(ctx context.Context) ([]types.LeadStatsRow, error)
	ReportStats(ctx context.Context, window types.ReportWindow) ([]types.ReportStatsRow, error)
}

// ServiceParams wires the analytics service.
type ServiceParams struct {
	DB       *gorm.DB
	Leads    leadCounter
	Calls    callCounter
	Accounts accountCounter
	Clock    func() time.Time
}

type service struct {
	leads    leadCounter
	calls    callCounter
	accounts accountCounter
	rollups  rollups
	now      func() time.Time
}

// NewService builds an analytics service backed by the primary database.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database required")
	}
	if params.Leads == nil || params.Calls == nil || params.Accounts == nil {
		return nil, fmt.Errorf("lead, call and account counters required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		leads:    params.Leads,
		calls:    params.Calls,
		accounts: params.Accounts,
		rollups:  query.NewRollups(params.DB),
		now:      clock,
	}, nil
}

func (s *service) Summary(ctx context.Context) (*types.Summary, error) {
	totalLeads, transferred, err := s.leads.Counts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count leads")
	}
	totalCalls, err := s.calls.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count calls")
	}
	activeAccounts, err := s.accounts.CountActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count accounts")
	}
	buckets, err := s.rollups.CallsByCategory(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count calls by category")
	}

	byCategory := make(map[string]int64, len(buckets))
	for _, b := range buckets {
		key := uncategorized
		if b.Category != nil && *b.Category != "" {
			key = *b.Category
		}
		byCategory[key] += b.Total
	}

	return &types.Summary{
		TotalLeads:            totalLeads,
		TotalTransferredLeads: transferred,
		TotalCalls:            totalCalls,
		TotalActiveAccounts:   activeAccounts,
		CallsByCategory:       byCategory,
		GeneratedAt:           s.now().UTC(),
	}, nil
}

func (s *service) LeadBreakdown(ctx context.Context) ([]types.AgentLeadStats, error) {
	rows, err := s.rollups.LeadStats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate leads")
	}
	out := make([]types.AgentLeadStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.AgentLeadStats{
			AccountID:        row.AccountID,
			Name:             row.Name,
			IsActive:         row.IsActive,
			TotalLeads:       row.Total,
			TransferredLeads: row.Transferred,
			ActiveLeads:      row.Total - row.Transferred,
			TransferRate:     percentage(row.Transferred, row.Total),
		})
	}
	return out, nil
}

func (s *service) ReportBreakdown(ctx context.Context, window types.ReportWindow) ([]types.AgentReportStats, error) {
	if window.From != nil && window.To != nil && window.To.Before(*window.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to")
	}
	rows, err := s.rollups.ReportStats(ctx, window)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate reports")
	}
	out := make([]types.AgentReportStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.AgentReportStats{
			AccountID:         row.AccountID,
			Name:              row.Name,
			ReportCount:       row.ReportCount,
			OnlineCalls:       row.OnlineCalls,
			OfflineCalls:      row.OfflineCalls,
			TotalLeads:        row.TotalLeads,
			AvgOnlineCalls:    average(row.OnlineCalls, row.ReportCount),
			AvgOfflineCalls:   average(row.OfflineCalls, row.ReportCount),
			AvgLeadsPerReport: average(row.TotalLeads, row.ReportCount),
		})
	}
	return out, nil
}

func average(sum, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(count), 2)
}

func percentage(part, whole int64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(decimal.NewFromInt(100)).DivRound(decimal.NewFromInt(whole), 2)
}
