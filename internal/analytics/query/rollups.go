package query

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/callcenter-backend/internal/analytics/types"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
)

const (
	callsByCategorySQL = `
SELECT category, COUNT(*) AS total
FROM calls
WHERE deleted_at IS NULL
GROUP BY category
`

	leadStatsSQL = `
SELECT
  a.id AS account_id,
  a.name AS name,
  a.is_active AS is_active,
  COUNT(l.id) AS total_leads,
  COALESCE(SUM(CASE WHEN l.is_transferred THEN 1 ELSE 0 END), 0) AS transferred_leads
FROM accounts a
LEFT JOIN leads l ON l.account_id = a.id AND l.deleted_at IS NULL
WHERE a.role = ?
GROUP BY a.id, a.name, a.is_active
ORDER BY total_leads DESC, a.name ASC
`

	reportStatsSQL = `
SELECT
  a.id AS account_id,
  a.name AS name,
  COUNT(r.id) AS report_count,
  COALESCE(SUM(r.online_calls), 0) AS online_calls,
  COALESCE(SUM(r.offline_calls), 0) AS offline_calls,
  COALESCE(SUM(r.total_leads), 0) AS total_leads
FROM accounts a
LEFT JOIN reports r ON r.account_id = a.id%s
WHERE a.role = ?
GROUP BY a.id, a.name
ORDER BY report_count DESC, a.name ASC
`
)

// Rollups runs aggregate queries against the primary database.
type Rollups struct {
	db *gorm.DB
}

// NewRollups binds the rollup queries to db.
func NewRollups(db *gorm.DB) *Rollups {
	return &Rollups{db: db}
}

// CallsByCategory counts live calls per category; uncategorized calls have a nil category.
func (r *Rollups) CallsByCategory(ctx context.Context) ([]types.CategoryCountRow, error) {
	var rows []types.CategoryCountRow
	if err := r.db.WithContext(ctx).Raw(callsByCategorySQL).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LeadStats aggregates live leads per CC agent, including agents with none.
func (r *Rollups) LeadStats(ctx context.Context) ([]types.LeadStatsRow, error) {
	var rows []types.LeadStatsRow
	if err := r.db.WithContext(ctx).Raw(leadStatsSQL, enums.AccountRoleCCAgent).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ReportStats aggregates reports per CC agent within the optional window.
func (r *Rollups) ReportStats(ctx context.Context, window types.ReportWindow) ([]types.ReportStatsRow, error) {
	var (
		join strings.Builder
		args []any
	)
	if window.From != nil {
		join.WriteString(" AND r.report_date >= ?")
		args = append(args, window.From.UTC())
	}
	if window.To != nil {
		join.WriteString(" AND r.report_date <= ?")
		args = append(args, window.To.UTC())
	}
	args = append(args, enums.AccountRoleCCAgent)

	sql := strings.Replace(reportStatsSQL, "%s", join.String(), 1)
	var rows []types.ReportStatsRow
	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
