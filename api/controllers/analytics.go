package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/callcenter-backend/api/responses"
	"github.com/angelmondragon/callcenter-backend/api/validators"
	"github.com/angelmondragon/callcenter-backend/internal/analytics"
	"github.com/angelmondragon/callcenter-backend/internal/analytics/types"
	"github.com/angelmondragon/callcenter-backend/pkg/logger"
)

// AnalyticsSummary returns the organisation-wide totals.
func AnalyticsSummary(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "analytics")
			return
		}
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func AdminAnalyticsLeads(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "analytics")
			return
		}
		rows, err := svc.LeadBreakdown(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AdminAnalyticsReports aggregates reports per agent, optionally bounded by
// from/to report dates.
func AdminAnalyticsReports(svc analytics.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "analytics")
			return
		}
		from, err := validators.ParseQueryDate(r, "from", loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to", loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ReportBreakdown(r.Context(), types.ReportWindow{From: from, To: to})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
