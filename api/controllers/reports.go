package controllers

import (
	"net/http"

	"github.com/angelmondragon/callcenter-backend/api/responses"
	"github.com/angelmondragon/callcenter-backend/api/validators"
	"github.com/angelmondragon/callcenter-backend/internal/reports"
	"github.com/angelmondragon/callcenter-backend/pkg/logger"
)

// Counters are plain ints here; the service reports every negative field at
// once in the error details.
type submitReportRequest struct {
	OnlineCalls  int `json:"online_calls"`
	OfflineCalls int `json:"offline_calls"`
	TotalLeads   int `json:"total_leads"`
}

func ReportsList(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "reports")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ReportsSubmit(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "reports")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var body submitReportRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Submit(r.Context(), actor, reports.SubmitInput{
			OnlineCalls:  body.OnlineCalls,
			OfflineCalls: body.OfflineCalls,
			TotalLeads:   body.TotalLeads,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, result)
	}
}
