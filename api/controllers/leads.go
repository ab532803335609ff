package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/callcenter-backend/api/responses"
	"github.com/angelmondragon/callcenter-backend/api/validators"
	"github.com/angelmondragon/callcenter-backend/internal/leads"
	pkgAuth "github.com/angelmondragon/callcenter-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
	"github.com/angelmondragon/callcenter-backend/pkg/logger"
	"github.com/angelmondragon/callcenter-backend/pkg/pagination"
)

type createLeadRequest struct {
	CustomerName   string  `json:"customer_name" validate:"required,max=120"`
	CustomerNumber string  `json:"customer_number" validate:"required,max=32"`
	DocumentRef    *string `json:"document_ref" validate:"omitempty,max=2048"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
}

type updateLeadRequest struct {
	CustomerName   *string `json:"customer_name" validate:"omitempty,max=120"`
	CustomerNumber *string `json:"customer_number" validate:"omitempty,max=32"`
	DocumentRef    *string `json:"document_ref" validate:"omitempty,max=2048"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
}

type transferLeadRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,uuid"`
}

type leadPager func(ctx context.Context, actor pkgAuth.Actor, params pagination.Params) (pagination.Page[leads.LeadDTO], error)

// LeadsListOwn lists leads the caller created.
func LeadsListOwn(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailableHandler(logg, "leads")
	}
	return leadsPage(svc.ListOwn, logg)
}

// LeadsListReceived lists leads transferred to the calling CRO agent.
func LeadsListReceived(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailableHandler(logg, "leads")
	}
	return leadsPage(svc.ListReceived, logg)
}

func leadsPage(list leadPager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := list(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// LeadsCreate stores a lead and returns it with the creator's updated quota.
func LeadsCreate(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "leads")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var body createLeadRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Create(r.Context(), actor, leads.CreateInput{
			CustomerName:   body.CustomerName,
			CustomerNumber: body.CustomerNumber,
			DocumentRef:    body.DocumentRef,
			Notes:          body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, result)
	}
}

func LeadsUpdate(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "leads")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseURLUUID(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateLeadRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lead, err := svc.Update(r.Context(), actor, id, leads.UpdateInput{
			CustomerName:   body.CustomerName,
			CustomerNumber: body.CustomerNumber,
			DocumentRef:    body.DocumentRef,
			Notes:          body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lead)
	}
}

func LeadsDelete(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "leads")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseURLUUID(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// LeadsTransfer hands an active lead to a CRO agent.
func LeadsTransfer(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "leads")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseURLUUID(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body transferLeadRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recipient, err := uuid.Parse(body.RecipientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid recipient_id"))
			return
		}
		result, err := svc.Transfer(r.Context(), actor, id, recipient)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
