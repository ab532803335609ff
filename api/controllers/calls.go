package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/callcenter-backend/api/responses"
	"github.com/angelmondragon/callcenter-backend/api/validators"
	"github.com/angelmondragon/callcenter-backend/internal/calls"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
	"github.com/angelmondragon/callcenter-backend/pkg/logger"
)

type createCallRequest struct {
	CustomerNumber string  `json:"customer_number" validate:"required,max=32"`
	Category       *string `json:"category" validate:"omitempty,call_category"`
}

type updateCallCategoryRequest struct {
	Category string `json:"category" validate:"required,call_category"`
}

func CallsList(svc calls.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "calls")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := calls.ListParams{Params: page}
		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			category, err := enums.ParseCallCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category").WithDetails(map[string]any{"field": "category"}))
				return
			}
			params.Category = &category
		}
		result, err := svc.List(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CallsCreate(svc calls.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "calls")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var body createCallRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := calls.CreateInput{CustomerNumber: body.CustomerNumber}
		if body.Category != nil {
			category := enums.CallCategory(*body.Category)
			input.Category = &category
		}
		call, err := svc.Create(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, call)
	}
}

func CallsUpdateCategory(svc calls.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "calls")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseURLUUID(r, "callId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateCallCategoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		call, err := svc.UpdateCategory(r.Context(), actor, id, enums.CallCategory(body.Category))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, call)
	}
}
