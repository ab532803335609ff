package controllers

import (
	"net/http"

	"github.com/angelmondragon/callcenter-backend/api/responses"
	"github.com/angelmondragon/callcenter-backend/api/validators"
	"github.com/angelmondragon/callcenter-backend/internal/accounts"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	"github.com/angelmondragon/callcenter-backend/pkg/logger"
)

type createAccountRequest struct {
	Name           string  `json:"name" validate:"required,max=120"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"omitempty,min=8"`
	Role           string  `json:"role" validate:"required,account_role"`
	OfficialNumber *string `json:"official_number" validate:"omitempty,max=32"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,max=2048"`
}

type updateAccountRequest struct {
	Name           *string `json:"name" validate:"omitempty,max=120"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Password       *string `json:"password" validate:"omitempty,min=8"`
	OfficialNumber *string `json:"official_number" validate:"omitempty,max=32"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,max=2048"`
	Role           *string `json:"role" validate:"omitempty,account_role"`
	IsActive       *bool   `json:"is_active"`
}

func (u updateAccountRequest) toInput() accounts.UpdateInput {
	input := accounts.UpdateInput{
		Name:           u.Name,
		Email:          u.Email,
		Password:       u.Password,
		OfficialNumber: u.OfficialNumber,
		ProfilePicture: u.ProfilePicture,
		IsActive:       u.IsActive,
	}
	if u.Role != nil {
		role := enums.AccountRole(*u.Role)
		input.Role = &role
	}
	return input
}

// Me returns the caller's own account.
func Me(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "accounts")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		account, err := svc.Get(r.Context(), actor.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}

func AdminAccountsList(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "accounts")
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminAccountsCreate creates an account. The generated temporary password,
// if any, is only ever returned here.
func AdminAccountsCreate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "accounts")
			return
		}
		var body createAccountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Create(r.Context(), accounts.CreateInput{
			Name:           body.Name,
			Email:          body.Email,
			Password:       body.Password,
			Role:           enums.AccountRole(body.Role),
			OfficialNumber: body.OfficialNumber,
			ProfilePicture: body.ProfilePicture,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, result)
	}
}

// AccountsByRole lists active accounts of one role, e.g. CRO agents for a
// lead transfer picker.
func AccountsByRole(svc accounts.Service, role enums.AccountRole, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "accounts")
			return
		}
		list, err := svc.ListActiveByRole(r.Context(), role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AccountsUpdate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "accounts")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseURLUUID(r, "accountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateAccountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		account, err := svc.Update(r.Context(), actor, id, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}

func AdminAccountsDeactivate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "accounts")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseURLUUID(r, "accountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		account, err := svc.Deactivate(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, account)
	}
}
