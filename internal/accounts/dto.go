package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
)

// AccountDTO is the transport shape that omits credentials.
type AccountDTO struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Role           enums.AccountRole `json:"role"`
	OfficialNumber *string           `json:"official_number,omitempty"`
	ProfilePicture *string           `json:"profile_picture,omitempty"`
	IsActive       bool              `json:"is_active"`
	LastLoginAt    *time.Time        `json:"last_login_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// AgentSummary is the compact listing used when picking a lead recipient or
// an upload assignee.
type AgentSummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	OfficialNumber *string   `json:"official_number,omitempty"`
}

// CreateInput carries a new account. An empty Password asks the service to
// generate a temporary one.
type CreateInput struct {
	Name           string
	Email          string
	Password       string
	Role           enums.AccountRole
	OfficialNumber *string
	ProfilePicture *string
}

// CreateResult returns the account and, when one was generated, the
// temporary password. The password is never readable again.
type CreateResult struct {
	Account      *AccountDTO `json:"account"`
	TempPassword string      `json:"temp_password,omitempty"`
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name           *string
	Email          *string
	Password       *string
	OfficialNumber *string
	ProfilePicture *string
	Role           *enums.AccountRole
	IsActive       *bool
}

func (u UpdateInput) touchesPrivileged() bool {
	return u.Role != nil || u.IsActive != nil
}

func FromModel(a *models.Account) *AccountDTO {
	if a == nil {
		return nil
	}
	return &AccountDTO{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		Role:           a.Role,
		OfficialNumber: a.OfficialNumber,
		ProfilePicture: a.ProfilePicture,
		IsActive:       a.IsActive,
		LastLoginAt:    a.LastLoginAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func summaryFromModel(a models.Account) AgentSummary {
	return AgentSummary{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		OfficialNumber: a.OfficialNumber,
	}
}
