package auth

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/callcenter-backend/pkg/enums"
)

// Actor is the authenticated account on whose behalf a service call runs.
type Actor struct {
	ID   uuid.UUID
	Role enums.AccountRole
}

// IsAdmin reports whether the actor holds the super admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.AccountRoleSuperAdmin
}

// Owns reports whether the actor is the given account.
func (a Actor) Owns(accountID uuid.UUID) bool {
	return a.ID != uuid.Nil && a.ID == accountID
}
