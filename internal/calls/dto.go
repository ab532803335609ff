package calls

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	"github.com/angelmondragon/callcenter-backend/pkg/pagination"
)

// CallDTO is the API shape of a call record.
type CallDTO struct {
	ID             uuid.UUID           `json:"id"`
	AccountID      uuid.UUID           `json:"account_id"`
	CustomerNumber string              `json:"customer_number"`
	Category       *enums.CallCategory `json:"category,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

// CreateInput is a call to log. Category may be set later.
type CreateInput struct {
	CustomerNumber string
	Category       *enums.CallCategory
}

// ListParams are the caller-facing listing options.
type ListParams struct {
	Category *enums.CallCategory
	pagination.Params
}

func FromModel(c *models.Call) CallDTO {
	return CallDTO{
		ID:             c.ID,
		AccountID:      c.AccountID,
		CustomerNumber: c.CustomerNumber,
		Category:       c.Category,
		CreatedAt:      c.CreatedAt,
	}
}
