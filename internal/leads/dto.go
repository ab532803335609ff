package leads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/callcenter-backend/internal/tasks"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
)

// Lead states. A lead moves from Active to Transferred once and never back.
const (
	StatusActive      = "active"
	StatusTransferred = "transferred"
)

// LeadDTO is the API shape of a lead.
type LeadDTO struct {
	ID             uuid.UUID  `json:"id"`
	AccountID      uuid.UUID  `json:"account_id"`
	CustomerName   string     `json:"customer_name"`
	CustomerNumber string     `json:"customer_number"`
	DocumentRef    *string    `json:"document_ref,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	Status         string     `json:"status"`
	TransferredTo  *uuid.UUID `json:"transferred_to,omitempty"`
	TransferredAt  *time.Time `json:"transferred_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateInput carries a new lead.
type CreateInput struct {
	CustomerName   string
	CustomerNumber string
	DocumentRef    *string
	Notes          *string
}

// UpdateInput is a partial edit of an active lead.
type UpdateInput struct {
	CustomerName   *string
	CustomerNumber *string
	DocumentRef    *string
	Notes          *string
}

// MutationResult pairs a lead with the creator's task progress after the write.
type MutationResult struct {
	Lead  LeadDTO        `json:"lead"`
	Tasks tasks.Snapshot `json:"tasks"`
}

func FromModel(l *models.Lead) LeadDTO {
	status := StatusActive
	if l.IsTransferred {
		status = StatusTransferred
	}
	return LeadDTO{
		ID:             l.ID,
		AccountID:      l.AccountID,
		CustomerName:   l.CustomerName,
		CustomerNumber: l.CustomerNumber,
		DocumentRef:    l.DocumentRef,
		Notes:          l.Notes,
		Status:         status,
		TransferredTo:  l.TransferredTo,
		TransferredAt:  l.TransferredAt,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}
