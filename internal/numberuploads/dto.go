package numberuploads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
)

// UploadDTO is the API shape of a number batch.
type UploadDTO struct {
	ID         uuid.UUID `json:"id"`
	UploadedBy uuid.UUID `json:"uploaded_by"`
	AssignedTo uuid.UUID `json:"assigned_to"`
	FileName   string    `json:"file_name"`
	Numbers    []string  `json:"numbers"`
	Count      int       `json:"count"`
	CreatedAt  time.Time `json:"created_at"`
}

// UploadInput is a file handed to the service by the transport layer.
type UploadInput struct {
	FileName   string
	Data       []byte
	AssignedTo uuid.UUID
}

// UploadResult reports the stored batch plus what the parser skipped.
type UploadResult struct {
	Upload     UploadDTO `json:"upload"`
	Duplicates int       `json:"duplicates"`
	Rejected   int       `json:"rejected"`
}

func FromModel(m *models.NumberUpload) UploadDTO {
	numbers := append([]string(nil), m.Numbers...)
	if numbers == nil {
		numbers = []string{}
	}
	return UploadDTO{
		ID:         m.ID,
		UploadedBy: m.UploadedBy,
		AssignedTo: m.AssignedTo,
		FileName:   m.FileName,
		Numbers:    numbers,
		Count:      len(numbers),
		CreatedAt:  m.CreatedAt,
	}
}
