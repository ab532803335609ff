package numberuploads

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/angelmondragon/callcenter-backend/pkg/auth"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/callcenter-backend/pkg/db/types"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
	"github.com/angelmondragon/callcenter-backend/pkg/pagination"
)

// Service stores phone number batches handed from admins to CC agents.
type Service interface {
	Upload(ctx context.Context, actor pkgAuth.Actor, input UploadInput) (*UploadResult, error)
	List(ctx context.Context, actor pkgAuth.Actor, params pagination.Params) (pagination.Page[UploadDTO], error)
}

type accountLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

// ServiceParams wires the upload service.
type ServiceParams struct {
	Repo       *Repository
	Accounts   accountLookup
	MaxNumbers int
	Clock      func() time.Time
}

type service struct {
	repo       *Repository
	accounts   accountLookup
	maxNumbers int
	now        func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "uploads repository required")
	}
	if params.Accounts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "accounts lookup required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{repo: params.Repo, accounts: params.Accounts, maxNumbers: params.MaxNumbers, now: clock}, nil
}

// Upload parses the file and assigns its numbers to an active CC agent.
func (s *service) Upload(ctx context.Context, actor pkgAuth.Actor, input UploadInput) (*UploadResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only administrators upload numbers")
	}
	fileName := filepath.Base(strings.TrimSpace(input.FileName))
	if fileName == "" || fileName == "." {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}

	parsed, err := Parse(fileName, input.Data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	if s.maxNumbers > 0 && len(parsed.Numbers) > s.maxNumbers {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file holds %d numbers; the limit is %d", len(parsed.Numbers), s.maxNumbers))
	}

	assignee, err := s.accounts.FindByID(ctx, input.AssignedTo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidRecipient, "assignee does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignee")
	}
	if !assignee.IsActive || assignee.Role != enums.AccountRoleCCAgent {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRecipient, "assignee must be an active CC agent")
	}

	upload := &models.NumberUpload{
		UploadedBy: actor.ID,
		AssignedTo: assignee.ID,
		FileName:   fileName,
		Numbers:    dbtypes.PhoneNumbers(parsed.Numbers),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, upload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store number upload")
	}

	return &UploadResult{
		Upload:     FromModel(upload),
		Duplicates: parsed.Duplicates,
		Rejected:   len(parsed.Rejected),
	}, nil
}

// List returns every batch for an admin and the batches assigned to the
// actor otherwise.
func (s *service) List(ctx context.Context, actor pkgAuth.Actor, params pagination.Params) (pagination.Page[UploadDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[UploadDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	var assignee *uuid.UUID
	if !actor.IsAdmin() {
		id := actor.ID
		assignee = &id
	}
	rows, err := s.repo.List(ctx, assignee, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return pagination.Page[UploadDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list number uploads")
	}
	items := make([]UploadDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	return pagination.BuildPage(items, params.Limit, func(u UploadDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: u.CreatedAt, ID: u.ID}
	}), nil
}
