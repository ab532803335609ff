package leads

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/callcenter-backend/internal/accounts"
	"github.com/angelmondragon/callcenter-backend/internal/tasks"
	pkgAuth "github.com/angelmondragon/callcenter-backend/pkg/auth"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
	"github.com/angelmondragon/callcenter-backend/pkg/metrics"
	"github.com/angelmondragon/callcenter-backend/pkg/pagination"
)

const (
	maxNameLength   = 120
	maxNumberLength = 32
)

// Service manages the lead registry and the one-way hand-off to CRO agents.
type Service interface {
	Create(ctx context.Context, actor pkgAuth.Actor, input CreateInput) (*MutationResult, error)
	Update(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID, input UpdateInput) (*LeadDTO, error)
	Delete(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID) error
	Transfer(ctx context.Context, actor pkgAuth.Actor, leadID, recipientID uuid.UUID) (*MutationResult, error)
	ListOwn(ctx context.Context, actor pkgAuth.Actor, params pagination.Params) (pagination.Page[LeadDTO], error)
	ListReceived(ctx context.Context, actor pkgAuth.Actor, params pagination.Params) (pagination.Page[LeadDTO], error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type taskTracker interface {
	ForTx(tx *gorm.DB) tasks.Recorder
}

// ServiceParams wires the lead service.
type ServiceParams struct {
	DB       txRunner
	Repo     *Repository
	Accounts *accounts.Repository
	Tracker  taskTracker
	Metrics  *metrics.ActivityMetrics
	Clock    func() time.Time
}

type service struct {
	db       txRunner
	repo     *Repository
	accounts *accounts.Repository
	tracker  taskTracker
	metrics  *metrics.ActivityMetrics
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "leads repository required")
	}
	if params.Accounts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "accounts repository required")
	}
	if params.Tracker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "task tracker required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		accounts: params.Accounts,
		tracker:  params.Tracker,
		metrics:  params.Metrics,
		now:      clock,
	}, nil
}

// Create stores an active lead and counts it toward the creator's daily
// add-lead quota in the same transaction.
func (s *service) Create(ctx context.Context, actor pkgAuth.Actor, input CreateInput) (*MutationResult, error) {
	if actor.Role != enums.AccountRoleCCAgent {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only CC agents create leads")
	}
	name, err := requiredField("customer_name", input.CustomerName, maxNameLength)
	if err != nil {
		return nil, err
	}
	number, err := requiredField("customer_number", input.CustomerNumber, maxNumberLength)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	lead := &models.Lead{
		AccountID:      actor.ID,
		CustomerName:   name,
		CustomerNumber: number,
		DocumentRef:    optionalField(input.DocumentRef),
		Notes:          optionalField(input.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var snapshot tasks.Snapshot
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, lead); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create lead")
		}
		var err error
		snapshot, err = s.tracker.ForTx(tx).RecordLeadAdded(ctx, actor.ID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.LeadCreated()
	return &MutationResult{Lead: FromModel(lead), Tasks: snapshot}, nil
}

// Update edits an active lead owned by the actor.
func (s *service) Update(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID, input UpdateInput) (*LeadDTO, error) {
	fields := map[string]any{}
	if input.CustomerName != nil {
		name, err := requiredField("customer_name", *input.CustomerName, maxNameLength)
		if err != nil {
			return nil, err
		}
		fields["customer_name"] = name
	}
	if input.CustomerNumber != nil {
		number, err := requiredField("customer_number", *input.CustomerNumber, maxNumberLength)
		if err != nil {
			return nil, err
		}
		fields["customer_number"] = number
	}
	if input.DocumentRef != nil {
		fields["document_ref"] = optionalField(input.DocumentRef)
	}
	if input.Notes != nil {
		fields["notes"] = optionalField(input.Notes)
	}

	var updated *models.Lead
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		lead, err := s.loadEditable(ctx, repo, actor, id)
		if err != nil {
			return err
		}
		if len(fields) > 0 {
			fields["updated_at"] = s.now().UTC()
			ok, err := repo.UpdateActive(ctx, id, fields)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update lead")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInvalidTransition, "lead has already been transferred")
			}
			if lead, err = repo.FindByID(ctx, id); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload lead")
			}
		}
		updated = lead
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(updated)
	return &dto, nil
}

// Delete soft-deletes an active lead owned by the actor. Daily counters
// already earned by the lead are kept.
func (s *service) Delete(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.loadEditable(ctx, repo, actor, id); err != nil {
			return err
		}
		ok, err := repo.SoftDeleteActive(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete lead")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "lead has already been transferred")
		}
		return nil
	})
}

// Transfer hands an active lead to an active CRO agent. Checks run in a
// fixed order: lead exists, actor created it, lead is still active,
// recipient is eligible. The state change and the creator's transfer count
// commit together.
func (s *service) Transfer(ctx context.Context, actor pkgAuth.Actor, leadID, recipientID uuid.UUID) (*MutationResult, error) {
	var (
		transferred *models.Lead
		snapshot    tasks.Snapshot
	)
	now := s.now().UTC()

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		lead, err := s.load(ctx, repo, leadID)
		if err != nil {
			return err
		}
		if !actor.Owns(lead.AccountID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the lead's creator may transfer it")
		}
		if lead.IsTransferred {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "lead has already been transferred")
		}
		if err := s.checkRecipient(ctx, s.accounts.WithTx(tx), recipientID); err != nil {
			return err
		}

		ok, err := repo.MarkTransferred(ctx, leadID, recipientID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transfer lead")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "lead has already been transferred")
		}

		snapshot, err = s.tracker.ForTx(tx).RecordLeadTransferred(ctx, lead.AccountID, now)
		if err != nil {
			return err
		}

		lead.IsTransferred = true
		lead.TransferredTo = &recipientID
		lead.TransferredAt = &now
		lead.UpdatedAt = now
		transferred = lead
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.LeadTransferred()
	return &MutationResult{Lead: FromModel(transferred), Tasks: snapshot}, nil
}

func (s *service) ListOwn(ctx context.Context, actor pkgAuth.Actor, params pagination.Params) (pagination.Page[LeadDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[LeadDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByCreator(ctx, actor.ID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return pagination.Page[LeadDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list leads")
	}
	return pagination.BuildPage(toDTOs(rows), params.Limit, func(l LeadDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: l.CreatedAt, ID: l.ID}
	}), nil
}

// ListReceived returns leads handed to the actor, latest hand-off first.
func (s *service) ListReceived(ctx context.Context, actor pkgAuth.Actor, params pagination.Params) (pagination.Page[LeadDTO], error) {
	if !actor.Role.ReceivesLeads() {
		return pagination.Page[LeadDTO]{}, pkgerrors.New(pkgerrors.CodeForbidden, "role does not receive leads")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[LeadDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListReceived(ctx, actor.ID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return pagination.Page[LeadDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list received leads")
	}
	return pagination.BuildPage(toDTOs(rows), params.Limit, func(l LeadDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: *l.TransferredAt, ID: l.ID}
	}), nil
}

func (s *service) load(ctx context.Context, repo *Repository, id uuid.UUID) (*models.Lead, error) {
	lead, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lead not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lead")
	}
	return lead, nil
}

func (s *service) loadEditable(ctx context.Context, repo *Repository, actor pkgAuth.Actor, id uuid.UUID) (*models.Lead, error) {
	lead, err := s.load(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(lead.AccountID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "lead belongs to another agent")
	}
	if lead.IsTransferred {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "lead has already been transferred")
	}
	return lead, nil
}

func (s *service) checkRecipient(ctx context.Context, repo *accounts.Repository, recipientID uuid.UUID) error {
	recipient, err := repo.FindByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeInvalidRecipient, "recipient does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipient")
	}
	if !recipient.IsActive {
		return pkgerrors.New(pkgerrors.CodeInvalidRecipient, "recipient is inactive")
	}
	if !recipient.Role.ReceivesLeads() {
		return pkgerrors.New(pkgerrors.CodeInvalidRecipient, "recipient is not a CRO agent")
	}
	return nil
}

func toDTOs(rows []models.Lead) []LeadDTO {
	out := make([]LeadDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

func requiredField(name, value string, max int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	if len(trimmed) > max {
		return "", pkgerrors.New(pkgerrors.CodeValidation, name+" is too long")
	}
	return trimmed, nil
}

func optionalField(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
