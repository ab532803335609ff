package calls

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/angelmondragon/callcenter-backend/pkg/auth"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
	"github.com/angelmondragon/callcenter-backend/pkg/metrics"
	"github.com/angelmondragon/callcenter-backend/pkg/pagination"
)

// RetentionWindow is how long a categorized call stays visible.
const RetentionWindow = 24 * time.Hour

const maxCustomerNumberLength = 32

// Service logs and lists agent calls.
type Service interface {
	Create(ctx context.Context, actor pkgAuth.Actor, input CreateInput) (*CallDTO, error)
	List(ctx context.Context, actor pkgAuth.Actor, params ListParams) (pagination.Page[CallDTO], error)
	UpdateCategory(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID, category enums.CallCategory) (*CallDTO, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// ServiceParams wires the call service.
type ServiceParams struct {
	Repo      *Repository
	Metrics   *metrics.ActivityMetrics
	Retention time.Duration
	Clock     func() time.Time
}

type service struct {
	repo      *Repository
	metrics   *metrics.ActivityMetrics
	retention time.Duration
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "calls repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = RetentionWindow
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{repo: params.Repo, metrics: params.Metrics, retention: retention, now: clock}, nil
}

func (s *service) Create(ctx context.Context, actor pkgAuth.Actor, input CreateInput) (*CallDTO, error) {
	if !actor.Role.CanLogCalls() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot log calls")
	}
	number := strings.TrimSpace(input.CustomerNumber)
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_number is required")
	}
	if len(number) > maxCustomerNumberLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_number is too long")
	}
	if input.Category != nil && !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}

	call := &models.Call{
		AccountID:      actor.ID,
		CustomerNumber: number,
		Category:       input.Category,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, call); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create call")
	}

	category := ""
	if call.Category != nil {
		category = string(*call.Category)
	}
	s.metrics.CallLogged(category)

	dto := FromModel(call)
	return &dto, nil
}

// List returns the actor's own calls, or every agent's calls for an admin.
func (s *service) List(ctx context.Context, actor pkgAuth.Actor, params ListParams) (pagination.Page[CallDTO], error) {
	if params.Category != nil && !params.Category.IsValid() {
		return pagination.Page[CallDTO]{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[CallDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	filter := ListFilter{
		Category: params.Category,
		Limit:    pagination.LimitWithBuffer(params.Limit),
		Cursor:   cursor,
	}
	if !actor.IsAdmin() {
		id := actor.ID
		filter.AccountID = &id
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[CallDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list calls")
	}
	items := make([]CallDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	return pagination.BuildPage(items, params.Limit, func(c CallDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	}), nil
}

// UpdateCategory sets the outcome of a call. Only its owner or an admin may do so.
func (s *service) UpdateCategory(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID, category enums.CallCategory) (*CallDTO, error) {
	if !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	call, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "call not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load call")
	}
	if !actor.IsAdmin() && !actor.Owns(call.AccountID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "call belongs to another agent")
	}
	if err := s.repo.UpdateCategory(ctx, id, category); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "call not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update call category")
	}
	call.Category = &category
	dto := FromModel(call)
	return &dto, nil
}

// SweepExpired soft-deletes categorized calls older than the retention
// window and reports how many rows it touched. Uncategorized calls are kept.
func (s *service) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	now = now.UTC()
	affected, err := s.repo.SoftDeleteCategorizedBefore(ctx, now.Add(-s.retention), now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sweep expired calls")
	}
	return affected, nil
}
