package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/callcenter-backend/internal/tasks"
	pkgAuth "github.com/angelmondragon/callcenter-backend/pkg/auth"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
	"github.com/angelmondragon/callcenter-backend/pkg/metrics"
	"github.com/angelmondragon/callcenter-backend/pkg/pagination"
)

// Service records and lists daily reports.
type Service interface {
	Submit(ctx context.Context, actor pkgAuth.Actor, input SubmitInput) (*SubmitResult, error)
	List(ctx context.Context, actor pkgAuth.Actor, params pagination.Params) (pagination.Page[ReportDTO], error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type taskTracker interface {
	ForTx(tx *gorm.DB) tasks.Recorder
}

// ServiceParams wires the report service.
type ServiceParams struct {
	DB       txRunner
	Repo     *Repository
	Tracker  taskTracker
	Metrics  *metrics.ActivityMetrics
	Location *time.Location
	Clock    func() time.Time
}

type service struct {
	db      txRunner
	repo    *Repository
	tracker taskTracker
	metrics *metrics.ActivityMetrics
	loc     *time.Location
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reports repository required")
	}
	if params.Tracker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "task tracker required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		db:      params.DB,
		repo:    params.Repo,
		tracker: params.Tracker,
		metrics: params.Metrics,
		loc:     loc,
		now:     clock,
	}, nil
}

// Submit stores a report for today and marks the day's report task done.
// A second report on the same day is stored as well.
func (s *service) Submit(ctx context.Context, actor pkgAuth.Actor, input SubmitInput) (*SubmitResult, error) {
	if actor.Role != enums.AccountRoleCCAgent {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only CC agents submit reports")
	}
	if err := validate(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	report := &models.Report{
		AccountID:    actor.ID,
		OnlineCalls:  input.OnlineCalls,
		OfflineCalls: input.OfflineCalls,
		TotalLeads:   input.TotalLeads,
		ReportDate:   tasks.DayKey(now, s.loc),
		CreatedAt:    now,
	}

	var snapshot tasks.Snapshot
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, report); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create report")
		}
		var err error
		snapshot, err = s.tracker.ForTx(tx).RecordReportSubmitted(ctx, actor.ID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ReportSubmitted()
	return &SubmitResult{Report: fromModel(report, s.loc), Tasks: snapshot}, nil
}

// List returns every report for an admin and the actor's own otherwise.
func (s *service) List(ctx context.Context, actor pkgAuth.Actor, params pagination.Params) (pagination.Page[ReportDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[ReportDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	var owner *uuid.UUID
	if !actor.IsAdmin() {
		id := actor.ID
		owner = &id
	}
	rows, err := s.repo.List(ctx, owner, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return pagination.Page[ReportDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reports")
	}
	items := make([]ReportDTO, 0, len(rows))
	for i := range rows {
		items = append(items, fromModel(&rows[i], s.loc))
	}
	return pagination.BuildPage(items, params.Limit, func(r ReportDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	}), nil
}

func validate(input SubmitInput) error {
	fields := map[string]int{}
	if input.OnlineCalls < 0 {
		fields["online_calls"] = input.OnlineCalls
	}
	if input.OfflineCalls < 0 {
		fields["offline_calls"] = input.OfflineCalls
	}
	if input.TotalLeads < 0 {
		fields["total_leads"] = input.TotalLeads
	}
	if len(fields) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "report counters must be non-negative").WithDetails(fields)
}
