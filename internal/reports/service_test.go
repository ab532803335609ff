package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/callcenter-backend/internal/tasks"
	pkgAuth "github.com/angelmondragon/callcenter-backend/pkg/auth"
	"github.com/angelmondragon/callcenter-backend/pkg/db/dbtest"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
	"github.com/angelmondragon/callcenter-backend/pkg/pagination"
)

func newService(t *testing.T, now *time.Time) (Service, *tasks.Tracker) {
	t.Helper()
	client := dbtest.Open(t)
	loc := time.FixedZone("EAT", 3*60*60)
	tracker, err := tasks.NewTracker(tasks.TrackerParams{Repo: tasks.NewRepository(client.DB()), Location: loc})
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		DB:       client,
		Repo:     NewRepository(client.DB()),
		Tracker:  tracker,
		Location: loc,
		Clock:    func() time.Time { return *now },
	})
	require.NoError(t, err)
	return svc, tracker
}

func TestSubmitMarksReportTask(t *testing.T) {
	now := time.Date(2026, 5, 4, 22, 30, 0, 0, time.UTC)
	svc, tracker := newService(t, &now)
	agent := pkgAuth.Actor{ID: uuid.New(), Role: enums.AccountRoleCCAgent}

	res, err := svc.Submit(context.Background(), agent, SubmitInput{OnlineCalls: 40, OfflineCalls: 12, TotalLeads: 6})
	require.NoError(t, err)
	assert.Equal(t, 40, res.Report.OnlineCalls)
	assert.Equal(t, "2026-05-05", res.Report.ReportDate, "report date follows the local calendar")
	assert.True(t, res.Tasks.ReportSubmitted)

	snap, err := tracker.Today(context.Background(), agent.ID, now)
	require.NoError(t, err)
	assert.True(t, snap.ReportSubmitted)
}

func TestSubmitTwiceSameDayKeepsBoth(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	svc, _ := newService(t, &now)
	agent := pkgAuth.Actor{ID: uuid.New(), Role: enums.AccountRoleCCAgent}

	_, err := svc.Submit(context.Background(), agent, SubmitInput{OnlineCalls: 1})
	require.NoError(t, err)
	now = now.Add(time.Hour)
	res, err := svc.Submit(context.Background(), agent, SubmitInput{OnlineCalls: 2})
	require.NoError(t, err)
	assert.True(t, res.Tasks.ReportSubmitted)

	page, err := svc.List(context.Background(), agent, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Items[0].OnlineCalls)
}

func TestSubmitRejectsNegativeCounters(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	svc, tracker := newService(t, &now)
	agent := pkgAuth.Actor{ID: uuid.New(), Role: enums.AccountRoleCCAgent}

	_, err := svc.Submit(context.Background(), agent, SubmitInput{OnlineCalls: 3, OfflineCalls: -1})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]int{"offline_calls": -1}, typed.Details())

	snap, err := tracker.Today(context.Background(), agent.ID, now)
	require.NoError(t, err)
	assert.False(t, snap.ReportSubmitted)
}

func TestSubmitRequiresCCAgent(t *testing.T) {
	now := time.Now()
	svc, _ := newService(t, &now)
	_, err := svc.Submit(context.Background(), pkgAuth.Actor{ID: uuid.New(), Role: enums.AccountRoleCROAgent}, SubmitInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestListScopesToActorUnlessAdmin(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	svc, _ := newService(t, &now)
	a := pkgAuth.Actor{ID: uuid.New(), Role: enums.AccountRoleCCAgent}
	b := pkgAuth.Actor{ID: uuid.New(), Role: enums.AccountRoleCCAgent}
	admin := pkgAuth.Actor{ID: uuid.New(), Role: enums.AccountRoleSuperAdmin}

	for _, actor := range []pkgAuth.Actor{a, b, b} {
		now = now.Add(time.Minute)
		_, err := svc.Submit(context.Background(), actor, SubmitInput{TotalLeads: 1})
		require.NoError(t, err)
	}

	own, err := svc.List(context.Background(), b, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, own.Items, 2)

	all, err := svc.List(context.Background(), admin, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 3)
}

