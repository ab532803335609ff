package leads

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/callcenter-backend/internal/accounts"
	"github.com/angelmondragon/callcenter-backend/internal/tasks"
	pkgAuth "github.com/angelmondragon/callcenter-backend/pkg/auth"
	"github.com/angelmondragon/callcenter-backend/pkg/db"
	"github.com/angelmondragon/callcenter-backend/pkg/db/dbtest"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
	"github.com/angelmondragon/callcenter-backend/pkg/pagination"
)

type fixture struct {
	svc     Service
	client  *db.Client
	tracker *tasks.Tracker
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	tracker, err := tasks.NewTracker(tasks.TrackerParams{Repo: tasks.NewRepository(client.DB())})
	require.NoError(t, err)

	f := &fixture{client: client, tracker: tracker, now: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	svc, err := NewService(ServiceParams{
		DB:       client,
		Repo:     NewRepository(client.DB()),
		Accounts: accounts.NewRepository(client.DB()),
		Tracker:  tracker,
		Clock:    func() time.Time { return f.now },
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) account(t *testing.T, role enums.AccountRole, active bool) pkgAuth.Actor {
	t.Helper()
	account := &models.Account{
		Name:         string(role),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Role:         role,
		IsActive:     active,
	}
	require.NoError(t, f.client.DB().Create(account).Error)
	return pkgAuth.Actor{ID: account.ID, Role: role}
}

func (f *fixture) lead(t *testing.T, actor pkgAuth.Actor) LeadDTO {
	t.Helper()
	f.now = f.now.Add(time.Minute)
	res, err := f.svc.Create(context.Background(), actor, CreateInput{CustomerName: "Jane Doe", CustomerNumber: "0700123456"})
	require.NoError(t, err)
	return res.Lead
}

func TestCreateRecordsDailyProgress(t *testing.T) {
	f := newFixture(t)
	cc := f.account(t, enums.AccountRoleCCAgent, true)

	var last *MutationResult
	for i := 0; i < 5; i++ {
		res, err := f.svc.Create(context.Background(), cc, CreateInput{CustomerName: "Lead", CustomerNumber: "0700"})
		require.NoError(t, err)
		assert.Equal(t, StatusActive, res.Lead.Status)
		assert.Equal(t, cc.ID, res.Lead.AccountID)
		last = res
	}
	assert.Equal(t, 5, last.Tasks.AddLeadCount)
	assert.True(t, last.Tasks.AddLeadCompleted)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	cc := f.account(t, enums.AccountRoleCCAgent, true)
	cro := f.account(t, enums.AccountRoleCROAgent, true)

	_, err := f.svc.Create(context.Background(), cc, CreateInput{CustomerName: " ", CustomerNumber: "0700"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(context.Background(), cro, CreateInput{CustomerName: "x", CustomerNumber: "0700"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	snap, err := f.tracker.Today(context.Background(), cc.ID, f.now)
	require.NoError(t, err)
	assert.Zero(t, snap.AddLeadCount)
}

type failingRecorder struct{}

func (failingRecorder) ForTx(*gorm.DB) tasks.Recorder { return failingRecorder{} }

func (failingRecorder) RecordLeadAdded(context.Context, uuid.UUID, time.Time) (tasks.Snapshot, error) {
	return tasks.Snapshot{}, pkgerrors.New(pkgerrors.CodeDependency, "tracker down")
}

func (failingRecorder) RecordLeadTransferred(context.Context, uuid.UUID, time.Time) (tasks.Snapshot, error) {
	return tasks.Snapshot{}, pkgerrors.New(pkgerrors.CodeDependency, "tracker down")
}

func (failingRecorder) RecordReportSubmitted(context.Context, uuid.UUID, time.Time) (tasks.Snapshot, error) {
	return tasks.Snapshot{}, pkgerrors.New(pkgerrors.CodeDependency, "tracker down")
}

func TestCreateRollsBackWhenTrackerFails(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		DB:       client,
		Repo:     NewRepository(client.DB()),
		Accounts: accounts.NewRepository(client.DB()),
		Tracker:  failingRecorder{},
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), pkgAuth.Actor{ID: uuid.New(), Role: enums.AccountRoleCCAgent}, CreateInput{CustomerName: "x", CustomerNumber: "1"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	var count int64
	require.NoError(t, client.DB().Model(&models.Lead{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTransferHappyPath(t *testing.T) {
	f := newFixture(t)
	cc := f.account(t, enums.AccountRoleCCAgent, true)
	cro := f.account(t, enums.AccountRoleCROAgent, true)
	lead := f.lead(t, cc)

	res, err := f.svc.Transfer(context.Background(), cc, lead.ID, cro.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusTransferred, res.Lead.Status)
	require.NotNil(t, res.Lead.TransferredTo)
	assert.Equal(t, cro.ID, *res.Lead.TransferredTo)
	require.NotNil(t, res.Lead.TransferredAt)
	assert.Equal(t, 1, res.Tasks.TransferLeadCount)

	var stored models.Lead
	require.NoError(t, f.client.DB().First(&stored, "id = ?", lead.ID).Error)
	assert.True(t, stored.IsTransferred)
	require.NotNil(t, stored.TransferredTo)
	require.NotNil(t, stored.TransferredAt)

	received, err := f.svc.ListReceived(context.Background(), cro, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, received.Items, 1)
	assert.Equal(t, lead.ID, received.Items[0].ID)
}

func TestTransferSecondAttemptIsInvalidTransition(t *testing.T) {
	f := newFixture(t)
	cc := f.account(t, enums.AccountRoleCCAgent, true)
	cro := f.account(t, enums.AccountRoleCROAgent, true)
	other := f.account(t, enums.AccountRoleCROAgent, true)
	lead := f.lead(t, cc)

	_, err := f.svc.Transfer(context.Background(), cc, lead.ID, cro.ID)
	require.NoError(t, err)

	_, err = f.svc.Transfer(context.Background(), cc, lead.ID, other.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))

	var stored models.Lead
	require.NoError(t, f.client.DB().First(&stored, "id = ?", lead.ID).Error)
	assert.Equal(t, cro.ID, *stored.TransferredTo, "recipient is unchanged")

	snap, err := f.tracker.Today(context.Background(), cc.ID, f.now)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TransferLeadCount)
}

func TestTransferErrorOrdering(t *testing.T) {
	f := newFixture(t)
	cc := f.account(t, enums.AccountRoleCCAgent, true)
	intruder := f.account(t, enums.AccountRoleCCAgent, true)
	cro := f.account(t, enums.AccountRoleCROAgent, true)
	inactiveCRO := f.account(t, enums.AccountRoleCROAgent, false)
	admin := f.account(t, enums.AccountRoleSuperAdmin, true)
	ctx := context.Background()

	lead := f.lead(t, cc)

	_, err := f.svc.Transfer(ctx, cc, uuid.New(), cro.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "missing lead: %v", err)

	// A non-creator is refused even when the recipient is also invalid.
	_, err = f.svc.Transfer(ctx, intruder, lead.ID, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "non-creator: %v", err)

	for name, recipient := range map[string]uuid.UUID{
		"unknown":  uuid.New(),
		"inactive": inactiveCRO.ID,
		"cc agent": intruder.ID,
		"admin":    admin.ID,
		"self":     cc.ID,
	} {
		_, err = f.svc.Transfer(ctx, cc, lead.ID, recipient)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidRecipient), "%s recipient: %v", name, err)
	}

	_, err = f.svc.Transfer(ctx, cc, lead.ID, cro.ID)
	require.NoError(t, err)

	// Already transferred beats a bad recipient.
	_, err = f.svc.Transfer(ctx, cc, lead.ID, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition), "transferred lead: %v", err)
}

func TestTransferCompletesQuotaAtThree(t *testing.T) {
	f := newFixture(t)
	cc := f.account(t, enums.AccountRoleCCAgent, true)
	cro := f.account(t, enums.AccountRoleCROAgent, true)

	var res *MutationResult
	for i := 0; i < 3; i++ {
		lead := f.lead(t, cc)
		var err error
		res, err = f.svc.Transfer(context.Background(), cc, lead.ID, cro.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, res.Tasks.TransferLeadCount)
	assert.True(t, res.Tasks.TransferLeadCompleted)
	assert.Equal(t, 3, res.Tasks.AddLeadCount)
}

func TestUpdateAndDeleteOnlyWhileActive(t *testing.T) {
	f := newFixture(t)
	cc := f.account(t, enums.AccountRoleCCAgent, true)
	other := f.account(t, enums.AccountRoleCCAgent, true)
	cro := f.account(t, enums.AccountRoleCROAgent, true)
	ctx := context.Background()

	lead := f.lead(t, cc)
	notes := "  call after 5pm "
	updated, err := f.svc.Update(ctx, cc, lead.ID, UpdateInput{Notes: &notes})
	require.NoError(t, err)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "call after 5pm", *updated.Notes)

	_, err = f.svc.Update(ctx, other, lead.ID, UpdateInput{Notes: &notes})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.Transfer(ctx, cc, lead.ID, cro.ID)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, cc, lead.ID, UpdateInput{Notes: &notes})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))
	err = f.svc.Delete(ctx, cc, lead.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))

	second := f.lead(t, cc)
	require.NoError(t, f.svc.Delete(ctx, cc, second.ID))
	err = f.svc.Delete(ctx, cc, second.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Transfer(ctx, cc, second.ID, cro.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	snap, err := f.tracker.Today(ctx, cc.ID, f.now)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.AddLeadCount, "deleting a lead keeps its counted progress")
}

func TestListOwnNewestFirst(t *testing.T) {
	f := newFixture(t)
	cc := f.account(t, enums.AccountRoleCCAgent, true)
	other := f.account(t, enums.AccountRoleCCAgent, true)

	first := f.lead(t, cc)
	second := f.lead(t, cc)
	f.lead(t, other)

	page, err := f.svc.ListOwn(context.Background(), cc, pagination.Params{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, second.ID, page.Items[0].ID)
	require.NotEmpty(t, page.NextCursor)

	page, err = f.svc.ListOwn(context.Background(), cc, pagination.Params{Limit: 1, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].ID)
	assert.Empty(t, page.NextCursor)
}

func TestListReceivedRequiresCRO(t *testing.T) {
	f := newFixture(t)
	cc := f.account(t, enums.AccountRoleCCAgent, true)

	_, err := f.svc.ListReceived(context.Background(), cc, pagination.Params{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}
