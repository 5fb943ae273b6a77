package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/appctx"
	"taskwell/internal/core/id"
)

// --- in-memory fakes ---

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	tenants map[id.ID]*Tenant
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tenants: make(map[id.ID]*Tenant)}
}

func (r *fakeRepo) Create(ctx context.Context, t *Tenant) error {
	cp := *t
	r.tenants[t.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, tenantID id.ID) (*Tenant, error) {
	if t, ok := r.tenants[tenantID]; ok && !t.DeletionMark {
		cp := *t
		return &cp, nil
	}
	return nil, apperror.NewNotFound("tenant", tenantID)
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, tenantID id.ID) (*Tenant, error) {
	return r.GetByID(ctx, tenantID)
}

func (r *fakeRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	for _, t := range r.tenants {
		if t.Name == name && !t.DeletionMark {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) Update(ctx context.Context, t *Tenant) error {
	cp := *t
	r.tenants[t.ID] = &cp
	return nil
}

func (r *fakeRepo) SetDeletionMark(ctx context.Context, tenantID id.ID, marked bool) error {
	if t, ok := r.tenants[tenantID]; ok {
		t.DeletionMark = marked
		return nil
	}
	return apperror.NewNotFound("tenant", tenantID)
}

func (r *fakeRepo) List(ctx context.Context) ([]Tenant, error) {
	var out []Tenant
	for _, t := range r.tenants {
		if !t.DeletionMark {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeCounter struct {
	active int
}

func (c *fakeCounter) CountActiveByTenant(ctx context.Context, tenantID id.ID) (int, error) {
	return c.active, nil
}

type fakeCascader struct {
	deleted []id.ID
}

func (c *fakeCascader) SoftDeleteByTenant(ctx context.Context, tenantID id.ID) error {
	c.deleted = append(c.deleted, tenantID)
	return nil
}

type enrollment struct {
	accountID id.ID
	tenantID  id.ID
}

type fakeEnroller struct {
	enrolled []enrollment
}

func (e *fakeEnroller) EnrollOwner(ctx context.Context, accountID, tenantID id.ID) error {
	e.enrolled = append(e.enrolled, enrollment{accountID: accountID, tenantID: tenantID})
	return nil
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	counter  *fakeCounter
	cascader *fakeCascader
	enroller *fakeEnroller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     newFakeRepo(),
		counter:  &fakeCounter{},
		cascader: &fakeCascader{},
		enroller: &fakeEnroller{},
	}
	f.svc = NewService(f.repo, f.counter, f.cascader, f.enroller, nopTxManager{})
	return f
}

func authedCtx(accountID id.ID) context.Context {
	return appctx.WithPrincipal(context.Background(), &appctx.Principal{
		AccountID: accountID,
	})
}

func memberCtx(tenantID id.ID) context.Context {
	return appctx.WithPrincipal(context.Background(), &appctx.Principal{
		AccountID: id.New(),
		TenantID:  &tenantID,
	})
}

// --- tests ---

func TestCreate_SnapshotsSeatCap(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(authedCtx(id.New()), "Acme", PlanTeam)
	require.NoError(t, err)
	assert.Equal(t, PlanTeam, created.Plan)
	assert.Equal(t, 25, created.MaxUsers)
	assert.True(t, created.IsActive)
}

func TestCreate_EnrollsCreatorAsOwner(t *testing.T) {
	f := newFixture(t)
	accountID := id.New()

	created, err := f.svc.Create(authedCtx(accountID), "Acme", PlanFree)
	require.NoError(t, err)

	require.Len(t, f.enroller.enrolled, 1)
	assert.Equal(t, accountID, f.enroller.enrolled[0].accountID)
	assert.Equal(t, created.ID, f.enroller.enrolled[0].tenantID)
}

func TestCreate_RequiresAuthentication(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), "Acme", PlanFree)
	assert.True(t, apperror.IsUnauthorized(err))
	assert.Empty(t, f.enroller.enrolled)
}

func TestCreate_DuplicateName(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(authedCtx(id.New()), "Acme", PlanFree)
	require.NoError(t, err)

	_, err = f.svc.Create(authedCtx(id.New()), "Acme", PlanStarter)
	assert.True(t, apperror.IsDuplicate(err))
}

func TestCreate_UnknownPlan(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(authedCtx(id.New()), "Acme", Plan("PLATINUM"))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestGet_WrongTenantDenied(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(authedCtx(id.New()), "Acme", PlanFree)
	require.NoError(t, err)

	_, err = f.svc.Get(memberCtx(id.New()), created.ID)
	assert.True(t, apperror.IsUnauthorized(err))

	got, err := f.svc.Get(memberCtx(created.ID), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestChangePlan_DowngradeBelowHeadcountRejected(t *testing.T) {
	f := newFixture(t)
	f.counter.active = 5

	created, err := f.svc.Create(authedCtx(id.New()), "Acme", PlanTeam)
	require.NoError(t, err)
	ctx := memberCtx(created.ID)

	// 5 active employees do not fit under FREE's 3 seats.
	_, err = f.svc.ChangePlan(ctx, created.ID, PlanFree)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeSubscriptionLimit, appErr.Code)

	// The plan is unchanged after the failed downgrade.
	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanTeam, got.Plan)

	// An upgrade goes through and re-snapshots the cap.
	upgraded, err := f.svc.ChangePlan(ctx, created.ID, PlanBusiness)
	require.NoError(t, err)
	assert.Equal(t, 100, upgraded.MaxUsers)
}

func TestChangePlan_EnterpriseLiftsCap(t *testing.T) {
	f := newFixture(t)
	f.counter.active = 500

	created, err := f.svc.Create(authedCtx(id.New()), "Acme", PlanBusiness)
	require.NoError(t, err)

	upgraded, err := f.svc.ChangePlan(memberCtx(created.ID), created.ID, PlanEnterprise)
	require.NoError(t, err)
	assert.Equal(t, UnlimitedSeats, upgraded.MaxUsers)
}

func TestEnsureSeatAvailable(t *testing.T) {
	f := newFixture(t)
	f.counter.active = 2

	created, err := f.svc.Create(authedCtx(id.New()), "Acme", PlanFree)
	require.NoError(t, err)

	// 2 of 3 seats used: one more fits.
	require.NoError(t, f.svc.EnsureSeatAvailable(context.Background(), created.ID))

	f.counter.active = 3
	err = f.svc.EnsureSeatAvailable(context.Background(), created.ID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeSubscriptionLimit, appErr.Code)
}

func TestDelete_CascadesToProjects(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(authedCtx(id.New()), "Acme", PlanFree)
	require.NoError(t, err)
	ctx := memberCtx(created.ID)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	assert.Equal(t, []id.ID{created.ID}, f.cascader.deleted)

	_, err = f.svc.Get(ctx, created.ID)
	assert.True(t, apperror.IsNotFound(err))
}
