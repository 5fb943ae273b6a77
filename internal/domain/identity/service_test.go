package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/id"
	"taskwell/internal/domain/auth"
	"taskwell/internal/domain/employee"
)

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAccountRepo struct {
	byID    map[id.ID]*auth.Account
	byPhone map[string]*auth.Account
	roles   map[id.ID][]auth.Role
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		byID:    make(map[id.ID]*auth.Account),
		byPhone: make(map[string]*auth.Account),
		roles:   make(map[id.ID][]auth.Role),
	}
}

func (r *fakeAccountRepo) Create(ctx context.Context, account *auth.Account) error {
	cp := *account
	r.byID[account.ID] = &cp
	r.byPhone[account.Phone] = &cp
	return nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, accountID id.ID) (*auth.Account, error) {
	if a, ok := r.byID[accountID]; ok && !a.DeletionMark {
		cp := *a
		return &cp, nil
	}
	return nil, apperror.NewNotFound("account", accountID)
}

func (r *fakeAccountRepo) GetByPhone(ctx context.Context, phone string) (*auth.Account, error) {
	if a, ok := r.byPhone[phone]; ok && !a.DeletionMark {
		cp := *a
		return &cp, nil
	}
	return nil, apperror.NewNotFound("account", phone)
}

func (r *fakeAccountRepo) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	_, ok := r.byPhone[phone]
	return ok, nil
}

func (r *fakeAccountRepo) Update(ctx context.Context, account *auth.Account) error {
	cp := *account
	cp.Version++
	r.byID[account.ID] = &cp
	r.byPhone[account.Phone] = &cp
	return nil
}

func (r *fakeAccountRepo) LoadRoles(ctx context.Context, accountID id.ID) ([]auth.Role, error) {
	return r.roles[accountID], nil
}

func (r *fakeAccountRepo) AssignRole(ctx context.Context, accountID, roleID id.ID) error {
	r.roles[accountID] = append(r.roles[accountID], auth.Role{ID: roleID, Code: auth.DefaultRoleCode})
	return nil
}

type fakeRoleRepo struct {
	byCode map[string]*auth.Role
}

func (r *fakeRoleRepo) Create(ctx context.Context, role *auth.Role) error {
	r.byCode[role.Code] = role
	return nil
}

func (r *fakeRoleRepo) GetByCode(ctx context.Context, code string) (*auth.Role, error) {
	if role, ok := r.byCode[code]; ok {
		return role, nil
	}
	return nil, apperror.NewNotFound("role", code)
}

func (r *fakeRoleRepo) List(ctx context.Context) ([]auth.Role, error) { return nil, nil }

func (r *fakeRoleRepo) AddPermission(ctx context.Context, roleID, permissionID id.ID) error {
	return nil
}

type fakeDirectory struct {
	memberships map[id.ID]*employee.Membership
}

func (d *fakeDirectory) GetMembership(ctx context.Context, accountID id.ID) (*employee.Membership, error) {
	return d.memberships[accountID], nil
}

type identityFixture struct {
	svc       *Service
	accounts  *fakeAccountRepo
	directory *fakeDirectory
	codec     *auth.TokenCodec
	hasher    *BcryptHasher
}

func newIdentityFixture() *identityFixture {
	roleRepo := &fakeRoleRepo{byCode: map[string]*auth.Role{
		auth.DefaultRoleCode: auth.NewRole(auth.DefaultRoleCode, "User"),
	}}
	f := &identityFixture{
		accounts:  newFakeAccountRepo(),
		directory: &fakeDirectory{memberships: make(map[id.ID]*employee.Membership)},
		codec:     auth.NewTokenCodec(auth.DefaultTokenConfig("test-secret")),
		hasher:    NewBcryptHasher(bcrypt.MinCost),
	}
	f.svc = NewService(f.accounts, roleRepo, f.directory, f.codec, f.hasher, nopTxManager{})
	return f
}

func (f *identityFixture) register(t *testing.T, phone string) *TokenBundle {
	t.Helper()
	bundle, err := f.svc.Register(context.Background(), RegisterRequest{
		Phone:           phone,
		Password:        "correct-horse",
		PasswordConfirm: "correct-horse",
		FirstName:       "Dana",
		LastName:        "Keller",
	})
	require.NoError(t, err)
	return bundle
}

func TestService_Register(t *testing.T) {
	f := newIdentityFixture()
	ctx := context.Background()

	bundle := f.register(t, "+15550100")

	assert.NotEmpty(t, bundle.AccessToken)
	assert.NotEmpty(t, bundle.RefreshToken)
	assert.Equal(t, "Bearer", bundle.TokenType)
	assert.Nil(t, bundle.User.TenantID)
	assert.Contains(t, bundle.User.Roles, auth.RolePrefix+auth.DefaultRoleCode)

	claims, err := f.codec.Decode(bundle.AccessToken)
	require.NoError(t, err)
	assert.Empty(t, claims.TenantID)
	assert.False(t, claims.IsRefresh())

	// stored hash verifies, plaintext is not stored
	account, err := f.accounts.GetByPhone(ctx, "+15550100")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", account.PasswordHash)
	assert.True(t, f.hasher.Verify(account.PasswordHash, "correct-horse"))
}

func TestService_Register_Validation(t *testing.T) {
	f := newIdentityFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterRequest{
		Phone:           "+15550101",
		Password:        "correct-horse",
		PasswordConfirm: "wrong-horse",
		FirstName:       "Dana",
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	f.register(t, "+15550101")
	_, err = f.svc.Register(ctx, RegisterRequest{
		Phone:           "+15550101",
		Password:        "correct-horse",
		PasswordConfirm: "correct-horse",
		FirstName:       "Dana",
	})
	assert.True(t, apperror.IsDuplicate(err))
}

func TestService_Login_UndifferentiatedFailures(t *testing.T) {
	f := newIdentityFixture()
	ctx := context.Background()

	f.register(t, "+15550102")

	// unknown phone
	_, errUnknown := f.svc.Login(ctx, "+15559999", "correct-horse")
	// wrong password
	_, errPassword := f.svc.Login(ctx, "+15550102", "wrong-horse")
	// disabled account
	f.accounts.byPhone["+15550102"].IsActive = false
	_, errDisabled := f.svc.Login(ctx, "+15550102", "correct-horse")

	for _, err := range []error{errUnknown, errPassword, errDisabled} {
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInvalidCredentials, appErr.Code)
		assert.Equal(t, "invalid credentials", appErr.Message)
		assert.Empty(t, appErr.Details)
	}
}

func TestService_Login_AutoSelectsSingleTenant(t *testing.T) {
	f := newIdentityFixture()
	ctx := context.Background()

	bundle := f.register(t, "+15550103")
	tenantID := id.New()
	employeeID := id.New()
	f.directory.memberships[bundle.User.AccountID] = &employee.Membership{
		EmployeeID: employeeID,
		Position:   auth.PositionEmployee,
		TenantIDs:  []id.ID{tenantID},
	}

	logged, err := f.svc.Login(ctx, "+15550103", "correct-horse")
	require.NoError(t, err)
	require.NotNil(t, logged.User.TenantID)
	assert.Equal(t, tenantID, *logged.User.TenantID)
	require.NotNil(t, logged.User.EmployeeID)
	assert.Equal(t, employeeID, *logged.User.EmployeeID)
	assert.Equal(t, []id.ID{tenantID}, logged.User.TenantIDs)

	claims, err := f.codec.Decode(logged.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tenantID.String(), claims.TenantID)
	assert.Equal(t, employeeID.String(), claims.EmployeeID)
}

func TestService_Login_MultipleTenantsSelectsFirst(t *testing.T) {
	f := newIdentityFixture()
	ctx := context.Background()

	bundle := f.register(t, "+15550104")
	first := id.New()
	second := id.New()
	f.directory.memberships[bundle.User.AccountID] = &employee.Membership{
		EmployeeID: id.New(),
		Position:   auth.PositionManager,
		TenantIDs:  []id.ID{first, second},
	}

	logged, err := f.svc.Login(ctx, "+15550104", "correct-horse")
	require.NoError(t, err)
	require.NotNil(t, logged.User.TenantID)
	assert.Equal(t, first, *logged.User.TenantID)

	// the bundle lists every membership so the client can switch
	assert.Equal(t, []id.ID{first, second}, logged.User.TenantIDs)

	claims, err := f.codec.Decode(logged.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, first.String(), claims.TenantID)
}

func TestService_Refresh(t *testing.T) {
	f := newIdentityFixture()
	ctx := context.Background()

	bundle := f.register(t, "+15550105")

	fresh, err := f.svc.Refresh(ctx, bundle.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	// an access token is not accepted as a refresh token
	_, err = f.svc.Refresh(ctx, bundle.AccessToken)
	assert.True(t, apperror.IsCode(err, apperror.CodeTokenInvalid))

	// disabled account cannot refresh
	f.accounts.byID[bundle.User.AccountID].IsActive = false
	f.accounts.byPhone["+15550105"].IsActive = false
	_, err = f.svc.Refresh(ctx, bundle.RefreshToken)
	assert.True(t, apperror.IsCode(err, apperror.CodeTokenInvalid))
}

func TestService_SwitchTenant(t *testing.T) {
	f := newIdentityFixture()
	ctx := context.Background()

	bundle := f.register(t, "+15550106")
	accountID := bundle.User.AccountID
	memberTenant := id.New()
	otherTenant := id.New()
	f.directory.memberships[accountID] = &employee.Membership{
		EmployeeID: id.New(),
		Position:   auth.PositionAdmin,
		TenantIDs:  []id.ID{memberTenant},
	}

	switched, err := f.svc.SwitchTenant(ctx, accountID, memberTenant)
	require.NoError(t, err)
	require.NotNil(t, switched.User.TenantID)
	assert.Equal(t, memberTenant, *switched.User.TenantID)

	_, err = f.svc.SwitchTenant(ctx, accountID, otherTenant)
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestService_SwitchTenant_NoEmployeeRecord(t *testing.T) {
	f := newIdentityFixture()

	bundle := f.register(t, "+15550107")
	_, err := f.svc.SwitchTenant(context.Background(), bundle.User.AccountID, id.New())
	assert.True(t, apperror.IsUnauthorized(err))
}
