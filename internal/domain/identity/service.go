// Package identity provides the authentication flows: registration,
// login, token refresh and tenant switching.
package identity

import (
	"context"
	"fmt"
	"time"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/id"
	"taskwell/internal/core/tx"
	"taskwell/internal/domain/auth"
	"taskwell/internal/domain/employee"
	"taskwell/pkg/logger"
)

// EmployeeDirectory resolves the employee binding of an account.
// Implemented by the employee service.
type EmployeeDirectory interface {
	GetMembership(ctx context.Context, accountID id.ID) (*employee.Membership, error)
}

// Service implements the authentication flows.
type Service struct {
	accounts  auth.AccountRepository
	roles     auth.RoleRepository
	employees EmployeeDirectory
	codec     *auth.TokenCodec
	hasher    PasswordHasher
	txManager tx.Manager
}

// NewService creates a new identity service.
func NewService(
	accounts auth.AccountRepository,
	roles auth.RoleRepository,
	employees EmployeeDirectory,
	codec *auth.TokenCodec,
	hasher PasswordHasher,
	txManager tx.Manager,
) *Service {
	return &Service{
		accounts:  accounts,
		roles:     roles,
		employees: employees,
		codec:     codec,
		hasher:    hasher,
		txManager: txManager,
	}
}

// UserInfo is the denormalized identity block returned with tokens so
// clients render the session without a second round trip.
type UserInfo struct {
	AccountID  id.ID    `json:"accountId"`
	Phone      string   `json:"phone"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	EmployeeID *id.ID   `json:"employeeId,omitempty"`
	TenantID   *id.ID   `json:"tenantId,omitempty"`
	TenantIDs  []id.ID  `json:"tenantIds,omitempty"`
	Roles      []string `json:"roles"`
}

// TokenBundle is the full authentication response.
type TokenBundle struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         UserInfo  `json:"user"`
}

// RegisterRequest carries registration input.
type RegisterRequest struct {
	Phone           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
}

// Register creates an account with the default role and returns a token
// bundle. A fresh account has no employee record, so the tokens carry no
// tenant claim until the account is invited into one.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*TokenBundle, error) {
	if req.Password != req.PasswordConfirm {
		return nil, apperror.NewValidation("passwords do not match").
			WithDetail("field", "passwordConfirm")
	}
	if len(req.Password) < 8 {
		return nil, apperror.NewValidation("password must be at least 8 characters").
			WithDetail("field", "password")
	}

	exists, err := s.accounts.ExistsByPhone(ctx, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("check phone: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate("account", "phone", req.Phone)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	account := auth.NewAccount(req.Phone, hash, req.FirstName, req.LastName)
	if err := account.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.accounts.Create(ctx, account); err != nil {
			return err
		}
		role, err := s.roles.GetByCode(ctx, auth.DefaultRoleCode)
		if err != nil {
			return fmt.Errorf("resolve default role: %w", err)
		}
		return s.accounts.AssignRole(ctx, account.ID, role.ID)
	})
	if err != nil {
		return nil, err
	}

	if account.Roles, err = s.accounts.LoadRoles(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	logger.Info(ctx, "account registered", "account_id", account.ID)
	return s.issueTokens(ctx, account, nil)
}

// Login authenticates by phone and password. Unknown phone, wrong
// password and disabled account all fail with the same error so the
// response never reveals which one it was.
func (s *Service) Login(ctx context.Context, phone, password string) (*TokenBundle, error) {
	account, err := s.accounts.GetByPhone(ctx, phone)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewInvalidCredentials()
		}
		return nil, err
	}
	if !s.hasher.Verify(account.PasswordHash, password) {
		return nil, apperror.NewInvalidCredentials()
	}
	if !account.CanLogin() {
		return nil, apperror.NewInvalidCredentials()
	}

	if account.Roles, err = s.accounts.LoadRoles(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	now := time.Now().UTC()
	account.LastLoginAt = &now
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.accounts.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "account logged in", "account_id", account.ID)
	return s.issueTokens(ctx, account, nil)
}

// Refresh exchanges a live refresh token for a fresh bundle. An access
// token is rejected here even though both kinds share one codec.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenBundle, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefresh() {
		return nil, apperror.NewTokenInvalid(fmt.Errorf("not a refresh token"))
	}

	accountID, err := id.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.NewTokenInvalid(err)
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewTokenInvalid(fmt.Errorf("account gone"))
		}
		return nil, err
	}
	if !account.CanLogin() {
		return nil, apperror.NewTokenInvalid(fmt.Errorf("account disabled"))
	}

	if account.Roles, err = s.accounts.LoadRoles(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	return s.issueTokens(ctx, account, nil)
}

// SwitchTenant re-issues tokens scoped to the requested tenant. The
// account's employee record must actually be a member of that tenant.
func (s *Service) SwitchTenant(ctx context.Context, accountID, tenantID id.ID) (*TokenBundle, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Roles, err = s.accounts.LoadRoles(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	membership, err := s.employees.GetMembership(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperror.NewUnauthorized("access denied").
			WithDetail("reason", "no_employee_record")
	}
	member := false
	for _, t := range membership.TenantIDs {
		if t == tenantID {
			member = true
			break
		}
	}
	if !member {
		logger.Warn(ctx, "tenant switch denied",
			"account_id", account.ID, "tenant_id", tenantID)
		return nil, apperror.NewUnauthorized("access denied").
			WithDetail("reason", "not_a_member")
	}

	logger.Info(ctx, "tenant switched", "account_id", account.ID, "tenant_id", tenantID)
	return s.issueTokens(ctx, account, &tenantID)
}

// issueTokens builds the bundle for the account. When tenantID is nil,
// the employee's first available tenant membership is selected
// automatically; switch-tenant re-scopes the session afterwards.
func (s *Service) issueTokens(ctx context.Context, account *auth.Account, tenantID *id.ID) (*TokenBundle, error) {
	identity := auth.TokenIdentity{
		AccountID:   account.ID,
		Phone:       account.Phone,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		Authorities: account.Authorities(),
	}

	membership, err := s.employees.GetMembership(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	var memberTenants []id.ID
	if membership != nil {
		identity.EmployeeID = &membership.EmployeeID
		memberTenants = membership.TenantIDs
		switch {
		case tenantID != nil:
			identity.TenantID = tenantID
		case len(memberTenants) > 0:
			identity.TenantID = &memberTenants[0]
		}
	}

	accessToken, expiresAt, err := s.codec.IssueAccess(identity)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, _, err := s.codec.IssueRefresh(account.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &TokenBundle{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
		User: UserInfo{
			AccountID:  account.ID,
			Phone:      account.Phone,
			FirstName:  account.FirstName,
			LastName:   account.LastName,
			EmployeeID: identity.EmployeeID,
			TenantID:   identity.TenantID,
			TenantIDs:  memberTenants,
			Roles:      identity.Authorities,
		},
	}, nil
}
