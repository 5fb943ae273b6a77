package employee

import (
	"context"
	"fmt"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/appctx"
	"taskwell/internal/core/guard"
	"taskwell/internal/core/id"
	"taskwell/internal/core/tx"
	"taskwell/internal/domain/auth"
	"taskwell/pkg/logger"
)

// codePrefix for generated employee codes.
const codePrefix = "EMP"

// Service provides business logic for employees.
type Service struct {
	repo      Repository
	codes     CodeGenerator
	seats     SeatChecker
	txManager tx.Manager
}

// NewService creates a new employee service.
func NewService(repo Repository, codes CodeGenerator, seats SeatChecker, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		codes:     codes,
		seats:     seats,
		txManager: txManager,
	}
}

// Create registers an employee record for an account and binds it to the
// tenant. The seat cap is checked inside the same transaction.
func (s *Service) Create(ctx context.Context, accountID, tenantID id.ID, position auth.Position) (*Employee, error) {
	e := New(accountID, position)
	if err := e.Validate(ctx); err != nil {
		return nil, err
	}

	code, err := s.codes.NextCode(ctx, codePrefix)
	if err != nil {
		return nil, fmt.Errorf("generate employee code: %w", err)
	}
	e.Code = code

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.seats.EnsureSeatAvailable(ctx, tenantID); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, e); err != nil {
			return fmt.Errorf("create employee: %w", err)
		}
		if err := s.repo.AddToTenant(ctx, e.ID, tenantID); err != nil {
			return fmt.Errorf("bind employee to tenant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.TenantIDs = []id.ID{tenantID}
	logger.Info(ctx, "employee created",
		"employee_id", e.ID, "code", e.Code, "tenant_id", tenantID)
	return e, nil
}

// Get resolves an employee and verifies it belongs to the current tenant.
func (s *Service) Get(ctx context.Context, employeeID id.ID) (*Employee, error) {
	e, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	tenants, err := s.repo.LoadTenants(ctx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("load memberships: %w", err)
	}
	e.TenantIDs = tenants

	if err := guard.CheckTenantMembership(ctx, e.TenantIDs); err != nil {
		return nil, err
	}
	return e, nil
}

// ListByTenant lists active employees of the current tenant.
func (s *Service) ListByTenant(ctx context.Context) ([]Employee, error) {
	tenantID, err := appctx.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByTenant(ctx, tenantID)
}

// AddToTenant grants the employee membership in the target tenant,
// subject to that tenant's seat cap. The membership lands in the
// request-supplied tenant, so the caller must be acting in that tenant;
// authority held elsewhere does not carry over. The employee itself may
// come from another tenant (this is the invite path), so it is resolved
// without a membership check.
func (s *Service) AddToTenant(ctx context.Context, employeeID, tenantID id.ID) error {
	if err := guard.CheckTenantAccess(ctx, &tenantID); err != nil {
		return err
	}

	e, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	tenants, err := s.repo.LoadTenants(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("load memberships: %w", err)
	}
	e.TenantIDs = tenants
	if e.MemberOf(tenantID) {
		return apperror.NewValidation("employee already belongs to tenant").
			WithDetail("tenant_id", tenantID)
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.seats.EnsureSeatAvailable(ctx, tenantID); err != nil {
			return err
		}
		return s.repo.AddToTenant(ctx, e.ID, tenantID)
	})
}

// EnrollOwner binds the creating account to a fresh tenant. A first-time
// account gets an owner employee record; an account that already has one
// keeps its record and position and gains the membership. Runs inside
// the tenant-creation transaction, so no guard applies yet.
func (s *Service) EnrollOwner(ctx context.Context, accountID, tenantID id.ID) error {
	e, err := s.repo.GetByAccount(ctx, accountID)
	if err != nil {
		if apperror.IsNotFound(err) {
			_, err = s.Create(ctx, accountID, tenantID, auth.PositionOwner)
			return err
		}
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.seats.EnsureSeatAvailable(ctx, tenantID); err != nil {
			return err
		}
		return s.repo.AddToTenant(ctx, e.ID, tenantID)
	})
}

// SetPosition changes the employee's rank.
func (s *Service) SetPosition(ctx context.Context, employeeID id.ID, position auth.Position) (*Employee, error) {
	if !position.Valid() {
		return nil, apperror.NewValidation("invalid position").
			WithDetail("value", string(position))
	}

	e, err := s.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	e.Position = position
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Deactivate marks the employee inactive, freeing a seat.
func (s *Service) Deactivate(ctx context.Context, employeeID id.ID) error {
	e, err := s.Get(ctx, employeeID)
	if err != nil {
		return err
	}
	if !e.IsActive {
		return nil
	}
	e.IsActive = false
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, e)
	})
}

// CurrentPosition resolves the acting employee's position through the
// employee id carried in the request context, never through request
// parameters, so a caller cannot borrow someone else's rank.
func (s *Service) CurrentPosition(ctx context.Context) (auth.Position, error) {
	employeeID, err := appctx.RequireEmployee(ctx)
	if err != nil {
		return "", err
	}

	e, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		return "", err
	}
	tenants, err := s.repo.LoadTenants(ctx, e.ID)
	if err != nil {
		return "", fmt.Errorf("load memberships: %w", err)
	}
	if err := guard.CheckTenantMembership(ctx, tenants); err != nil {
		return "", err
	}
	if !e.IsActive {
		return "", apperror.NewUnauthorized("access denied").
			WithDetail("reason", "employee_inactive")
	}
	return e.Position, nil
}

// RequireAtLeast fails unless the acting employee holds at least the
// given position within the current tenant.
func (s *Service) RequireAtLeast(ctx context.Context, min auth.Position) error {
	position, err := s.CurrentPosition(ctx)
	if err != nil {
		return err
	}
	if !position.IsAtLeast(min) {
		return apperror.NewForbidden("insufficient rank").
			WithDetail("required_position", string(min))
	}
	return nil
}

// Membership describes the employee binding of an account, used by the
// identity service when issuing tokens.
type Membership struct {
	EmployeeID id.ID
	Position   auth.Position
	TenantIDs  []id.ID
}

// GetMembership returns the account's employee binding, or nil when the
// account has no employee record.
func (s *Service) GetMembership(ctx context.Context, accountID id.ID) (*Membership, error) {
	e, err := s.repo.GetByAccount(ctx, accountID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	tenants, err := s.repo.LoadTenants(ctx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("load memberships: %w", err)
	}
	return &Membership{
		EmployeeID: e.ID,
		Position:   e.Position,
		TenantIDs:  tenants,
	}, nil
}
