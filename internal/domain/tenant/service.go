package tenant

import (
	"context"
	"fmt"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/appctx"
	"taskwell/internal/core/guard"
	"taskwell/internal/core/id"
	"taskwell/internal/core/tx"
	"taskwell/pkg/logger"
)

// Service provides business logic for tenants.
type Service struct {
	repo      Repository
	employees EmployeeCounter
	projects  ProjectCascader
	enroller  OwnerEnroller
	txManager tx.Manager
}

// NewService creates a new tenant service.
func NewService(repo Repository, employees EmployeeCounter, projects ProjectCascader, enroller OwnerEnroller, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		employees: employees,
		projects:  projects,
		enroller:  enroller,
		txManager: txManager,
	}
}

// Create registers a new tenant. Tenant names are globally unique. The
// calling account is enrolled as the tenant's owner employee in the same
// transaction, so a freshly created workspace is administrable from the
// first request.
func (s *Service) Create(ctx context.Context, name string, plan Plan) (*Tenant, error) {
	p := appctx.GetPrincipal(ctx)
	if p == nil {
		return nil, apperror.NewUnauthorized("security context is not set").
			WithDetail("reason", "no_principal")
	}

	t := New(name, plan)
	if err := t.Validate(ctx); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check tenant name: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate("tenant", "name", name)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, t); err != nil {
			return err
		}
		return s.enroller.EnrollOwner(ctx, p.AccountID, t.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "tenant created",
		"tenant_id", t.ID, "plan", t.Plan, "owner_account_id", p.AccountID)
	return t, nil
}

// Get resolves a tenant and authorizes access against the current
// security context.
func (s *Service) Get(ctx context.Context, tenantID id.ID) (*Tenant, error) {
	t, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := guard.ValidateEntityAccess(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ChangePlan switches the tenant's subscription plan. A downgrade below
// the current active-employee count is rejected and leaves the plan
// unchanged; the check runs at this moment only, not retroactively.
func (s *Service) ChangePlan(ctx context.Context, tenantID id.ID, plan Plan) (*Tenant, error) {
	if !plan.Valid() {
		return nil, apperror.NewValidation("invalid plan").WithDetail("value", string(plan))
	}

	t, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	newMax := plan.MaxUsers()
	if newMax != UnlimitedSeats {
		active, err := s.employees.CountActiveByTenant(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("count active employees: %w", err)
		}
		if active > newMax {
			return nil, apperror.NewSubscriptionLimit(string(plan), newMax, active)
		}
	}

	t.Plan = plan
	t.MaxUsers = newMax
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "tenant plan changed", "tenant_id", t.ID, "plan", plan)
	return t, nil
}

// Rename changes the tenant name, keeping global uniqueness.
func (s *Service) Rename(ctx context.Context, tenantID id.ID, name string) (*Tenant, error) {
	if name == "" {
		return nil, apperror.NewValidation("name is required").WithDetail("field", "name")
	}

	t, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if t.Name == name {
		return t, nil
	}

	exists, err := s.repo.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check tenant name: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate("tenant", "name", name)
	}

	t.Name = name
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// EnsureSeatAvailable fails with SUBSCRIPTION_LIMIT_EXCEEDED when the
// tenant has no seat left for one more active employee. Run inside the
// transaction that activates the employee; the locked read serializes
// two concurrent activations racing for the last seat.
func (s *Service) EnsureSeatAvailable(ctx context.Context, tenantID id.ID) error {
	t, err := s.repo.GetForUpdate(ctx, tenantID)
	if err != nil {
		return err
	}
	if t.MaxUsers == UnlimitedSeats {
		return nil
	}
	active, err := s.employees.CountActiveByTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("count active employees: %w", err)
	}
	if !t.HasSeatFor(active) {
		return apperror.NewSubscriptionLimit(string(t.Plan), t.MaxUsers, active)
	}
	return nil
}

// Delete soft-deletes the tenant and cascades to its projects and their
// boards in the same transaction.
func (s *Service) Delete(ctx context.Context, tenantID id.ID) error {
	t, err := s.Get(ctx, tenantID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.SetDeletionMark(ctx, t.ID, true); err != nil {
			return fmt.Errorf("delete tenant: %w", err)
		}
		if err := s.projects.SoftDeleteByTenant(ctx, t.ID); err != nil {
			return fmt.Errorf("cascade projects: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "tenant deleted", "tenant_id", t.ID)
	return nil
}
