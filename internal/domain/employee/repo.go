package employee

import (
	"context"

	"taskwell/internal/core/id"
)

// Repository defines persistence for employees.
// All lookups exclude deletion-marked rows and do not load memberships;
// use LoadTenants for those.
type Repository interface {
	Create(ctx context.Context, employee *Employee) error
	GetByID(ctx context.Context, employeeID id.ID) (*Employee, error)
	GetByAccount(ctx context.Context, accountID id.ID) (*Employee, error)
	Update(ctx context.Context, employee *Employee) error
	SetDeletionMark(ctx context.Context, employeeID id.ID, marked bool) error
	ListByTenant(ctx context.Context, tenantID id.ID) ([]Employee, error)

	LoadTenants(ctx context.Context, employeeID id.ID) ([]id.ID, error)
	AddToTenant(ctx context.Context, employeeID, tenantID id.ID) error
	RemoveFromTenant(ctx context.Context, employeeID, tenantID id.ID) error
	CountActiveByTenant(ctx context.Context, tenantID id.ID) (int, error)
}

// CodeGenerator produces the human-readable employee codes (EMP-000001).
type CodeGenerator interface {
	NextCode(ctx context.Context, prefix string) (string, error)
}

// SeatChecker validates the seat cap of a tenant before an employee is
// added to it. Implemented by the tenant service.
type SeatChecker interface {
	EnsureSeatAvailable(ctx context.Context, tenantID id.ID) error
}
