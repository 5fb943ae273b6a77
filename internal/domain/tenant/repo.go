package tenant

import (
	"context"

	"taskwell/internal/core/id"
)

// Repository defines persistence for tenants.
// All lookups exclude deletion-marked rows.
type Repository interface {
	Create(ctx context.Context, tenant *Tenant) error
	GetByID(ctx context.Context, tenantID id.ID) (*Tenant, error)
	// GetForUpdate locks the tenant row so seat-cap decisions serialize
	// with concurrent membership writes in the same transaction.
	GetForUpdate(ctx context.Context, tenantID id.ID) (*Tenant, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Update(ctx context.Context, tenant *Tenant) error
	SetDeletionMark(ctx context.Context, tenantID id.ID, marked bool) error
	List(ctx context.Context) ([]Tenant, error)
}

// EmployeeCounter reports active employees bound to a tenant.
// Implemented by the employee repository.
type EmployeeCounter interface {
	CountActiveByTenant(ctx context.Context, tenantID id.ID) (int, error)
}

// ProjectCascader soft-deletes a tenant's projects (and their boards)
// when the tenant itself is deleted. Implemented by the project repository.
type ProjectCascader interface {
	SoftDeleteByTenant(ctx context.Context, tenantID id.ID) error
}

// OwnerEnroller binds the creating account to a fresh tenant as its
// owner employee. Implemented by the employee service.
type OwnerEnroller interface {
	EnrollOwner(ctx context.Context, accountID, tenantID id.ID) error
}

// OwnerEnrollerFunc adapts a function to OwnerEnroller. Useful when the
// employee service is constructed after the tenant service.
type OwnerEnrollerFunc func(ctx context.Context, accountID, tenantID id.ID) error

func (f OwnerEnrollerFunc) EnrollOwner(ctx context.Context, accountID, tenantID id.ID) error {
	return f(ctx, accountID, tenantID)
}
