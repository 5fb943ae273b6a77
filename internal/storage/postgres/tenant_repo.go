package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"taskwell/internal/domain/tenant"
)

// TenantRepo implements tenant.Repository.
type TenantRepo struct {
	*BaseRepo[*tenant.Tenant]
}

var _ tenant.Repository = (*TenantRepo)(nil)

// NewTenantRepo creates a tenant repository.
func NewTenantRepo(txManager *TxManager) *TenantRepo {
	return &TenantRepo{
		BaseRepo: NewBaseRepo(txManager, "tenants", func() *tenant.Tenant { return &tenant.Tenant{} }),
	}
}

// Create inserts the tenant; a name collision becomes a duplicate error.
func (r *TenantRepo) Create(ctx context.Context, t *tenant.Tenant) error {
	if err := r.BaseRepo.Create(ctx, t); err != nil {
		return translateInsertError(err, "tenant", "name", t.Name)
	}
	return nil
}

// ExistsByName checks name uniqueness among live tenants.
func (r *TenantRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	return r.ExistsWhere(ctx,
		squirrel.Eq{"name": name},
		squirrel.Eq{"deletion_mark": false},
	)
}

// List returns all live tenants ordered by name.
func (r *TenantRepo) List(ctx context.Context) ([]tenant.Tenant, error) {
	var tenants []tenant.Tenant
	q := r.BaseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name")
	err := r.Select(ctx, &tenants, q)
	return tenants, err
}
