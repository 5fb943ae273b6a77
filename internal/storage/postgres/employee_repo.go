package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"taskwell/internal/core/id"
	"taskwell/internal/domain/employee"
)

// EmployeeRepo implements employee.Repository. Memberships live in the
// employee_tenants link table and are loaded separately.
type EmployeeRepo struct {
	*BaseRepo[*employee.Employee]
}

var _ employee.Repository = (*EmployeeRepo)(nil)

// NewEmployeeRepo creates an employee repository.
func NewEmployeeRepo(txManager *TxManager) *EmployeeRepo {
	return &EmployeeRepo{
		BaseRepo: NewBaseRepo(txManager, "employees", func() *employee.Employee { return &employee.Employee{} }),
	}
}

// Create inserts the employee; a code collision becomes a duplicate error.
func (r *EmployeeRepo) Create(ctx context.Context, e *employee.Employee) error {
	if err := r.BaseRepo.Create(ctx, e); err != nil {
		return translateInsertError(err, "employee", "code", e.Code)
	}
	return nil
}

// GetByAccount retrieves the live employee record bound to the account.
func (r *EmployeeRepo) GetByAccount(ctx context.Context, accountID id.ID) (*employee.Employee, error) {
	q := r.BaseSelect().
		Where(squirrel.Eq{"account_id": accountID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)
	return r.FindOne(ctx, q, accountID.String())
}

// ListByTenant lists live employees that are members of the tenant.
func (r *EmployeeRepo) ListByTenant(ctx context.Context, tenantID id.ID) ([]employee.Employee, error) {
	var employees []employee.Employee
	q := r.Builder().
		Select(prefixColumns("e", r.selectCols)...).
		From("employees e").
		Join("employee_tenants et ON et.employee_id = e.id").
		Where(squirrel.Eq{"et.tenant_id": tenantID}).
		Where(squirrel.Eq{"e.deletion_mark": false}).
		OrderBy("e.code")
	err := r.Select(ctx, &employees, q)
	return employees, err
}

// LoadTenants returns the tenant ids the employee belongs to.
func (r *EmployeeRepo) LoadTenants(ctx context.Context, employeeID id.ID) ([]id.ID, error) {
	sql := `SELECT tenant_id FROM employee_tenants WHERE employee_id = $1 ORDER BY tenant_id`

	rows, err := r.Querier(ctx).Query(ctx, sql, employeeID)
	if err != nil {
		return nil, fmt.Errorf("load tenants: %w", err)
	}
	defer rows.Close()

	var tenants []id.ID
	for rows.Next() {
		var tenantID id.ID
		if err := rows.Scan(&tenantID); err != nil {
			return nil, fmt.Errorf("scan tenant id: %w", err)
		}
		tenants = append(tenants, tenantID)
	}
	return tenants, rows.Err()
}

// AddToTenant binds the employee to the tenant. Idempotent.
func (r *EmployeeRepo) AddToTenant(ctx context.Context, employeeID, tenantID id.ID) error {
	sql := `
		INSERT INTO employee_tenants (employee_id, tenant_id)
		VALUES ($1, $2)
		ON CONFLICT (employee_id, tenant_id) DO NOTHING
	`
	if _, err := r.Querier(ctx).Exec(ctx, sql, employeeID, tenantID); err != nil {
		return fmt.Errorf("add to tenant: %w", err)
	}
	return nil
}

// RemoveFromTenant drops the employee's membership in the tenant.
func (r *EmployeeRepo) RemoveFromTenant(ctx context.Context, employeeID, tenantID id.ID) error {
	sql := `DELETE FROM employee_tenants WHERE employee_id = $1 AND tenant_id = $2`
	if _, err := r.Querier(ctx).Exec(ctx, sql, employeeID, tenantID); err != nil {
		return fmt.Errorf("remove from tenant: %w", err)
	}
	return nil
}

// CountActiveByTenant counts live, active members of the tenant.
// Used by the seat-cap check.
func (r *EmployeeRepo) CountActiveByTenant(ctx context.Context, tenantID id.ID) (int, error) {
	sql := `
		SELECT COUNT(*)
		FROM employees e
		JOIN employee_tenants et ON et.employee_id = e.id
		WHERE et.tenant_id = $1 AND e.is_active = true AND e.deletion_mark = false
	`
	var count int
	if err := r.Querier(ctx).QueryRow(ctx, sql, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active employees: %w", err)
	}
	return count, nil
}
