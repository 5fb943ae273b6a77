package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"taskwell/internal/core/id"
	"taskwell/internal/domain/auth"
)

// RoleRepo implements auth.RoleRepository.
type RoleRepo struct {
	*BaseRepo[*auth.Role]
}

var _ auth.RoleRepository = (*RoleRepo)(nil)

// NewRoleRepo creates a role repository.
func NewRoleRepo(txManager *TxManager) *RoleRepo {
	return &RoleRepo{
		BaseRepo: NewBaseRepo(txManager, "roles", func() *auth.Role { return &auth.Role{} }),
	}
}

// Create inserts the role; a code collision becomes a duplicate error.
func (r *RoleRepo) Create(ctx context.Context, role *auth.Role) error {
	if err := r.BaseRepo.Create(ctx, role); err != nil {
		return translateInsertError(err, "role", "code", role.Code)
	}
	return nil
}

// GetByCode retrieves a role by code.
func (r *RoleRepo) GetByCode(ctx context.Context, code string) (*auth.Role, error) {
	q := r.BaseSelect().
		Where(squirrel.Eq{"code": code}).
		Limit(1)
	return r.FindOne(ctx, q, code)
}

// List returns all roles ordered by code.
func (r *RoleRepo) List(ctx context.Context) ([]auth.Role, error) {
	var roles []auth.Role
	err := r.Select(ctx, &roles, r.BaseSelect().OrderBy("code"))
	return roles, err
}

// AddPermission binds a permission to the role. Idempotent.
func (r *RoleRepo) AddPermission(ctx context.Context, roleID, permissionID id.ID) error {
	sql := `
		INSERT INTO role_permissions (role_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT (role_id, permission_id) DO NOTHING
	`
	if _, err := r.Querier(ctx).Exec(ctx, sql, roleID, permissionID); err != nil {
		return fmt.Errorf("add permission: %w", err)
	}
	return nil
}

// PermissionRepo implements auth.PermissionRepository.
type PermissionRepo struct {
	*BaseRepo[*auth.Permission]
}

var _ auth.PermissionRepository = (*PermissionRepo)(nil)

// NewPermissionRepo creates a permission repository.
func NewPermissionRepo(txManager *TxManager) *PermissionRepo {
	return &PermissionRepo{
		BaseRepo: NewBaseRepo(txManager, "permissions", func() *auth.Permission { return &auth.Permission{} }),
	}
}

// Create inserts the permission; a code collision becomes a duplicate error.
func (r *PermissionRepo) Create(ctx context.Context, permission *auth.Permission) error {
	if err := r.BaseRepo.Create(ctx, permission); err != nil {
		return translateInsertError(err, "permission", "code", permission.Code)
	}
	return nil
}

// GetByCode retrieves a permission by code.
func (r *PermissionRepo) GetByCode(ctx context.Context, code string) (*auth.Permission, error) {
	q := r.BaseSelect().
		Where(squirrel.Eq{"code": code}).
		Limit(1)
	return r.FindOne(ctx, q, code)
}

// List returns all permissions ordered by code.
func (r *PermissionRepo) List(ctx context.Context) ([]auth.Permission, error) {
	var perms []auth.Permission
	err := r.Select(ctx, &perms, r.BaseSelect().OrderBy("code"))
	return perms, err
}
