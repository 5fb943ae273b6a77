package auth

import (
	"context"

	"taskwell/internal/core/id"
)

// AccountRepository defines persistence for accounts.
// All lookups exclude deletion-marked rows.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, accountID id.ID) (*Account, error)
	GetByPhone(ctx context.Context, phone string) (*Account, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)

	// Update uses optimistic locking on the version column.
	Update(ctx context.Context, account *Account) error

	// LoadRoles returns the account's roles with permissions resolved.
	LoadRoles(ctx context.Context, accountID id.ID) ([]Role, error)
	AssignRole(ctx context.Context, accountID, roleID id.ID) error
}

// RoleRepository defines persistence for roles.
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	GetByCode(ctx context.Context, code string) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	AddPermission(ctx context.Context, roleID, permissionID id.ID) error
}

// PermissionRepository defines persistence for permissions.
type PermissionRepository interface {
	Create(ctx context.Context, permission *Permission) error
	GetByCode(ctx context.Context, code string) (*Permission, error)
	List(ctx context.Context) ([]Permission, error)
}
