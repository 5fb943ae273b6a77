package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"taskwell/internal/core/id"
	"taskwell/internal/domain/auth"
)

// AccountRepo implements auth.AccountRepository.
type AccountRepo struct {
	*BaseRepo[*auth.Account]
}

// Compile-time interface check.
var _ auth.AccountRepository = (*AccountRepo)(nil)

// NewAccountRepo creates an account repository.
func NewAccountRepo(txManager *TxManager) *AccountRepo {
	return &AccountRepo{
		BaseRepo: NewBaseRepo(txManager, "accounts", func() *auth.Account { return &auth.Account{} }),
	}
}

// Create inserts the account; a phone collision becomes a duplicate error.
func (r *AccountRepo) Create(ctx context.Context, account *auth.Account) error {
	if err := r.BaseRepo.Create(ctx, account); err != nil {
		return translateInsertError(err, "account", "phone", account.Phone)
	}
	return nil
}

// GetByPhone retrieves a live account by phone number.
func (r *AccountRepo) GetByPhone(ctx context.Context, phone string) (*auth.Account, error) {
	q := r.BaseSelect().
		Where(squirrel.Eq{"phone": phone}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)
	return r.FindOne(ctx, q, phone)
}

// ExistsByPhone checks phone uniqueness among live accounts.
func (r *AccountRepo) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.ExistsWhere(ctx,
		squirrel.Eq{"phone": phone},
		squirrel.Eq{"deletion_mark": false},
	)
}

// LoadRoles returns the account's roles with their permissions resolved.
func (r *AccountRepo) LoadRoles(ctx context.Context, accountID id.ID) ([]auth.Role, error) {
	q := r.Builder().
		Select("r.id", "r.code", "r.name", "r.is_system", "r.created_at").
		From("roles r").
		Join("account_roles ar ON ar.role_id = r.id").
		Where(squirrel.Eq{"ar.account_id": accountID}).
		OrderBy("r.code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var roles []auth.Role
	if err := pgxscan.Select(ctx, r.Querier(ctx), &roles, sql, args...); err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	for i := range roles {
		perms, err := r.loadPermissions(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Permissions = perms
	}
	return roles, nil
}

func (r *AccountRepo) loadPermissions(ctx context.Context, roleID id.ID) ([]auth.Permission, error) {
	q := r.Builder().
		Select("p.id", "p.code", "p.name", "p.created_at").
		From("permissions p").
		Join("role_permissions rp ON rp.permission_id = p.id").
		Where(squirrel.Eq{"rp.role_id": roleID}).
		OrderBy("p.code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var perms []auth.Permission
	if err := pgxscan.Select(ctx, r.Querier(ctx), &perms, sql, args...); err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	return perms, nil
}

// AssignRole binds a role to the account. Idempotent.
func (r *AccountRepo) AssignRole(ctx context.Context, accountID, roleID id.ID) error {
	sql := `
		INSERT INTO account_roles (account_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (account_id, role_id) DO NOTHING
	`
	if _, err := r.Querier(ctx).Exec(ctx, sql, accountID, roleID); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}
