// Package auth provides the identity model: accounts, RBAC roles and
// permissions, the position rank axis, and the bearer-token codec.
package auth

import (
	"context"
	"time"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/id"
)

// RolePrefix is prepended to role codes when they are exposed as
// authority strings in tokens.
const RolePrefix = "ROLE_"

// DefaultRoleCode is assigned to every newly registered account.
const DefaultRoleCode = "USER"

// PermissionFileUpload gates binary uploads. Granted to the default role
// by the seed data, so a plain account can attach files once it holds a
// tenant membership.
const PermissionFileUpload = "FILE_UPLOAD"

// Account represents a registered user identified by phone number.
// Accounts are never hard-deleted; DeletionMark hides them instead.
type Account struct {
	ID           id.ID      `db:"id" json:"id"`
	Phone        string     `db:"phone" json:"phone"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"firstName"`
	LastName     string     `db:"last_name" json:"lastName"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
	DeletionMark bool       `db:"deletion_mark" json:"-"`
	Version      int        `db:"version" json:"version"`

	// Loaded relations
	Roles []Role `db:"-" json:"roles,omitempty"`
}

// NewAccount creates a new active account.
func NewAccount(phone, passwordHash, firstName, lastName string) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:           id.New(),
		Phone:        phone,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
}

// Validate checks account invariants.
func (a *Account) Validate(ctx context.Context) error {
	if a.Phone == "" {
		return apperror.NewValidation("phone is required").WithDetail("field", "phone")
	}
	if a.FirstName == "" {
		return apperror.NewValidation("first name is required").WithDetail("field", "firstName")
	}
	return nil
}

// CanLogin reports whether the account may authenticate.
func (a *Account) CanLogin() bool {
	return a.IsActive && !a.DeletionMark
}

// FullName returns the display name.
func (a *Account) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// Authorities returns the authority strings carried in access tokens:
// ROLE_<code> for each role plus the raw code of every permission
// reachable through any held role (union, deduplicated).
func (a *Account) Authorities() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(a.Roles)*4)
	add := func(s string) {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, r := range a.Roles {
		add(RolePrefix + r.Code)
		for _, p := range r.Permissions {
			add(p.Code)
		}
	}
	return out
}

// Role is an RBAC role: a named set of permissions.
// The role set is seeded at boot and mutated only by bootstrap code.
type Role struct {
	ID        id.ID     `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	IsSystem  bool      `db:"is_system" json:"isSystem"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Loaded relations
	Permissions []Permission `db:"-" json:"permissions,omitempty"`
}

// NewRole creates a new role.
func NewRole(code, name string) *Role {
	return &Role{
		ID:        id.New(),
		Code:      code,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// Permission is a leaf capability (e.g. TASK_CREATE). Immutable once created.
type Permission struct {
	ID        id.ID     `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewPermission creates a new permission.
func NewPermission(code, name string) *Permission {
	return &Permission{
		ID:        id.New(),
		Code:      code,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}
