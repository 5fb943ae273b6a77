// Package employee provides the Employee entity: an account's membership
// record carrying a position rank and a set of tenant memberships.
package employee

import (
	"context"
	"time"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/id"
	"taskwell/internal/domain/auth"
)

// Employee binds exactly one account to a position and a set of tenants.
// The position is stored once but only meaningful within the currently
// selected tenant of a request.
type Employee struct {
	ID           id.ID         `db:"id" json:"id"`
	Code         string        `db:"code" json:"code"`
	AccountID    id.ID         `db:"account_id" json:"accountId"`
	Position     auth.Position `db:"position" json:"position"`
	IsActive     bool          `db:"is_active" json:"isActive"`
	CreatedAt    time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updatedAt"`
	DeletionMark bool          `db:"deletion_mark" json:"-"`
	Version      int           `db:"version" json:"version"`

	// TenantIDs are the tenant memberships, loaded separately.
	TenantIDs []id.ID `db:"-" json:"tenantIds,omitempty"`
}

// New creates an active employee for the account.
// The human-readable code is generated by the service.
func New(accountID id.ID, position auth.Position) *Employee {
	now := time.Now().UTC()
	return &Employee{
		ID:        id.New(),
		AccountID: accountID,
		Position:  position,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// Validate checks employee invariants.
func (e *Employee) Validate(ctx context.Context) error {
	if id.IsNil(e.AccountID) {
		return apperror.NewValidation("account is required").WithDetail("field", "accountId")
	}
	if !e.Position.Valid() {
		return apperror.NewValidation("invalid position").
			WithDetail("field", "position").
			WithDetail("value", string(e.Position))
	}
	return nil
}

// MemberOf reports whether the employee belongs to the tenant.
func (e *Employee) MemberOf(tenantID id.ID) bool {
	for _, t := range e.TenantIDs {
		if t == tenantID {
			return true
		}
	}
	return false
}
