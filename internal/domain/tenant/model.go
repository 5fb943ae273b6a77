// Package tenant provides the Tenant entity and subscription-plan rules.
// A tenant is an isolated customer organization; it owns projects and has
// employee memberships.
package tenant

import (
	"context"
	"time"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/id"
)

// Plan is the subscription plan enum. Each plan carries a maximum seat
// count; UnlimitedSeats disables the cap.
type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanStarter    Plan = "STARTER"
	PlanTeam       Plan = "TEAM"
	PlanBusiness   Plan = "BUSINESS"
	PlanEnterprise Plan = "ENTERPRISE"
)

// UnlimitedSeats marks plans without a seat cap.
const UnlimitedSeats = 0

var planSeats = map[Plan]int{
	PlanFree:       3,
	PlanStarter:    10,
	PlanTeam:       25,
	PlanBusiness:   100,
	PlanEnterprise: UnlimitedSeats,
}

// MaxUsers returns the seat cap for the plan.
func (p Plan) MaxUsers() int {
	return planSeats[p]
}

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	_, ok := planSeats[p]
	return ok
}

// Tenant represents a customer organization.
// MaxUsers is a snapshot of the plan's seat cap taken when the plan is
// set; the active-employee count is checked against it at mutation time,
// not continuously.
type Tenant struct {
	ID           id.ID     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Plan         Plan      `db:"plan" json:"plan"`
	MaxUsers     int       `db:"max_users" json:"maxUsers"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
	DeletionMark bool      `db:"deletion_mark" json:"-"`
	Version      int       `db:"version" json:"version"`
}

// New creates an active tenant on the given plan.
func New(name string, plan Plan) *Tenant {
	now := time.Now().UTC()
	return &Tenant{
		ID:        id.New(),
		Name:      name,
		Plan:      plan,
		MaxUsers:  plan.MaxUsers(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// Validate checks tenant invariants.
func (t *Tenant) Validate(ctx context.Context) error {
	if t.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if !t.Plan.Valid() {
		return apperror.NewValidation("invalid plan").
			WithDetail("field", "plan").
			WithDetail("value", string(t.Plan))
	}
	return nil
}

// HasSeatFor reports whether one more active employee fits under the cap.
func (t *Tenant) HasSeatFor(activeEmployees int) bool {
	if t.MaxUsers == UnlimitedSeats {
		return true
	}
	return activeEmployees < t.MaxUsers
}

// OwningTenant implements guard.TenantOwned; a tenant is scoped to itself.
func (t *Tenant) OwningTenant() *id.ID { return &t.ID }

// EntityName implements guard.TenantOwned.
func (t *Tenant) EntityName() string { return "tenant" }

// EntityID implements guard.TenantOwned.
func (t *Tenant) EntityID() id.ID { return t.ID }
