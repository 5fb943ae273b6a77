// Package guard enforces tenant isolation for every tenant-scoped entity
// access. Services resolve an entity first and pass its owning tenant here
// before returning it to any caller (fetch-then-authorize).
//
// Both failure modes (no tenant in the security context, and a tenant
// mismatch) surface as the same Unauthorized error so a cross-tenant
// caller cannot distinguish "exists but not yours" from "not authorized".
// The distinction is kept in server-side logs only.
package guard

import (
	"context"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/appctx"
	"taskwell/internal/core/id"
	"taskwell/pkg/logger"
)

// TenantOwned is implemented by entities that belong to a tenant,
// directly or transitively (a task's tenant is its board's project's
// tenant, resolved by the owning service before the check).
type TenantOwned interface {
	// OwningTenant returns the tenant that owns the entity, or nil for
	// tenant-agnostic resources.
	OwningTenant() *id.ID

	// EntityName returns a short name for logs and error details.
	EntityName() string

	// EntityID returns the entity id for logs.
	EntityID() id.ID
}

// CheckTenantAccess verifies the current request may touch a resource
// owned by requiredTenant. A nil requiredTenant means the resource is
// tenant-agnostic and access is unconditionally granted.
func CheckTenantAccess(ctx context.Context, requiredTenant *id.ID) error {
	if requiredTenant == nil {
		return nil
	}

	current := appctx.CurrentTenant(ctx)
	if current == nil {
		logger.Warn(ctx, "tenant access denied: no tenant in security context",
			"required_tenant_id", *requiredTenant)
		return apperror.NewUnauthorized("access denied").
			WithDetail("reason", "tenant_context_not_set")
	}

	if *current != *requiredTenant {
		logger.Warn(ctx, "tenant access denied: tenant mismatch",
			"required_tenant_id", *requiredTenant,
			"current_tenant_id", *current)
		return apperror.NewUnauthorized("access denied").
			WithDetail("reason", "wrong_tenant")
	}

	return nil
}

// CheckTenantMembership verifies the current tenant is among the given
// memberships. Used for employees, which belong to a set of tenants
// rather than exactly one.
func CheckTenantMembership(ctx context.Context, memberships []id.ID) error {
	current := appctx.CurrentTenant(ctx)
	if current == nil {
		logger.Warn(ctx, "tenant access denied: no tenant in security context")
		return apperror.NewUnauthorized("access denied").
			WithDetail("reason", "tenant_context_not_set")
	}
	for _, t := range memberships {
		if t == *current {
			return nil
		}
	}
	logger.Warn(ctx, "tenant access denied: not a member",
		"current_tenant_id", *current)
	return apperror.NewUnauthorized("access denied").
		WithDetail("reason", "wrong_tenant")
}

// ValidateEntityAccess applies CheckTenantAccess to a resolved entity.
func ValidateEntityAccess(ctx context.Context, entity TenantOwned) error {
	if err := CheckTenantAccess(ctx, entity.OwningTenant()); err != nil {
		logger.Warn(ctx, "entity access denied",
			"entity", entity.EntityName(),
			"entity_id", entity.EntityID())
		return err
	}
	return nil
}
