// Package appctx provides request-scoped values extraction.
//
// The security principal lives in the request's context.Context and dies
// with it. Nothing is stored in process-wide state, so a worker picking up
// the next request can never observe a stale tenant or employee identity.
package appctx

import (
	"context"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/id"
)

// Principal contains the authenticated identity for the current request.
// TenantID and EmployeeID are nil until the account selects a tenant;
// "no tenant selected" and "no principal at all" are distinct states.
type Principal struct {
	AccountID  id.ID
	Phone      string
	FirstName  string
	LastName   string
	TenantID   *id.ID
	EmployeeID *id.ID

	// Authorities holds ROLE_<code> strings plus raw permission codes,
	// the union over all roles held by the account.
	Authorities []string
}

type principalKey struct{}

// WithPrincipal adds Principal to context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// GetPrincipal returns Principal from context, or nil for
// unauthenticated requests.
func GetPrincipal(ctx context.Context) *Principal {
	if v, ok := ctx.Value(principalKey{}).(*Principal); ok {
		return v
	}
	return nil
}

// CurrentTenant returns the selected tenant id, or nil when the principal
// has not selected a tenant (or there is no principal).
func CurrentTenant(ctx context.Context) *id.ID {
	if p := GetPrincipal(ctx); p != nil {
		return p.TenantID
	}
	return nil
}

// RequireTenant returns the selected tenant id or fails.
// The two failure modes are the same Unauthorized kind on the wire but
// carry distinct reasons for server-side logs.
func RequireTenant(ctx context.Context) (id.ID, error) {
	p := GetPrincipal(ctx)
	if p == nil {
		return id.Nil(), apperror.NewUnauthorized("security context is not set").
			WithDetail("reason", "no_principal")
	}
	if p.TenantID == nil {
		return id.Nil(), apperror.NewUnauthorized("no tenant selected").
			WithDetail("reason", "no_tenant_selected")
	}
	return *p.TenantID, nil
}

// RequireEmployee returns the acting employee id or fails.
func RequireEmployee(ctx context.Context) (id.ID, error) {
	p := GetPrincipal(ctx)
	if p == nil {
		return id.Nil(), apperror.NewUnauthorized("security context is not set").
			WithDetail("reason", "no_principal")
	}
	if p.EmployeeID == nil {
		return id.Nil(), apperror.NewUnauthorized("no employee bound to account").
			WithDetail("reason", "no_employee")
	}
	return *p.EmployeeID, nil
}

// HasAuthority checks if the principal carries a role or permission string.
func HasAuthority(ctx context.Context, authority string) bool {
	p := GetPrincipal(ctx)
	if p == nil {
		return false
	}
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// AccountID returns account id from context or nil UUID.
func AccountID(ctx context.Context) id.ID {
	if p := GetPrincipal(ctx); p != nil {
		return p.AccountID
	}
	return id.Nil()
}
