package dto

import (
	"taskwell/internal/domain/identity"
)

// RegisterRequest for account registration.
type RegisterRequest struct {
	Phone           string `json:"phone" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName,omitempty"`
}

// ToRegisterRequest converts to the domain request.
func (r *RegisterRequest) ToRegisterRequest() identity.RegisterRequest {
	return identity.RegisterRequest{
		Phone:           r.Phone,
		Password:        r.Password,
		PasswordConfirm: r.PasswordConfirm,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
	}
}

// LoginRequest for phone/password login.
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// SwitchTenantRequest selects the tenant for subsequent requests.
type SwitchTenantRequest struct {
	TenantID string `json:"tenantId" binding:"required,uuid"`
}
