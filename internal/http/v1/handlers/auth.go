package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/appctx"
	"taskwell/internal/core/id"
	"taskwell/internal/domain/identity"
	"taskwell/internal/http/v1/dto"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *identity.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *identity.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	bundle, err := h.service.Register(ctx, req.ToRegisterRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, bundle)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	bundle, err := h.service.Login(ctx, req.Phone, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, bundle)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	bundle, err := h.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, bundle)
}

// SwitchTenant handles POST /auth/switch-tenant
func (h *AuthHandler) SwitchTenant(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SwitchTenantRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tenantID, err := id.Parse(req.TenantID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid tenant id"))
		return
	}

	p := appctx.GetPrincipal(ctx)
	if p == nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	bundle, err := h.service.SwitchTenant(ctx, p.AccountID, tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, bundle)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p := appctx.GetPrincipal(c.Request.Context())
	if p == nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	user := identity.UserInfo{
		AccountID:  p.AccountID,
		Phone:      p.Phone,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		EmployeeID: p.EmployeeID,
		TenantID:   p.TenantID,
		Roles:      p.Authorities,
	}
	h.OK(c, user)
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)
	public.POST("/refresh", h.Refresh)

	protected.POST("/switch-tenant", h.SwitchTenant)
	protected.GET("/me", h.Me)
}
