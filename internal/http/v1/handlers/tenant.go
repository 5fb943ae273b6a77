package handlers

import (
	"github.com/gin-gonic/gin"

	"taskwell/internal/domain/tenant"
	"taskwell/internal/http/v1/dto"
)

// TenantHandler handles tenant endpoints.
type TenantHandler struct {
	*BaseHandler
	service *tenant.Service
}

// NewTenantHandler creates a new tenant handler.
func NewTenantHandler(base *BaseHandler, service *tenant.Service) *TenantHandler {
	return &TenantHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /tenants
func (h *TenantHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateTenantRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t, err := h.service.Create(ctx, req.Name, tenant.Plan(req.Plan))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, t.ID.String())
}

// Get handles GET /tenants/:id
func (h *TenantHandler) Get(c *gin.Context) {
	tenantID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	t, err := h.service.Get(c.Request.Context(), tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// Rename handles PUT /tenants/:id
func (h *TenantHandler) Rename(c *gin.Context) {
	tenantID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.RenameTenantRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t, err := h.service.Rename(c.Request.Context(), tenantID, req.Name)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// ChangePlan handles PUT /tenants/:id/plan
func (h *TenantHandler) ChangePlan(c *gin.Context) {
	tenantID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ChangePlanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t, err := h.service.ChangePlan(c.Request.Context(), tenantID, tenant.Plan(req.Plan))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// Delete handles DELETE /tenants/:id
func (h *TenantHandler) Delete(c *gin.Context) {
	tenantID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), tenantID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
