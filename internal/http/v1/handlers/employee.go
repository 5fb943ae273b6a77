package handlers

import (
	"github.com/gin-gonic/gin"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/appctx"
	"taskwell/internal/core/id"
	"taskwell/internal/domain/auth"
	"taskwell/internal/domain/employee"
	"taskwell/internal/http/v1/dto"
)

// EmployeeHandler handles employee endpoints.
type EmployeeHandler struct {
	*BaseHandler
	service *employee.Service
}

// NewEmployeeHandler creates a new employee handler.
func NewEmployeeHandler(base *BaseHandler, service *employee.Service) *EmployeeHandler {
	return &EmployeeHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /employees
func (h *EmployeeHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateEmployeeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	accountID, err := id.Parse(req.AccountID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid account id"))
		return
	}
	tenantID, err := appctx.RequireTenant(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	e, err := h.service.Create(ctx, accountID, tenantID, auth.Position(req.Position))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, e.ID.String())
}

// Get handles GET /employees/:id
func (h *EmployeeHandler) Get(c *gin.Context) {
	employeeID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	e, err := h.service.Get(c.Request.Context(), employeeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, e)
}

// ListByTenant handles GET /employees
func (h *EmployeeHandler) ListByTenant(c *gin.Context) {
	employees, err := h.service.ListByTenant(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.List(c, employees, len(employees))
}

// SetPosition handles PUT /employees/:id/position
func (h *EmployeeHandler) SetPosition(c *gin.Context) {
	employeeID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.SetPositionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	e, err := h.service.SetPosition(c.Request.Context(), employeeID, auth.Position(req.Position))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, e)
}

// AddToTenant handles POST /employees/:id/tenants
func (h *EmployeeHandler) AddToTenant(c *gin.Context) {
	employeeID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AddEmployeeToTenantRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tenantID, err := id.Parse(req.TenantID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid tenant id"))
		return
	}

	if err := h.service.AddToTenant(c.Request.Context(), employeeID, tenantID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "employee added to tenant")
}

// Deactivate handles DELETE /employees/:id
func (h *EmployeeHandler) Deactivate(c *gin.Context) {
	employeeID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), employeeID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
