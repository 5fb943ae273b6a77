package dto

// CreateTenantRequest for tenant registration.
type CreateTenantRequest struct {
	Name string `json:"name" binding:"required"`
	Plan string `json:"plan" binding:"required"`
}

// ChangePlanRequest switches the subscription plan.
type ChangePlanRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// RenameTenantRequest renames the tenant.
type RenameTenantRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateEmployeeRequest binds an account to the tenant as an employee.
type CreateEmployeeRequest struct {
	AccountID string `json:"accountId" binding:"required,uuid"`
	Position  string `json:"position" binding:"required"`
}

// SetPositionRequest changes an employee's rank.
type SetPositionRequest struct {
	Position string `json:"position" binding:"required"`
}

// AddEmployeeToTenantRequest grants membership in another tenant.
type AddEmployeeToTenantRequest struct {
	TenantID string `json:"tenantId" binding:"required,uuid"`
}
