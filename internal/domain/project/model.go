// Package project provides Projects and their Boards.
// A project is strictly owned by one tenant, a board by one project;
// deleting a tenant cascades a soft delete to projects, and a project
// to its boards.
package project

import (
	"context"
	"time"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/id"
)

// Project is a tenant-owned container of boards.
type Project struct {
	ID           id.ID     `db:"id" json:"id"`
	TenantID     id.ID     `db:"tenant_id" json:"tenantId"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
	DeletionMark bool      `db:"deletion_mark" json:"-"`
	Version      int       `db:"version" json:"version"`
}

// NewProject creates a project owned by the tenant.
func NewProject(tenantID id.ID, name, description string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:          id.New(),
		TenantID:    tenantID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
}

// Validate checks project invariants.
func (p *Project) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if id.IsNil(p.TenantID) {
		return apperror.NewValidation("tenant is required").WithDetail("field", "tenantId")
	}
	return nil
}

// OwningTenant implements guard.TenantOwned.
func (p *Project) OwningTenant() *id.ID { return &p.TenantID }

// EntityName implements guard.TenantOwned.
func (p *Project) EntityName() string { return "project" }

// EntityID implements guard.TenantOwned.
func (p *Project) EntityID() id.ID { return p.ID }

// Board is a project-owned task board. TenantID is resolved through the
// owning project on load; it is not a column of the boards table.
type Board struct {
	ID           id.ID     `db:"id" json:"id"`
	ProjectID    id.ID     `db:"project_id" json:"projectId"`
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
	DeletionMark bool      `db:"deletion_mark" json:"-"`
	Version      int       `db:"version" json:"version"`

	TenantID id.ID `db:"tenant_id" json:"tenantId"`
}

// NewBoard creates a board owned by the project.
func NewBoard(projectID, tenantID id.ID, name string) *Board {
	now := time.Now().UTC()
	return &Board{
		ID:        id.New(),
		ProjectID: projectID,
		TenantID:  tenantID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// Validate checks board invariants.
func (b *Board) Validate(ctx context.Context) error {
	if b.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if id.IsNil(b.ProjectID) {
		return apperror.NewValidation("project is required").WithDetail("field", "projectId")
	}
	return nil
}

// OwningTenant implements guard.TenantOwned.
func (b *Board) OwningTenant() *id.ID { return &b.TenantID }

// EntityName implements guard.TenantOwned.
func (b *Board) EntityName() string { return "board" }

// EntityID implements guard.TenantOwned.
func (b *Board) EntityID() id.ID { return b.ID }
