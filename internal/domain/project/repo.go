package project

import (
	"context"

	"taskwell/internal/core/id"
)

// Repository defines persistence for projects.
// All lookups exclude deletion-marked rows.
type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, projectID id.ID) (*Project, error)
	ExistsByName(ctx context.Context, tenantID id.ID, name string) (bool, error)
	Update(ctx context.Context, project *Project) error
	SetDeletionMark(ctx context.Context, projectID id.ID, marked bool) error
	ListByTenant(ctx context.Context, tenantID id.ID) ([]Project, error)

	// SoftDeleteByTenant cascades a tenant delete to its projects.
	SoftDeleteByTenant(ctx context.Context, tenantID id.ID) error
}

// BoardRepository defines persistence for boards. GetByID and
// ListByProject resolve the owning tenant through the project join.
type BoardRepository interface {
	Create(ctx context.Context, board *Board) error
	GetByID(ctx context.Context, boardID id.ID) (*Board, error)
	ExistsByName(ctx context.Context, projectID id.ID, name string) (bool, error)
	Update(ctx context.Context, board *Board) error
	SetDeletionMark(ctx context.Context, boardID id.ID, marked bool) error
	ListByProject(ctx context.Context, projectID id.ID) ([]Board, error)

	// SoftDeleteByProject cascades a project delete to its boards.
	SoftDeleteByProject(ctx context.Context, projectID id.ID) error
}

// StateSeeder creates the default task states on a freshly created
// board. Implemented by the task-state service.
type StateSeeder interface {
	SeedDefaults(ctx context.Context, boardID id.ID) error
}
