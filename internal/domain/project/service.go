package project

import (
	"context"
	"fmt"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/appctx"
	"taskwell/internal/core/guard"
	"taskwell/internal/core/id"
	"taskwell/internal/core/tx"
	"taskwell/pkg/logger"
)

// Service provides business logic for projects and boards.
type Service struct {
	projects  Repository
	boards    BoardRepository
	states    StateSeeder
	txManager tx.Manager
}

// NewService creates a new project service.
func NewService(projects Repository, boards BoardRepository, states StateSeeder, txManager tx.Manager) *Service {
	return &Service{
		projects:  projects,
		boards:    boards,
		states:    states,
		txManager: txManager,
	}
}

// --- Projects ---

// CreateProject creates a project in the current tenant. Project names
// are unique per tenant.
func (s *Service) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	tenantID, err := appctx.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}

	p := NewProject(tenantID, name, description)
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	exists, err := s.projects.ExistsByName(ctx, tenantID, name)
	if err != nil {
		return nil, fmt.Errorf("check project name: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate("project", "name", name)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.projects.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "project created", "project_id", p.ID)
	return p, nil
}

// GetProject resolves a project and authorizes tenant access.
func (s *Service) GetProject(ctx context.Context, projectID id.ID) (*Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := guard.ValidateEntityAccess(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects lists the current tenant's projects.
func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	tenantID, err := appctx.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.projects.ListByTenant(ctx, tenantID)
}

// UpdateProject renames a project, keeping per-tenant uniqueness.
func (s *Service) UpdateProject(ctx context.Context, projectID id.ID, name, description string) (*Project, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if name != "" && name != p.Name {
		exists, err := s.projects.ExistsByName(ctx, p.TenantID, name)
		if err != nil {
			return nil, fmt.Errorf("check project name: %w", err)
		}
		if exists {
			return nil, apperror.NewDuplicate("project", "name", name)
		}
		p.Name = name
	}
	p.Description = description

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.projects.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProject soft-deletes the project and cascades to its boards.
func (s *Service) DeleteProject(ctx context.Context, projectID id.ID) error {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.projects.SetDeletionMark(ctx, p.ID, true); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		if err := s.boards.SoftDeleteByProject(ctx, p.ID); err != nil {
			return fmt.Errorf("cascade boards: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "project deleted", "project_id", p.ID)
	return nil
}

// --- Boards ---

// CreateBoard creates a board under the project and seeds the default
// task states in the same transaction. Board names are unique per project.
func (s *Service) CreateBoard(ctx context.Context, projectID id.ID, name string) (*Board, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	b := NewBoard(p.ID, p.TenantID, name)
	if err := b.Validate(ctx); err != nil {
		return nil, err
	}

	exists, err := s.boards.ExistsByName(ctx, p.ID, name)
	if err != nil {
		return nil, fmt.Errorf("check board name: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate("board", "name", name)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.boards.Create(ctx, b); err != nil {
			return fmt.Errorf("create board: %w", err)
		}
		if err := s.states.SeedDefaults(ctx, b.ID); err != nil {
			return fmt.Errorf("seed default states: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "board created", "board_id", b.ID, "project_id", p.ID)
	return b, nil
}

// GetBoard resolves a board and authorizes tenant access through its
// project's owning tenant.
func (s *Service) GetBoard(ctx context.Context, boardID id.ID) (*Board, error) {
	b, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := guard.ValidateEntityAccess(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBoards lists the project's boards.
func (s *Service) ListBoards(ctx context.Context, projectID id.ID) ([]Board, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.boards.ListByProject(ctx, projectID)
}

// RenameBoard renames a board, keeping per-project uniqueness.
func (s *Service) RenameBoard(ctx context.Context, boardID id.ID, name string) (*Board, error) {
	if name == "" {
		return nil, apperror.NewValidation("name is required").WithDetail("field", "name")
	}

	b, err := s.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if b.Name == name {
		return b, nil
	}

	exists, err := s.boards.ExistsByName(ctx, b.ProjectID, name)
	if err != nil {
		return nil, fmt.Errorf("check board name: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate("board", "name", name)
	}

	b.Name = name
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.boards.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBoard soft-deletes a board.
func (s *Service) DeleteBoard(ctx context.Context, boardID id.ID) error {
	b, err := s.GetBoard(ctx, boardID)
	if err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.boards.SetDeletionMark(ctx, b.ID, true)
	})
}
