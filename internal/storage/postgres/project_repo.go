package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"taskwell/internal/core/id"
	"taskwell/internal/domain/project"
)

// ProjectRepo implements project.Repository.
type ProjectRepo struct {
	*BaseRepo[*project.Project]
}

var _ project.Repository = (*ProjectRepo)(nil)

// NewProjectRepo creates a project repository.
func NewProjectRepo(txManager *TxManager) *ProjectRepo {
	return &ProjectRepo{
		BaseRepo: NewBaseRepo(txManager, "projects", func() *project.Project { return &project.Project{} }),
	}
}

// ExistsByName checks name uniqueness among the tenant's live projects.
func (r *ProjectRepo) ExistsByName(ctx context.Context, tenantID id.ID, name string) (bool, error) {
	return r.ExistsWhere(ctx,
		squirrel.Eq{"tenant_id": tenantID},
		squirrel.Eq{"name": name},
		squirrel.Eq{"deletion_mark": false},
	)
}

// ListByTenant lists the tenant's live projects ordered by name.
func (r *ProjectRepo) ListByTenant(ctx context.Context, tenantID id.ID) ([]project.Project, error) {
	var projects []project.Project
	q := r.BaseSelect().
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name")
	err := r.Select(ctx, &projects, q)
	return projects, err
}

// SoftDeleteByTenant cascades a tenant delete to its projects.
func (r *ProjectRepo) SoftDeleteByTenant(ctx context.Context, tenantID id.ID) error {
	sql := `
		UPDATE projects
		SET deletion_mark = true, version = version + 1
		WHERE tenant_id = $1 AND deletion_mark = false
	`
	if _, err := r.Querier(ctx).Exec(ctx, sql, tenantID); err != nil {
		return fmt.Errorf("soft delete projects: %w", err)
	}
	return nil
}

// BoardRepo implements project.BoardRepository. The owning tenant is
// not a column of the boards table; it is resolved through the project
// join on every read.
type BoardRepo struct {
	*BaseRepo[*project.Board]
}

var _ project.BoardRepository = (*BoardRepo)(nil)

// NewBoardRepo creates a board repository.
func NewBoardRepo(txManager *TxManager) *BoardRepo {
	base := NewBaseRepo(txManager, "boards", func() *project.Board { return &project.Board{} }).
		WithoutWriteColumns("tenant_id")
	return &BoardRepo{BaseRepo: base}
}

// joinedSelect selects board columns plus the project's tenant id.
func (r *BoardRepo) joinedSelect() squirrel.SelectBuilder {
	cols := make([]string, 0, len(r.selectCols))
	for _, c := range r.selectCols {
		if c == "tenant_id" {
			cols = append(cols, "p.tenant_id AS tenant_id")
			continue
		}
		cols = append(cols, "b."+c)
	}
	return r.Builder().
		Select(cols...).
		From("boards b").
		Join("projects p ON p.id = b.project_id")
}

// GetByID retrieves a live board with its owning tenant resolved.
func (r *BoardRepo) GetByID(ctx context.Context, boardID id.ID) (*project.Board, error) {
	q := r.joinedSelect().
		Where(squirrel.Eq{"b.id": boardID}).
		Where(squirrel.Eq{"b.deletion_mark": false}).
		Limit(1)
	return r.FindOne(ctx, q, boardID.String())
}

// ExistsByName checks name uniqueness among the project's live boards.
func (r *BoardRepo) ExistsByName(ctx context.Context, projectID id.ID, name string) (bool, error) {
	return r.ExistsWhere(ctx,
		squirrel.Eq{"project_id": projectID},
		squirrel.Eq{"name": name},
		squirrel.Eq{"deletion_mark": false},
	)
}

// ListByProject lists the project's live boards ordered by name.
func (r *BoardRepo) ListByProject(ctx context.Context, projectID id.ID) ([]project.Board, error) {
	var boards []project.Board
	q := r.joinedSelect().
		Where(squirrel.Eq{"b.project_id": projectID}).
		Where(squirrel.Eq{"b.deletion_mark": false}).
		OrderBy("b.name")
	err := r.Select(ctx, &boards, q)
	return boards, err
}

// SoftDeleteByProject cascades a project delete to its boards.
func (r *BoardRepo) SoftDeleteByProject(ctx context.Context, projectID id.ID) error {
	sql := `
		UPDATE boards
		SET deletion_mark = true, version = version + 1
		WHERE project_id = $1 AND deletion_mark = false
	`
	if _, err := r.Querier(ctx).Exec(ctx, sql, projectID); err != nil {
		return fmt.Errorf("soft delete boards: %w", err)
	}
	return nil
}
