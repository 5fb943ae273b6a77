package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"taskwell/internal/core/id"
	"taskwell/internal/domain/task"
)

// TaskStateRepo implements task.StateRepository. The owning tenant is
// resolved through board -> project on every read.
type TaskStateRepo struct {
	*BaseRepo[*task.TaskState]
}

var _ task.StateRepository = (*TaskStateRepo)(nil)

// NewTaskStateRepo creates a task-state repository.
func NewTaskStateRepo(txManager *TxManager) *TaskStateRepo {
	base := NewBaseRepo(txManager, "task_states", func() *task.TaskState { return &task.TaskState{} }).
		WithoutWriteColumns("tenant_id")
	return &TaskStateRepo{BaseRepo: base}
}

func (r *TaskStateRepo) joinedSelect() squirrel.SelectBuilder {
	cols := make([]string, 0, len(r.selectCols))
	for _, c := range r.selectCols {
		if c == "tenant_id" {
			cols = append(cols, "p.tenant_id AS tenant_id")
			continue
		}
		cols = append(cols, "s."+c)
	}
	return r.Builder().
		Select(cols...).
		From("task_states s").
		Join("boards b ON b.id = s.board_id").
		Join("projects p ON p.id = b.project_id")
}

// Create inserts the state; a (board, code) collision becomes a
// duplicate error.
func (r *TaskStateRepo) Create(ctx context.Context, state *task.TaskState) error {
	if err := r.BaseRepo.Create(ctx, state); err != nil {
		return translateInsertError(err, "task state", "code", state.Code)
	}
	return nil
}

// GetByID retrieves a live state with its owning tenant resolved.
func (r *TaskStateRepo) GetByID(ctx context.Context, stateID id.ID) (*task.TaskState, error) {
	q := r.joinedSelect().
		Where(squirrel.Eq{"s.id": stateID}).
		Where(squirrel.Eq{"s.deletion_mark": false}).
		Limit(1)
	return r.FindOne(ctx, q, stateID.String())
}

// GetByBoardAndCode retrieves a live state by its board-scoped code.
func (r *TaskStateRepo) GetByBoardAndCode(ctx context.Context, boardID id.ID, code string) (*task.TaskState, error) {
	q := r.joinedSelect().
		Where(squirrel.Eq{"s.board_id": boardID}).
		Where(squirrel.Eq{"s.code": code}).
		Where(squirrel.Eq{"s.deletion_mark": false}).
		Limit(1)
	return r.FindOne(ctx, q, code)
}

// ExistsByBoardAndCode checks code uniqueness on the board.
func (r *TaskStateRepo) ExistsByBoardAndCode(ctx context.Context, boardID id.ID, code string) (bool, error) {
	return r.ExistsWhere(ctx,
		squirrel.Eq{"board_id": boardID},
		squirrel.Eq{"code": code},
		squirrel.Eq{"deletion_mark": false},
	)
}

// ListByBoard lists the board's live states in creation order.
func (r *TaskStateRepo) ListByBoard(ctx context.Context, boardID id.ID) ([]task.TaskState, error) {
	var states []task.TaskState
	q := r.joinedSelect().
		Where(squirrel.Eq{"s.board_id": boardID}).
		Where(squirrel.Eq{"s.deletion_mark": false}).
		OrderBy("s.created_at")
	err := r.Select(ctx, &states, q)
	return states, err
}

// CountLiveTasksByState counts non-deleted tasks referencing the state.
func (r *TaskStateRepo) CountLiveTasksByState(ctx context.Context, stateID id.ID) (int, error) {
	sql := `SELECT COUNT(*) FROM tasks WHERE state_id = $1 AND deletion_mark = false`
	var count int
	if err := r.Querier(ctx).QueryRow(ctx, sql, stateID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tasks by state: %w", err)
	}
	return count, nil
}

// TaskRepo implements task.Repository. Assignees and attached files
// live in link tables and are loaded separately.
type TaskRepo struct {
	*BaseRepo[*task.Task]
}

var _ task.Repository = (*TaskRepo)(nil)

// NewTaskRepo creates a task repository.
func NewTaskRepo(txManager *TxManager) *TaskRepo {
	base := NewBaseRepo(txManager, "tasks", func() *task.Task { return &task.Task{} }).
		WithoutWriteColumns("tenant_id")
	return &TaskRepo{BaseRepo: base}
}

func (r *TaskRepo) joinedSelect() squirrel.SelectBuilder {
	cols := make([]string, 0, len(r.selectCols))
	for _, c := range r.selectCols {
		if c == "tenant_id" {
			cols = append(cols, "p.tenant_id AS tenant_id")
			continue
		}
		cols = append(cols, "t."+c)
	}
	return r.Builder().
		Select(cols...).
		From("tasks t").
		Join("boards b ON b.id = t.board_id").
		Join("projects p ON p.id = b.project_id")
}

// GetByID retrieves a live task with its owning tenant resolved.
func (r *TaskRepo) GetByID(ctx context.Context, taskID id.ID) (*task.Task, error) {
	q := r.joinedSelect().
		Where(squirrel.Eq{"t.id": taskID}).
		Where(squirrel.Eq{"t.deletion_mark": false}).
		Limit(1)
	return r.FindOne(ctx, q, taskID.String())
}

// ListByBoard lists the board's live tasks, newest first.
func (r *TaskRepo) ListByBoard(ctx context.Context, boardID id.ID) ([]task.Task, error) {
	var tasks []task.Task
	q := r.joinedSelect().
		Where(squirrel.Eq{"t.board_id": boardID}).
		Where(squirrel.Eq{"t.deletion_mark": false}).
		OrderBy("t.created_at DESC")
	err := r.Select(ctx, &tasks, q)
	return tasks, err
}

// ListAssignees returns the assigned employee ids.
func (r *TaskRepo) ListAssignees(ctx context.Context, taskID id.ID) ([]id.ID, error) {
	return r.listLinked(ctx, "task_assignees", "employee_id", taskID)
}

// AddAssignee links an employee to the task. Idempotent.
func (r *TaskRepo) AddAssignee(ctx context.Context, taskID, employeeID id.ID) error {
	sql := `
		INSERT INTO task_assignees (task_id, employee_id)
		VALUES ($1, $2)
		ON CONFLICT (task_id, employee_id) DO NOTHING
	`
	if _, err := r.Querier(ctx).Exec(ctx, sql, taskID, employeeID); err != nil {
		return fmt.Errorf("add assignee: %w", err)
	}
	return nil
}

// RemoveAssignee unlinks an employee from the task.
func (r *TaskRepo) RemoveAssignee(ctx context.Context, taskID, employeeID id.ID) error {
	sql := `DELETE FROM task_assignees WHERE task_id = $1 AND employee_id = $2`
	if _, err := r.Querier(ctx).Exec(ctx, sql, taskID, employeeID); err != nil {
		return fmt.Errorf("remove assignee: %w", err)
	}
	return nil
}

// ListFiles returns the attached file ids.
func (r *TaskRepo) ListFiles(ctx context.Context, taskID id.ID) ([]id.ID, error) {
	return r.listLinked(ctx, "task_files", "file_id", taskID)
}

// AttachFile links a stored file to the task. Idempotent.
func (r *TaskRepo) AttachFile(ctx context.Context, taskID, fileID id.ID) error {
	sql := `
		INSERT INTO task_files (task_id, file_id)
		VALUES ($1, $2)
		ON CONFLICT (task_id, file_id) DO NOTHING
	`
	if _, err := r.Querier(ctx).Exec(ctx, sql, taskID, fileID); err != nil {
		return fmt.Errorf("attach file: %w", err)
	}
	return nil
}

func (r *TaskRepo) listLinked(ctx context.Context, table, column string, taskID id.ID) ([]id.ID, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE task_id = $1 ORDER BY %s`, column, table, column)

	rows, err := r.Querier(ctx).Query(ctx, sql, taskID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var ids []id.ID
	for rows.Next() {
		var linked id.ID
		if err := rows.Scan(&linked); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		ids = append(ids, linked)
	}
	return ids, rows.Err()
}
