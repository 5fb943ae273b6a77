package task

import (
	"context"

	"taskwell/internal/core/id"
	"taskwell/internal/domain/employee"
	"taskwell/internal/domain/file"
	"taskwell/internal/domain/project"
)

// StateRepository defines persistence for task states.
// Lookups exclude deletion-marked rows; GetByID and GetByBoardAndCode
// resolve the owning tenant through board -> project.
type StateRepository interface {
	Create(ctx context.Context, state *TaskState) error
	GetByID(ctx context.Context, stateID id.ID) (*TaskState, error)
	GetByBoardAndCode(ctx context.Context, boardID id.ID, code string) (*TaskState, error)
	ExistsByBoardAndCode(ctx context.Context, boardID id.ID, code string) (bool, error)
	Update(ctx context.Context, state *TaskState) error
	SetDeletionMark(ctx context.Context, stateID id.ID, marked bool) error
	ListByBoard(ctx context.Context, boardID id.ID) ([]TaskState, error)

	// CountLiveTasksByState counts non-deleted tasks referencing the state.
	CountLiveTasksByState(ctx context.Context, stateID id.ID) (int, error)
}

// Repository defines persistence for tasks.
type Repository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, taskID id.ID) (*Task, error)

	// Update uses optimistic locking on the version column.
	Update(ctx context.Context, task *Task) error
	SetDeletionMark(ctx context.Context, taskID id.ID, marked bool) error
	ListByBoard(ctx context.Context, boardID id.ID) ([]Task, error)

	ListAssignees(ctx context.Context, taskID id.ID) ([]id.ID, error)
	AddAssignee(ctx context.Context, taskID, employeeID id.ID) error
	RemoveAssignee(ctx context.Context, taskID, employeeID id.ID) error

	ListFiles(ctx context.Context, taskID id.ID) ([]id.ID, error)
	AttachFile(ctx context.Context, taskID, fileID id.ID) error
}

// ActionRepository persists the append-only task action log.
type ActionRepository interface {
	Append(ctx context.Context, action *TaskAction) error
	ListByTask(ctx context.Context, taskID id.ID) ([]TaskAction, error)
}

// BoardResolver resolves a board with tenant authorization applied.
// Implemented by the project service.
type BoardResolver interface {
	GetBoard(ctx context.Context, boardID id.ID) (*project.Board, error)
}

// BoardResolverFunc adapts a function to BoardResolver. Useful when the
// project service is constructed after the state service.
type BoardResolverFunc func(ctx context.Context, boardID id.ID) (*project.Board, error)

// GetBoard calls f.
func (f BoardResolverFunc) GetBoard(ctx context.Context, boardID id.ID) (*project.Board, error) {
	return f(ctx, boardID)
}

// EmployeeResolver resolves an employee with tenant-membership
// authorization applied. Implemented by the employee service.
type EmployeeResolver interface {
	Get(ctx context.Context, employeeID id.ID) (*employee.Employee, error)
}

// FileResolver resolves a stored file with tenant authorization applied.
// Implemented by the file service.
type FileResolver interface {
	Get(ctx context.Context, fileID id.ID) (*file.File, error)
}
