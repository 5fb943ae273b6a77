package task

import (
	"context"
	"fmt"

	"taskwell/internal/core/appctx"
	"taskwell/internal/core/apperror"
	"taskwell/internal/core/guard"
	"taskwell/internal/core/id"
	"taskwell/internal/core/tx"
	"taskwell/pkg/logger"
)

// Service provides business logic for tasks. Every mutation appends a
// TaskAction record; append failures never fail the mutation itself.
type Service struct {
	tasks     Repository
	states    StateRepository
	actions   ActionRepository
	boards    BoardResolver
	employees EmployeeResolver
	files     FileResolver
	txManager tx.Manager
}

// NewService creates a new task service.
func NewService(
	tasks Repository,
	states StateRepository,
	actions ActionRepository,
	boards BoardResolver,
	employees EmployeeResolver,
	files FileResolver,
	txManager tx.Manager,
) *Service {
	return &Service{
		tasks:     tasks,
		states:    states,
		actions:   actions,
		boards:    boards,
		employees: employees,
		files:     files,
		txManager: txManager,
	}
}

// CreateRequest carries task creation input.
type CreateRequest struct {
	BoardID     id.ID
	Title       string
	Description string
	FileIDs     []id.ID
}

// Create creates a task on the board, always in the board's NEW state.
// The caller's employee record becomes the owner. Attached files are
// resolved through the file service so cross-tenant ids fail closed.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Task, error) {
	board, err := s.boards.GetBoard(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}

	ownerID, err := appctx.RequireEmployee(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.employees.Get(ctx, ownerID); err != nil {
		return nil, err
	}

	entryState, err := s.states.GetByBoardAndCode(ctx, board.ID, StateCodeNew)
	if err != nil {
		return nil, fmt.Errorf("resolve entry state: %w", err)
	}

	for _, fileID := range req.FileIDs {
		if _, err := s.files.Get(ctx, fileID); err != nil {
			return nil, err
		}
	}

	task := NewTask(board.ID, board.TenantID, entryState.ID, ownerID, req.Title, req.Description)
	if err := task.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.tasks.Create(ctx, task); err != nil {
			return err
		}
		for _, fileID := range req.FileIDs {
			if err := s.tasks.AttachFile(ctx, task.ID, fileID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	task.FileIDs = req.FileIDs

	s.audit(ctx, task.ID, ActionCreated, "", entryState.Code, task.Title)
	logger.Info(ctx, "task created", "task_id", task.ID, "board_id", board.ID)
	return task, nil
}

// Get resolves a task with tenant authorization and loaded relations.
func (s *Service) Get(ctx context.Context, taskID id.ID) (*Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := guard.ValidateEntityAccess(ctx, task); err != nil {
		return nil, err
	}
	if task.AssigneeIDs, err = s.tasks.ListAssignees(ctx, task.ID); err != nil {
		return nil, fmt.Errorf("load assignees: %w", err)
	}
	if task.FileIDs, err = s.tasks.ListFiles(ctx, task.ID); err != nil {
		return nil, fmt.Errorf("load files: %w", err)
	}
	return task, nil
}

// ListByBoard lists the board's live tasks.
func (s *Service) ListByBoard(ctx context.Context, boardID id.ID) ([]Task, error) {
	if _, err := s.boards.GetBoard(ctx, boardID); err != nil {
		return nil, err
	}
	return s.tasks.ListByBoard(ctx, boardID)
}

// UpdateRequest carries task update input. Version is the version the
// caller last read; a mismatch fails with a concurrent-modification error.
type UpdateRequest struct {
	TaskID      id.ID
	Title       string
	Description *string
	BoardID     *id.ID
	Version     int
}

// Update changes title, description or board. Moving to another board
// resets the task to that board's NEW state in the same transaction, so
// a task is never observable in a state of a board it does not belong to.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Task, error) {
	task, err := s.Get(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	task.Version = req.Version

	movedFrom := ""
	movedTo := ""
	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.BoardID != nil && *req.BoardID != task.BoardID {
		target, err := s.boards.GetBoard(ctx, *req.BoardID)
		if err != nil {
			return nil, err
		}
		entryState, err := s.states.GetByBoardAndCode(ctx, target.ID, StateCodeNew)
		if err != nil {
			return nil, fmt.Errorf("resolve entry state: %w", err)
		}
		movedFrom = task.BoardID.String()
		movedTo = target.ID.String()
		task.BoardID = target.ID
		task.StateID = entryState.ID
	}
	if err := task.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	if movedFrom != "" {
		s.audit(ctx, task.ID, ActionUpdated, movedFrom, movedTo, "moved to another board")
	} else {
		s.audit(ctx, task.ID, ActionUpdated, "", "", "")
	}
	return task, nil
}

// ChangeState moves the task to another state of its own board, looked
// up by code. States of other boards are unreachable by construction.
func (s *Service) ChangeState(ctx context.Context, taskID id.ID, stateCode string) (*Task, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	target, err := s.states.GetByBoardAndCode(ctx, task.BoardID, stateCode)
	if err != nil {
		return nil, err
	}
	if target.ID == task.StateID {
		return task, nil
	}

	oldState, err := s.states.GetByID(ctx, task.StateID)
	if err != nil {
		return nil, fmt.Errorf("resolve current state: %w", err)
	}

	task.StateID = target.ID
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, task.ID, ActionStateChanged, oldState.Code, target.Code, "")
	logger.Info(ctx, "task state changed",
		"task_id", task.ID, "from", oldState.Code, "to", target.Code)
	return task, nil
}

// AssignEmployee adds an assignee. The employee is resolved through the
// employee service, so an employee of another tenant fails closed.
func (s *Service) AssignEmployee(ctx context.Context, taskID, employeeID id.ID) error {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return err
	}
	emp, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return err
	}
	if task.IsAssigned(emp.ID) {
		return apperror.NewValidation("employee is already assigned").
			WithDetail("task_id", task.ID).
			WithDetail("employee_id", emp.ID)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.tasks.AddAssignee(ctx, task.ID, emp.ID)
	})
	if err != nil {
		return err
	}

	s.audit(ctx, task.ID, ActionAssigned, "", emp.ID.String(), "")
	return nil
}

// UnassignEmployee removes an assignee. Removing an employee who is not
// assigned fails with a not-found error.
func (s *Service) UnassignEmployee(ctx context.Context, taskID, employeeID id.ID) error {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return err
	}
	if !task.IsAssigned(employeeID) {
		return apperror.NewNotFound("task assignment", employeeID)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.tasks.RemoveAssignee(ctx, task.ID, employeeID)
	})
	if err != nil {
		return err
	}

	s.audit(ctx, task.ID, ActionUnassigned, employeeID.String(), "", "")
	return nil
}

// AttachFile attaches a stored file to the task.
func (s *Service) AttachFile(ctx context.Context, taskID, fileID id.ID) error {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return err
	}
	f, err := s.files.Get(ctx, fileID)
	if err != nil {
		return err
	}
	for _, existing := range task.FileIDs {
		if existing == f.ID {
			return apperror.NewValidation("file is already attached").
				WithDetail("task_id", task.ID).
				WithDetail("file_id", f.ID)
		}
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.tasks.AttachFile(ctx, task.ID, f.ID)
	})
	if err != nil {
		return err
	}

	s.audit(ctx, task.ID, ActionUpdated, "", f.ID.String(), "file attached")
	return nil
}

// Delete soft-deletes the task. The action log survives.
func (s *Service) Delete(ctx context.Context, taskID id.ID) error {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.tasks.SetDeletionMark(ctx, task.ID, true)
	})
	if err != nil {
		return err
	}

	s.audit(ctx, task.ID, ActionDeleted, "", "", "")
	logger.Info(ctx, "task deleted", "task_id", task.ID)
	return nil
}

// Actions returns the task's audit trail, oldest first.
func (s *Service) Actions(ctx context.Context, taskID id.ID) ([]TaskAction, error) {
	if _, err := s.Get(ctx, taskID); err != nil {
		return nil, err
	}
	return s.actions.ListByTask(ctx, taskID)
}

// audit appends an action record. The mutation has already committed,
// so a failed append is logged and swallowed rather than surfaced.
func (s *Service) audit(ctx context.Context, taskID id.ID, actionType ActionType, oldValue, newValue, comment string) {
	actorID, err := appctx.RequireEmployee(ctx)
	if err != nil {
		logger.Warn(ctx, "task action skipped, no actor", "task_id", taskID, "type", actionType)
		return
	}
	action := NewTaskAction(taskID, actorID, actionType, oldValue, newValue, comment)
	if err := s.actions.Append(ctx, action); err != nil {
		logger.Warn(ctx, "task action append failed",
			"task_id", taskID, "type", actionType, "error", err)
	}
}
