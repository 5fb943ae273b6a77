package task

import (
	"context"
	"fmt"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/guard"
	"taskwell/internal/core/id"
	"taskwell/internal/core/tx"
	"taskwell/pkg/logger"
)

// StateService manages the per-board task-state set.
type StateService struct {
	states    StateRepository
	boards    BoardResolver
	txManager tx.Manager
}

// NewStateService creates a new task-state service.
func NewStateService(states StateRepository, boards BoardResolver, txManager tx.Manager) *StateService {
	return &StateService{
		states:    states,
		boards:    boards,
		txManager: txManager,
	}
}

// SeedDefaults creates the four default states on a new board.
// Runs inside the board-creation transaction; no tenant check here
// because the board service has already authorized the project.
func (s *StateService) SeedDefaults(ctx context.Context, boardID id.ID) error {
	for _, d := range defaultStates {
		state := NewTaskState(boardID, id.Nil(), d.Code, d.Name)
		if err := s.states.Create(ctx, state); err != nil {
			return fmt.Errorf("seed state %s: %w", d.Code, err)
		}
	}
	return nil
}

// Get resolves a state and authorizes access through its board's tenant.
func (s *StateService) Get(ctx context.Context, stateID id.ID) (*TaskState, error) {
	state, err := s.states.GetByID(ctx, stateID)
	if err != nil {
		return nil, err
	}
	if err := guard.ValidateEntityAccess(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ListByBoard lists the board's live states.
func (s *StateService) ListByBoard(ctx context.Context, boardID id.ID) ([]TaskState, error) {
	if _, err := s.boards.GetBoard(ctx, boardID); err != nil {
		return nil, err
	}
	return s.states.ListByBoard(ctx, boardID)
}

// Create adds a state to the board. The code must be unique on that
// board only; other boards may reuse it.
func (s *StateService) Create(ctx context.Context, boardID id.ID, code, name string) (*TaskState, error) {
	board, err := s.boards.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	state := NewTaskState(board.ID, board.TenantID, code, name)
	if err := state.Validate(ctx); err != nil {
		return nil, err
	}

	exists, err := s.states.ExistsByBoardAndCode(ctx, board.ID, code)
	if err != nil {
		return nil, fmt.Errorf("check state code: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate("task state", "code", code)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.states.Create(ctx, state)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "task state created", "state_id", state.ID, "board_id", board.ID)
	return state, nil
}

// CopyToBoard duplicates a state's code and name onto a different board,
// subject to uniqueness there.
func (s *StateService) CopyToBoard(ctx context.Context, stateID, targetBoardID id.ID) (*TaskState, error) {
	src, err := s.Get(ctx, stateID)
	if err != nil {
		return nil, err
	}
	if src.BoardID == targetBoardID {
		return nil, apperror.NewValidation("cannot copy state onto its own board")
	}
	return s.Create(ctx, targetBoardID, src.Code, src.Name)
}

// Update renames or re-codes a state. A code change is re-checked for
// per-board uniqueness. The board's NEW state keeps its code: it is the
// entry point for new tasks and must stay addressable.
func (s *StateService) Update(ctx context.Context, stateID id.ID, code, name string) (*TaskState, error) {
	state, err := s.Get(ctx, stateID)
	if err != nil {
		return nil, err
	}

	if code != "" && code != state.Code {
		if state.IsEntryState() {
			return nil, apperror.NewValidation("the NEW state cannot be re-coded")
		}
		exists, err := s.states.ExistsByBoardAndCode(ctx, state.BoardID, code)
		if err != nil {
			return nil, fmt.Errorf("check state code: %w", err)
		}
		if exists {
			return nil, apperror.NewDuplicate("task state", "code", code)
		}
		state.Code = code
	}
	if name != "" {
		state.Name = name
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.states.Update(ctx, state)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Delete soft-deletes a state. The NEW state can never be deleted, and
// neither can a state still referenced by live tasks; tasks that are
// themselves soft-deleted do not block.
func (s *StateService) Delete(ctx context.Context, stateID id.ID) error {
	state, err := s.Get(ctx, stateID)
	if err != nil {
		return err
	}

	if state.IsEntryState() {
		return apperror.NewValidation("the NEW state cannot be deleted").
			WithDetail("state_id", state.ID)
	}

	inUse, err := s.states.CountLiveTasksByState(ctx, state.ID)
	if err != nil {
		return fmt.Errorf("count tasks in state: %w", err)
	}
	if inUse > 0 {
		return apperror.NewValidation("state is referenced by tasks").
			WithDetail("state_id", state.ID).
			WithDetail("task_count", inUse)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.states.SetDeletionMark(ctx, state.ID, true)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "task state deleted", "state_id", state.ID)
	return nil
}
