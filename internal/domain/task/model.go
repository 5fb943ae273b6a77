// Package task provides the board-scoped task workflow: task states,
// tasks with assignment and attachments, and the append-only action log.
package task

import (
	"context"
	"time"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/id"
)

// StateCodeNew is the mandatory entry state of every board. New tasks
// always start here and the state can never be deleted.
const StateCodeNew = "NEW"

// defaultStates are seeded onto every freshly created board.
var defaultStates = []struct {
	Code string
	Name string
}{
	{StateCodeNew, "New"},
	{"IN_PROGRESS", "In progress"},
	{"REVIEW", "Review"},
	{"DONE", "Done"},
}

// TaskState is a named workflow stage owned by exactly one board.
// The (board, code) pair is unique; a code is not globally unique.
// TenantID is resolved through board -> project on load.
type TaskState struct {
	ID           id.ID     `db:"id" json:"id"`
	BoardID      id.ID     `db:"board_id" json:"boardId"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
	DeletionMark bool      `db:"deletion_mark" json:"-"`
	Version      int       `db:"version" json:"version"`

	TenantID id.ID `db:"tenant_id" json:"-"`
}

// NewTaskState creates a state on the board.
func NewTaskState(boardID, tenantID id.ID, code, name string) *TaskState {
	now := time.Now().UTC()
	return &TaskState{
		ID:        id.New(),
		BoardID:   boardID,
		TenantID:  tenantID,
		Code:      code,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// Validate checks state invariants.
func (s *TaskState) Validate(ctx context.Context) error {
	if s.Code == "" {
		return apperror.NewValidation("code is required").WithDetail("field", "code")
	}
	if s.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	return nil
}

// IsEntryState reports whether this is the board's NEW state.
func (s *TaskState) IsEntryState() bool {
	return s.Code == StateCodeNew
}

// OwningTenant implements guard.TenantOwned.
func (s *TaskState) OwningTenant() *id.ID { return &s.TenantID }

// EntityName implements guard.TenantOwned.
func (s *TaskState) EntityName() string { return "task_state" }

// EntityID implements guard.TenantOwned.
func (s *TaskState) EntityID() id.ID { return s.ID }

// Task is owned by exactly one board and occupies exactly one of that
// board's states. Version implements optimistic concurrency: a stale
// update loses instead of overwriting.
type Task struct {
	ID              id.ID     `db:"id" json:"id"`
	BoardID         id.ID     `db:"board_id" json:"boardId"`
	StateID         id.ID     `db:"state_id" json:"stateId"`
	Title           string    `db:"title" json:"title"`
	Description     string    `db:"description" json:"description,omitempty"`
	OwnerEmployeeID id.ID     `db:"owner_employee_id" json:"ownerEmployeeId"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
	DeletionMark    bool      `db:"deletion_mark" json:"-"`
	Version         int       `db:"version" json:"version"`

	TenantID id.ID `db:"tenant_id" json:"-"`

	// Loaded relations
	AssigneeIDs []id.ID `db:"-" json:"assigneeIds,omitempty"`
	FileIDs     []id.ID `db:"-" json:"fileIds,omitempty"`
}

// NewTask creates a task on the board in the given state.
func NewTask(boardID, tenantID, stateID, ownerEmployeeID id.ID, title, description string) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:              id.New(),
		BoardID:         boardID,
		TenantID:        tenantID,
		StateID:         stateID,
		Title:           title,
		Description:     description,
		OwnerEmployeeID: ownerEmployeeID,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
	}
}

// Validate checks task invariants.
func (t *Task) Validate(ctx context.Context) error {
	if t.Title == "" {
		return apperror.NewValidation("title is required").WithDetail("field", "title")
	}
	if id.IsNil(t.BoardID) {
		return apperror.NewValidation("board is required").WithDetail("field", "boardId")
	}
	return nil
}

// IsAssigned reports whether the employee is already an assignee.
func (t *Task) IsAssigned(employeeID id.ID) bool {
	for _, a := range t.AssigneeIDs {
		if a == employeeID {
			return true
		}
	}
	return false
}

// OwningTenant implements guard.TenantOwned.
func (t *Task) OwningTenant() *id.ID { return &t.TenantID }

// EntityName implements guard.TenantOwned.
func (t *Task) EntityName() string { return "task" }

// EntityID implements guard.TenantOwned.
func (t *Task) EntityID() id.ID { return t.ID }

// ActionType enumerates audited task mutations.
type ActionType string

const (
	ActionCreated      ActionType = "created"
	ActionUpdated      ActionType = "updated"
	ActionStateChanged ActionType = "state_changed"
	ActionAssigned     ActionType = "assigned"
	ActionUnassigned   ActionType = "unassigned"
	ActionDeleted      ActionType = "deleted"
)

// TaskAction is an immutable audit record of a task mutation.
// Appended alongside the mutation; never updated or deleted.
type TaskAction struct {
	ID              id.ID      `db:"id" json:"id"`
	TaskID          id.ID      `db:"task_id" json:"taskId"`
	ActorEmployeeID id.ID      `db:"actor_employee_id" json:"actorEmployeeId"`
	Type            ActionType `db:"type" json:"type"`
	OldValue        string     `db:"old_value" json:"oldValue,omitempty"`
	NewValue        string     `db:"new_value" json:"newValue,omitempty"`
	Comment         string     `db:"comment" json:"comment,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
}

// NewTaskAction creates an audit record.
func NewTaskAction(taskID, actorEmployeeID id.ID, actionType ActionType, oldValue, newValue, comment string) *TaskAction {
	return &TaskAction{
		ID:              id.New(),
		TaskID:          taskID,
		ActorEmployeeID: actorEmployeeID,
		Type:            actionType,
		OldValue:        oldValue,
		NewValue:        newValue,
		Comment:         comment,
		CreatedAt:       time.Now().UTC(),
	}
}
