package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskwell/internal/core/appctx"
	"taskwell/internal/core/apperror"
	"taskwell/internal/core/id"
	"taskwell/internal/domain/auth"
	"taskwell/internal/domain/employee"
	"taskwell/internal/domain/file"
	"taskwell/internal/domain/project"
)

// --- in-memory fakes ---

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeStateRepo struct {
	states map[id.ID]*TaskState
	// liveTasks maps state id to the live task count reported.
	liveTasks map[id.ID]int
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{
		states:    make(map[id.ID]*TaskState),
		liveTasks: make(map[id.ID]int),
	}
}

func (r *fakeStateRepo) Create(ctx context.Context, state *TaskState) error {
	cp := *state
	r.states[state.ID] = &cp
	return nil
}

func (r *fakeStateRepo) GetByID(ctx context.Context, stateID id.ID) (*TaskState, error) {
	if s, ok := r.states[stateID]; ok && !s.DeletionMark {
		cp := *s
		return &cp, nil
	}
	return nil, apperror.NewNotFound("task_state", stateID)
}

func (r *fakeStateRepo) GetByBoardAndCode(ctx context.Context, boardID id.ID, code string) (*TaskState, error) {
	for _, s := range r.states {
		if s.BoardID == boardID && s.Code == code && !s.DeletionMark {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("task_state", code)
}

func (r *fakeStateRepo) ExistsByBoardAndCode(ctx context.Context, boardID id.ID, code string) (bool, error) {
	_, err := r.GetByBoardAndCode(ctx, boardID, code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *fakeStateRepo) Update(ctx context.Context, state *TaskState) error {
	cp := *state
	r.states[state.ID] = &cp
	return nil
}

func (r *fakeStateRepo) SetDeletionMark(ctx context.Context, stateID id.ID, marked bool) error {
	if s, ok := r.states[stateID]; ok {
		s.DeletionMark = marked
		return nil
	}
	return apperror.NewNotFound("task_state", stateID)
}

func (r *fakeStateRepo) ListByBoard(ctx context.Context, boardID id.ID) ([]TaskState, error) {
	var out []TaskState
	for _, s := range r.states {
		if s.BoardID == boardID && !s.DeletionMark {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeStateRepo) CountLiveTasksByState(ctx context.Context, stateID id.ID) (int, error) {
	return r.liveTasks[stateID], nil
}

type fakeTaskRepo struct {
	tasks     map[id.ID]*Task
	assignees map[id.ID][]id.ID
	files     map[id.ID][]id.ID
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		tasks:     make(map[id.ID]*Task),
		assignees: make(map[id.ID][]id.ID),
		files:     make(map[id.ID][]id.ID),
	}
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *Task) error {
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, taskID id.ID) (*Task, error) {
	if t, ok := r.tasks[taskID]; ok && !t.DeletionMark {
		cp := *t
		return &cp, nil
	}
	return nil, apperror.NewNotFound("task", taskID)
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *Task) error {
	stored, ok := r.tasks[task.ID]
	if !ok {
		return apperror.NewNotFound("task", task.ID)
	}
	if stored.Version != task.Version {
		return apperror.NewConcurrentModification("task", task.ID)
	}
	cp := *task
	cp.Version++
	r.tasks[task.ID] = &cp
	task.Version = cp.Version
	return nil
}

func (r *fakeTaskRepo) SetDeletionMark(ctx context.Context, taskID id.ID, marked bool) error {
	if t, ok := r.tasks[taskID]; ok {
		t.DeletionMark = marked
		return nil
	}
	return apperror.NewNotFound("task", taskID)
}

func (r *fakeTaskRepo) ListByBoard(ctx context.Context, boardID id.ID) ([]Task, error) {
	var out []Task
	for _, t := range r.tasks {
		if t.BoardID == boardID && !t.DeletionMark {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) ListAssignees(ctx context.Context, taskID id.ID) ([]id.ID, error) {
	return r.assignees[taskID], nil
}

func (r *fakeTaskRepo) AddAssignee(ctx context.Context, taskID, employeeID id.ID) error {
	r.assignees[taskID] = append(r.assignees[taskID], employeeID)
	return nil
}

func (r *fakeTaskRepo) RemoveAssignee(ctx context.Context, taskID, employeeID id.ID) error {
	list := r.assignees[taskID]
	for i, e := range list {
		if e == employeeID {
			r.assignees[taskID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("task assignment", employeeID)
}

func (r *fakeTaskRepo) ListFiles(ctx context.Context, taskID id.ID) ([]id.ID, error) {
	return r.files[taskID], nil
}

func (r *fakeTaskRepo) AttachFile(ctx context.Context, taskID, fileID id.ID) error {
	r.files[taskID] = append(r.files[taskID], fileID)
	return nil
}

type fakeActionRepo struct {
	actions []TaskAction
	failing bool
}

func (r *fakeActionRepo) Append(ctx context.Context, action *TaskAction) error {
	if r.failing {
		return errors.New("action store unavailable")
	}
	r.actions = append(r.actions, *action)
	return nil
}

func (r *fakeActionRepo) ListByTask(ctx context.Context, taskID id.ID) ([]TaskAction, error) {
	var out []TaskAction
	for _, a := range r.actions {
		if a.TaskID == taskID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeBoards struct {
	boards map[id.ID]*project.Board
}

func (r *fakeBoards) GetBoard(ctx context.Context, boardID id.ID) (*project.Board, error) {
	b, ok := r.boards[boardID]
	if !ok {
		return nil, apperror.NewNotFound("board", boardID)
	}
	tenantID, err := appctx.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if b.TenantID != tenantID {
		return nil, apperror.NewUnauthorized("access denied")
	}
	return b, nil
}

type fakeEmployees struct {
	employees map[id.ID]*employee.Employee
}

func (r *fakeEmployees) Get(ctx context.Context, employeeID id.ID) (*employee.Employee, error) {
	e, ok := r.employees[employeeID]
	if !ok {
		return nil, apperror.NewNotFound("employee", employeeID)
	}
	tenantID, err := appctx.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if !e.MemberOf(tenantID) {
		return nil, apperror.NewUnauthorized("access denied")
	}
	return e, nil
}

type fakeFiles struct {
	files map[id.ID]*file.File
}

func (r *fakeFiles) Get(ctx context.Context, fileID id.ID) (*file.File, error) {
	f, ok := r.files[fileID]
	if !ok {
		return nil, apperror.NewNotFound("file", fileID)
	}
	tenantID, err := appctx.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if f.TenantID != tenantID {
		return nil, apperror.NewUnauthorized("access denied")
	}
	return f, nil
}

// --- fixture ---

type fixture struct {
	svc       *Service
	stateSvc  *StateService
	states    *fakeStateRepo
	tasks     *fakeTaskRepo
	actions   *fakeActionRepo
	boards    *fakeBoards
	employees *fakeEmployees
	files     *fakeFiles

	tenantID   id.ID
	boardID    id.ID
	employeeID id.ID
	ctx        context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		states:  newFakeStateRepo(),
		tasks:   newFakeTaskRepo(),
		actions: &fakeActionRepo{},
		boards:  &fakeBoards{boards: make(map[id.ID]*project.Board)},
		employees: &fakeEmployees{
			employees: make(map[id.ID]*employee.Employee),
		},
		files:    &fakeFiles{files: make(map[id.ID]*file.File)},
		tenantID: id.New(),
	}

	board := project.NewBoard(id.New(), f.tenantID, "Sprint board")
	f.boardID = board.ID
	f.boards.boards[board.ID] = board

	emp := employee.New(id.New(), auth.PositionEmployee)
	emp.TenantIDs = []id.ID{f.tenantID}
	f.employeeID = emp.ID
	f.employees.employees[emp.ID] = emp

	f.stateSvc = NewStateService(f.states, f.boards, nopTxManager{})
	f.svc = NewService(f.tasks, f.states, f.actions, f.boards, f.employees, f.files, nopTxManager{})

	f.ctx = appctx.WithPrincipal(context.Background(), &appctx.Principal{
		AccountID:  emp.AccountID,
		TenantID:   &f.tenantID,
		EmployeeID: &f.employeeID,
	})

	require.NoError(t, f.stateSvc.SeedDefaults(f.ctx, f.boardID))
	// seeded states carry the board's tenant for guard checks
	for _, s := range f.states.states {
		s.TenantID = f.tenantID
	}
	return f
}

func (f *fixture) createTask(t *testing.T, title string) *Task {
	t.Helper()
	task, err := f.svc.Create(f.ctx, CreateRequest{BoardID: f.boardID, Title: title})
	require.NoError(t, err)
	return task
}

// --- state service tests ---

func TestStateService_SeedDefaults(t *testing.T) {
	f := newFixture(t)

	states, err := f.stateSvc.ListByBoard(f.ctx, f.boardID)
	require.NoError(t, err)
	assert.Len(t, states, 4)

	codes := make(map[string]bool)
	for _, s := range states {
		codes[s.Code] = true
	}
	for _, want := range []string{"NEW", "IN_PROGRESS", "REVIEW", "DONE"} {
		assert.True(t, codes[want], "missing default state %s", want)
	}
}

func TestStateService_Create_DuplicateCodePerBoard(t *testing.T) {
	f := newFixture(t)

	_, err := f.stateSvc.Create(f.ctx, f.boardID, "BLOCKED", "Blocked")
	require.NoError(t, err)

	_, err = f.stateSvc.Create(f.ctx, f.boardID, "BLOCKED", "Blocked again")
	assert.True(t, apperror.IsDuplicate(err))

	// the same code is fine on another board
	other := project.NewBoard(id.New(), f.tenantID, "Other board")
	f.boards.boards[other.ID] = other
	_, err = f.stateSvc.Create(f.ctx, other.ID, "BLOCKED", "Blocked")
	assert.NoError(t, err)
}

func TestStateService_Delete_EntryStateBlocked(t *testing.T) {
	f := newFixture(t)

	entry, err := f.states.GetByBoardAndCode(f.ctx, f.boardID, StateCodeNew)
	require.NoError(t, err)

	err = f.stateSvc.Delete(f.ctx, entry.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestStateService_Delete_InUseBlocked(t *testing.T) {
	f := newFixture(t)

	done, err := f.states.GetByBoardAndCode(f.ctx, f.boardID, "DONE")
	require.NoError(t, err)
	f.states.liveTasks[done.ID] = 3

	err = f.stateSvc.Delete(f.ctx, done.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	// once no live task references it, delete succeeds
	f.states.liveTasks[done.ID] = 0
	require.NoError(t, f.stateSvc.Delete(f.ctx, done.ID))

	_, err = f.stateSvc.Get(f.ctx, done.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestStateService_Update_EntryStateKeepsCode(t *testing.T) {
	f := newFixture(t)

	entry, err := f.states.GetByBoardAndCode(f.ctx, f.boardID, StateCodeNew)
	require.NoError(t, err)

	_, err = f.stateSvc.Update(f.ctx, entry.ID, "OPEN", "")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	// renaming without re-coding is allowed
	updated, err := f.stateSvc.Update(f.ctx, entry.ID, "", "Backlog")
	require.NoError(t, err)
	assert.Equal(t, StateCodeNew, updated.Code)
	assert.Equal(t, "Backlog", updated.Name)
}

func TestStateService_CopyToBoard(t *testing.T) {
	f := newFixture(t)

	src, err := f.stateSvc.Create(f.ctx, f.boardID, "BLOCKED", "Blocked")
	require.NoError(t, err)

	other := project.NewBoard(id.New(), f.tenantID, "Other board")
	f.boards.boards[other.ID] = other

	copied, err := f.stateSvc.CopyToBoard(f.ctx, src.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, copied.BoardID)
	assert.Equal(t, "BLOCKED", copied.Code)
	assert.NotEqual(t, src.ID, copied.ID)

	_, err = f.stateSvc.CopyToBoard(f.ctx, src.ID, f.boardID)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

// --- task service tests ---

func TestService_Create_StartsInEntryState(t *testing.T) {
	f := newFixture(t)

	task := f.createTask(t, "Write release notes")

	entry, err := f.states.GetByBoardAndCode(f.ctx, f.boardID, StateCodeNew)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, task.StateID)
	assert.Equal(t, f.employeeID, task.OwnerEmployeeID)

	actions, err := f.svc.Actions(f.ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionCreated, actions[0].Type)
	assert.Equal(t, f.employeeID, actions[0].ActorEmployeeID)
}

func TestService_Create_ValidatesTitle(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, CreateRequest{BoardID: f.boardID})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestService_Get_CrossTenantDenied(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "Internal task")

	otherTenant := id.New()
	otherEmployee := id.New()
	strangerCtx := appctx.WithPrincipal(context.Background(), &appctx.Principal{
		AccountID:  id.New(),
		TenantID:   &otherTenant,
		EmployeeID: &otherEmployee,
	})

	_, err := f.svc.Get(strangerCtx, task.ID)
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestService_ChangeState(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "Fix login timeout")

	updated, err := f.svc.ChangeState(f.ctx, task.ID, "IN_PROGRESS")
	require.NoError(t, err)

	inProgress, err := f.states.GetByBoardAndCode(f.ctx, f.boardID, "IN_PROGRESS")
	require.NoError(t, err)
	assert.Equal(t, inProgress.ID, updated.StateID)

	actions, err := f.svc.Actions(f.ctx, task.ID)
	require.NoError(t, err)
	last := actions[len(actions)-1]
	assert.Equal(t, ActionStateChanged, last.Type)
	assert.Equal(t, StateCodeNew, last.OldValue)
	assert.Equal(t, "IN_PROGRESS", last.NewValue)

	// unknown code on this board fails even if another board defines it
	_, err = f.svc.ChangeState(f.ctx, task.ID, "BLOCKED")
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_Update_BoardMoveResetsState(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "Migrate database")

	_, err := f.svc.ChangeState(f.ctx, task.ID, "REVIEW")
	require.NoError(t, err)

	target := project.NewBoard(id.New(), f.tenantID, "Next sprint")
	f.boards.boards[target.ID] = target
	require.NoError(t, f.stateSvc.SeedDefaults(f.ctx, target.ID))
	for _, s := range f.states.states {
		s.TenantID = f.tenantID
	}

	current, err := f.svc.Get(f.ctx, task.ID)
	require.NoError(t, err)

	moved, err := f.svc.Update(f.ctx, UpdateRequest{
		TaskID:  task.ID,
		BoardID: &target.ID,
		Version: current.Version,
	})
	require.NoError(t, err)

	entry, err := f.states.GetByBoardAndCode(f.ctx, target.ID, StateCodeNew)
	require.NoError(t, err)
	assert.Equal(t, target.ID, moved.BoardID)
	assert.Equal(t, entry.ID, moved.StateID)
}

func TestService_Update_StaleVersionConflicts(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "Ship it")

	_, err := f.svc.Update(f.ctx, UpdateRequest{
		TaskID:  task.ID,
		Title:   "Ship it today",
		Version: task.Version,
	})
	require.NoError(t, err)

	// a second writer still holding the old version loses
	_, err = f.svc.Update(f.ctx, UpdateRequest{
		TaskID:  task.ID,
		Title:   "Ship it tomorrow",
		Version: task.Version,
	})
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestService_AssignUnassign(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "Review pull request")

	colleague := employee.New(id.New(), auth.PositionEmployee)
	colleague.TenantIDs = []id.ID{f.tenantID}
	f.employees.employees[colleague.ID] = colleague

	require.NoError(t, f.svc.AssignEmployee(f.ctx, task.ID, colleague.ID))

	err := f.svc.AssignEmployee(f.ctx, task.ID, colleague.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	require.NoError(t, f.svc.UnassignEmployee(f.ctx, task.ID, colleague.ID))

	err = f.svc.UnassignEmployee(f.ctx, task.ID, colleague.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_AttachFile_DuplicateRejected(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "Write release notes")

	doc := file.NewFile(f.tenantID, "notes.md", "abc123", "text/markdown", 12)
	f.files.files[doc.ID] = doc

	require.NoError(t, f.svc.AttachFile(f.ctx, task.ID, doc.ID))

	err := f.svc.AttachFile(f.ctx, task.ID, doc.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestService_AssignEmployee_OtherTenantDenied(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "Onboarding checklist")

	outsider := employee.New(id.New(), auth.PositionEmployee)
	outsider.TenantIDs = []id.ID{id.New()}
	f.employees.employees[outsider.ID] = outsider

	err := f.svc.AssignEmployee(f.ctx, task.ID, outsider.ID)
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestService_Delete_KeepsActionLog(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "Deprecated feature cleanup")

	require.NoError(t, f.svc.Delete(f.ctx, task.ID))

	_, err := f.svc.Get(f.ctx, task.ID)
	assert.True(t, apperror.IsNotFound(err))

	// the log survives the soft delete
	actions, err := f.actions.ListByTask(f.ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, ActionDeleted, actions[1].Type)
}

func TestService_AuditFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "Resilient task")

	f.actions.failing = true
	updated, err := f.svc.ChangeState(f.ctx, task.ID, "DONE")
	require.NoError(t, err)

	done, err := f.states.GetByBoardAndCode(f.ctx, f.boardID, "DONE")
	require.NoError(t, err)
	assert.Equal(t, done.ID, updated.StateID)
}
