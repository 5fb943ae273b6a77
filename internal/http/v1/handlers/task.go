package handlers

import (
	"github.com/gin-gonic/gin"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/id"
	"taskwell/internal/domain/task"
	"taskwell/internal/http/v1/dto"
)

// TaskHandler handles task endpoints.
type TaskHandler struct {
	*BaseHandler
	service *task.Service
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(base *BaseHandler, service *task.Service) *TaskHandler {
	return &TaskHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}

	boardID, err := id.Parse(req.BoardID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid board id"))
		return
	}
	fileIDs, err := parseIDs(req.FileIDs)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid file id"))
		return
	}

	t, err := h.service.Create(c.Request.Context(), task.CreateRequest{
		BoardID:     boardID,
		Title:       req.Title,
		Description: req.Description,
		FileIDs:     fileIDs,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, t.ID.String())
}

// Get handles GET /tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	taskID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	t, err := h.service.Get(c.Request.Context(), taskID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// ListByBoard handles GET /boards/:id/tasks
func (h *TaskHandler) ListByBoard(c *gin.Context) {
	boardID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	tasks, err := h.service.ListByBoard(c.Request.Context(), boardID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.List(c, tasks, len(tasks))
}

// Update handles PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	taskID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}

	update := task.UpdateRequest{
		TaskID:      taskID,
		Title:       req.Title,
		Description: req.Description,
		Version:     req.Version,
	}
	if req.BoardID != nil {
		boardID, err := id.Parse(*req.BoardID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid board id"))
			return
		}
		update.BoardID = &boardID
	}

	t, err := h.service.Update(c.Request.Context(), update)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// ChangeState handles PUT /tasks/:id/state
func (h *TaskHandler) ChangeState(c *gin.Context) {
	taskID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ChangeTaskStateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t, err := h.service.ChangeState(c.Request.Context(), taskID, req.StateCode)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// Assign handles POST /tasks/:id/assignees
func (h *TaskHandler) Assign(c *gin.Context) {
	taskID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AssignEmployeeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	employeeID, err := id.Parse(req.EmployeeID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid employee id"))
		return
	}

	if err := h.service.AssignEmployee(c.Request.Context(), taskID, employeeID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "employee assigned")
}

// Unassign handles DELETE /tasks/:id/assignees/:employeeId
func (h *TaskHandler) Unassign(c *gin.Context) {
	taskID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	employeeID, ok := h.ParseIDParam(c, "employeeId")
	if !ok {
		return
	}

	if err := h.service.UnassignEmployee(c.Request.Context(), taskID, employeeID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// AttachFile handles POST /tasks/:id/files
func (h *TaskHandler) AttachFile(c *gin.Context) {
	taskID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AttachFileRequest
	if !h.BindJSON(c, &req) {
		return
	}

	fileID, err := id.Parse(req.FileID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid file id"))
		return
	}

	if err := h.service.AttachFile(c.Request.Context(), taskID, fileID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "file attached")
}

// Delete handles DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), taskID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Actions handles GET /tasks/:id/actions
func (h *TaskHandler) Actions(c *gin.Context) {
	taskID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	actions, err := h.service.Actions(c.Request.Context(), taskID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.List(c, actions, len(actions))
}

func parseIDs(raw []string) ([]id.ID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]id.ID, 0, len(raw))
	for _, s := range raw {
		parsed, err := id.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, parsed)
	}
	return ids, nil
}
