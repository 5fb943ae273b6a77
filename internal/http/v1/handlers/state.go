package handlers

import (
	"github.com/gin-gonic/gin"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/id"
	"taskwell/internal/domain/task"
	"taskwell/internal/http/v1/dto"
)

// StateHandler handles task-state endpoints.
type StateHandler struct {
	*BaseHandler
	service *task.StateService
}

// NewStateHandler creates a new task-state handler.
func NewStateHandler(base *BaseHandler, service *task.StateService) *StateHandler {
	return &StateHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /boards/:id/states
func (h *StateHandler) Create(c *gin.Context) {
	boardID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateStateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	state, err := h.service.Create(c.Request.Context(), boardID, req.Code, req.Name)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, state.ID.String())
}

// ListByBoard handles GET /boards/:id/states
func (h *StateHandler) ListByBoard(c *gin.Context) {
	boardID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	states, err := h.service.ListByBoard(c.Request.Context(), boardID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.List(c, states, len(states))
}

// Get handles GET /states/:id
func (h *StateHandler) Get(c *gin.Context) {
	stateID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	state, err := h.service.Get(c.Request.Context(), stateID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, state)
}

// Update handles PUT /states/:id
func (h *StateHandler) Update(c *gin.Context) {
	stateID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateStateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	state, err := h.service.Update(c.Request.Context(), stateID, req.Code, req.Name)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, state)
}

// Copy handles POST /states/:id/copy
func (h *StateHandler) Copy(c *gin.Context) {
	stateID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CopyStateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	targetBoardID, err := id.Parse(req.TargetBoardID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid target board id"))
		return
	}

	state, err := h.service.CopyToBoard(c.Request.Context(), stateID, targetBoardID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, state.ID.String())
}

// Delete handles DELETE /states/:id
func (h *StateHandler) Delete(c *gin.Context) {
	stateID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), stateID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
