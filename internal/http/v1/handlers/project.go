package handlers

import (
	"github.com/gin-gonic/gin"

	"taskwell/internal/domain/project"
	"taskwell/internal/http/v1/dto"
)

// ProjectHandler handles project and board endpoints.
type ProjectHandler struct {
	*BaseHandler
	service *project.Service
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(base *BaseHandler, service *project.Service) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler: base,
		service:     service,
	}
}

// --- Projects ---

// Create handles POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.CreateProject(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, p.ID.String())
}

// Get handles GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetProject(c.Request.Context(), projectID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.service.ListProjects(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.List(c, projects, len(projects))
}

// Update handles PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.UpdateProject(c.Request.Context(), projectID, req.Name, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Delete handles DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteProject(c.Request.Context(), projectID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// --- Boards ---

// CreateBoard handles POST /projects/:id/boards
func (h *ProjectHandler) CreateBoard(c *gin.Context) {
	projectID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateBoardRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.service.CreateBoard(c.Request.Context(), projectID, req.Name)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, b.ID.String())
}

// ListBoards handles GET /projects/:id/boards
func (h *ProjectHandler) ListBoards(c *gin.Context) {
	projectID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	boards, err := h.service.ListBoards(c.Request.Context(), projectID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.List(c, boards, len(boards))
}

// GetBoard handles GET /boards/:id
func (h *ProjectHandler) GetBoard(c *gin.Context) {
	boardID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	b, err := h.service.GetBoard(c.Request.Context(), boardID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, b)
}

// RenameBoard handles PUT /boards/:id
func (h *ProjectHandler) RenameBoard(c *gin.Context) {
	boardID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.RenameBoardRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.service.RenameBoard(c.Request.Context(), boardID, req.Name)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, b)
}

// DeleteBoard handles DELETE /boards/:id
func (h *ProjectHandler) DeleteBoard(c *gin.Context) {
	boardID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteBoard(c.Request.Context(), boardID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
