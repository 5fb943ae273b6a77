package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskwell/internal/core/apperror"
	"taskwell/internal/domain/file"
)

// maxUploadSize caps file uploads at 32 MiB.
const maxUploadSize = 32 << 20

// FileHandler handles file endpoints.
type FileHandler struct {
	*BaseHandler
	service *file.Service
}

// NewFileHandler creates a new file handler.
func NewFileHandler(base *BaseHandler, service *file.Service) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Upload handles POST /files as multipart form with a "file" part.
func (h *FileHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("missing file part").WithDetail("error", err.Error()))
		return
	}
	if header.Size > maxUploadSize {
		h.Error(c, apperror.NewValidation("file too large").
			WithDetail("max_bytes", maxUploadSize))
		return
	}

	src, err := header.Open()
	if err != nil {
		h.Error(c, apperror.NewValidation("unreadable file part"))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		h.Error(c, fmt.Errorf("read upload: %w", err))
		return
	}
	if int64(len(data)) > maxUploadSize {
		h.Error(c, apperror.NewValidation("file too large").
			WithDetail("max_bytes", maxUploadSize))
		return
	}

	f, err := h.service.Upload(c.Request.Context(),
		header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, f)
}

// Get handles GET /files/:id (metadata only).
func (h *FileHandler) Get(c *gin.Context) {
	fileID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	f, err := h.service.Get(c.Request.Context(), fileID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, f)
}

// Download handles GET /files/:id/content.
func (h *FileHandler) Download(c *gin.Context) {
	fileID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	f, data, err := h.service.Download(c.Request.Context(), fileID)
	if err != nil {
		h.Error(c, err)
		return
	}

	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	c.Data(http.StatusOK, contentType, data)
}

// Delete handles DELETE /files/:id.
func (h *FileHandler) Delete(c *gin.Context) {
	fileID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), fileID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
