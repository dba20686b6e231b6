// Package http provides HTTP handlers for folder management operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/keywarden/keywarden/internal/folders/http/dto"
	foldersUseCase "github.com/keywarden/keywarden/internal/folders/usecase"
	"github.com/keywarden/keywarden/internal/httputil"
	customValidation "github.com/keywarden/keywarden/internal/validation"
)

// FolderHandler handles HTTP requests for folder management operations.
type FolderHandler struct {
	folderUseCase foldersUseCase.FolderUseCase
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler with required dependencies.
func NewFolderHandler(folderUseCase foldersUseCase.FolderUseCase, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderUseCase: folderUseCase,
		logger:        logger,
	}
}

// parseOptionalParentID parses an optional parentId request field.
func parseOptionalParentID(raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	parentID, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &parentID, nil
}

// CreateHandler creates a new folder.
// POST /v1/folder - Requires token.
// Returns 201 Created with the folder.
func (h *FolderHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	parentID, err := parseOptionalParentID(req.ParentID)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	folder, err := h.folderUseCase.Create(c.Request.Context(), &foldersUseCase.CreateFolderInput{
		Name:     req.Name,
		ParentID: parentID,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapFolderToResponse(folder))
}

// GetHandler retrieves a folder by ID.
// GET /v1/folder/{id} - Requires token.
func (h *FolderHandler) GetHandler(c *gin.Context) {
	folderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	folder, err := h.folderUseCase.Get(c.Request.Context(), folderID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapFolderToResponse(folder))
}

// ListHandler retrieves folders with pagination.
// GET /v1/folder - Requires token.
func (h *FolderHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	folders, err := h.folderUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapFoldersToListResponse(folders, offset, limit))
}

// UpdateHandler renames or moves a folder.
// PUT /v1/folder/{id} - Requires token.
func (h *FolderHandler) UpdateHandler(c *gin.Context) {
	folderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.UpdateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	parentID, err := parseOptionalParentID(req.ParentID)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	folder, err := h.folderUseCase.Update(c.Request.Context(), folderID, &foldersUseCase.UpdateFolderInput{
		Name:     req.Name,
		ParentID: parentID,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapFolderToResponse(folder))
}

// DeleteHandler removes a folder along with its children and contained
// secrets.
// DELETE /v1/folder/{id} - Requires token.
// Returns 204 No Content.
func (h *FolderHandler) DeleteHandler(c *gin.Context) {
	folderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.folderUseCase.Delete(c.Request.Context(), folderID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
