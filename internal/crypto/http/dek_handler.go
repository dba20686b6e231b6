// Package http provides HTTP handlers for DEK management operations.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/keywarden/keywarden/internal/crypto/http/dto"
	cryptoUseCase "github.com/keywarden/keywarden/internal/crypto/usecase"
	"github.com/keywarden/keywarden/internal/httputil"
	customValidation "github.com/keywarden/keywarden/internal/validation"
)

// DekHandler handles HTTP requests for DEK management operations.
type DekHandler struct {
	dekUseCase cryptoUseCase.DekUseCase
	logger     *slog.Logger
}

// NewDekHandler creates a new DEK handler with required dependencies.
func NewDekHandler(dekUseCase cryptoUseCase.DekUseCase, logger *slog.Logger) *DekHandler {
	return &DekHandler{
		dekUseCase: dekUseCase,
		logger:     logger,
	}
}

// parseDekID parses the {id} path parameter as a u32 DEK id.
func parseDekID(c *gin.Context) (uint32, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(id), nil
}

// CreateHandler creates a new DEK and makes it the default.
// POST /v1/dek - Requires role `*`.
// Returns 201 Created with DEK metadata (never the key material).
func (h *DekHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateDekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	dek, err := h.dekUseCase.Create(c.Request.Context(), req.Name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapDekToResponse(dek))
}

// GetHandler retrieves DEK metadata by id.
// GET /v1/dek/{id} - Requires role `*`.
func (h *DekHandler) GetHandler(c *gin.Context) {
	dekID, err := parseDekID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	dek, err := h.dekUseCase.Get(c.Request.Context(), dekID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDekToResponse(dek))
}

// ListHandler retrieves all DEKs.
// GET /v1/dek - Requires role `*`.
func (h *DekHandler) ListHandler(c *gin.Context) {
	deks, err := h.dekUseCase.List(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDeksToListResponse(deks))
}

// DeleteHandler removes a DEK that no secret references.
// DELETE /v1/dek/{id} - Requires role `*`.
// Returns 204 No Content, or 409 Conflict while secrets still reference it.
func (h *DekHandler) DeleteHandler(c *gin.Context) {
	dekID, err := parseDekID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.dekUseCase.Delete(c.Request.Context(), dekID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// RotateKekHandler rewraps all DEKs under a new KEK.
// POST /v1/dek/rotate-kek - Requires role `*`.
// Returns 200 OK with the batch result; per-row failures are listed, not fatal.
func (h *DekHandler) RotateKekHandler(c *gin.Context) {
	var req dto.RotateKekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.dekUseCase.RotateKek(c.Request.Context(), req.NewKekID, req.OldKekID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, result)
}
