// Package http provides HTTP handlers for secret management operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/keywarden/keywarden/internal/httputil"
	"github.com/keywarden/keywarden/internal/secrets/http/dto"
	secretsUseCase "github.com/keywarden/keywarden/internal/secrets/usecase"
	customValidation "github.com/keywarden/keywarden/internal/validation"
)

// SecretHandler handles HTTP requests for secret management operations.
type SecretHandler struct {
	secretUseCase secretsUseCase.SecretUseCase
	logger        *slog.Logger
}

// NewSecretHandler creates a new secret handler with required dependencies.
func NewSecretHandler(secretUseCase secretsUseCase.SecretUseCase, logger *slog.Logger) *SecretHandler {
	return &SecretHandler{
		secretUseCase: secretUseCase,
		logger:        logger,
	}
}

// parseOptionalFolderID parses an optional folderId request field.
func parseOptionalFolderID(raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	folderID, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &folderID, nil
}

// CreateHandler creates a new secret sealed under the current default DEK.
// POST /v1/secret - Requires token.
// Returns 201 Created with secret metadata (no value).
func (h *SecretHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	folderID, err := parseOptionalFolderID(req.FolderID)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	secret, err := h.secretUseCase.Create(c.Request.Context(), &secretsUseCase.CreateSecretInput{
		Name:     req.Name,
		Value:    []byte(req.Value),
		FolderID: folderID,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSecretToMetadataResponse(secret))
}

// GetHandler retrieves and decrypts a secret by UUID or unique name.
// GET /v1/secret/{id-or-name} - Requires token.
func (h *SecretHandler) GetHandler(c *gin.Context) {
	secret, err := h.secretUseCase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretToResponse(secret))
}

// ListHandler retrieves secret metadata with pagination.
// GET /v1/secret - Requires token. Values are never included.
func (h *SecretHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	secrets, err := h.secretUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretsToListResponse(secrets, offset, limit))
}

// UpdateHandler replaces a secret's value, resealing under the current
// default DEK.
// PUT /v1/secret/{id} - Requires token.
func (h *SecretHandler) UpdateHandler(c *gin.Context) {
	secretID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.UpdateSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	folderID, err := parseOptionalFolderID(req.FolderID)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	secret, err := h.secretUseCase.Update(c.Request.Context(), secretID, &secretsUseCase.UpdateSecretInput{
		Value:    []byte(req.Value),
		FolderID: folderID,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretToMetadataResponse(secret))
}

// DeleteHandler removes a secret.
// DELETE /v1/secret/{id} - Requires token.
// Returns 204 No Content.
func (h *SecretHandler) DeleteHandler(c *gin.Context) {
	secretID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.secretUseCase.Delete(c.Request.Context(), secretID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
