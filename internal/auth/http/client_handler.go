package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/keywarden/keywarden/internal/auth/domain"
	"github.com/keywarden/keywarden/internal/auth/http/dto"
	authUseCase "github.com/keywarden/keywarden/internal/auth/usecase"
	"github.com/keywarden/keywarden/internal/httputil"
	customValidation "github.com/keywarden/keywarden/internal/validation"
)

// ClientHandler handles HTTP requests for client lifecycle operations.
type ClientHandler struct {
	clientUseCase authUseCase.ClientUseCase
	logger        *slog.Logger
}

// NewClientHandler creates a new client handler with required dependencies.
func NewClientHandler(clientUseCase authUseCase.ClientUseCase, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{
		clientUseCase: clientUseCase,
		logger:        logger,
	}
}

// RegisterHandler registers a new client.
// POST /v1/client/register - Requires role `*`.
// Returns 201 Created with the client metadata (never the secret hash).
func (h *ClientHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	client, err := h.clientUseCase.Register(c.Request.Context(), &authDomain.RegisterClientInput{
		Name:        req.Name,
		Secret:      req.Secret,
		Roles:       req.Roles,
		Permissions: req.Permissions,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapClientToResponse(client))
}

// LoginHandler authenticates a client and issues an access token.
// POST /v1/client/login - Public.
// Returns 200 OK with the token, or 401 on any credential failure.
func (h *ClientHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	out, err := h.clientUseCase.Login(c.Request.Context(), req.Name, req.Secret)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapLoginToResponse(out))
}

// InfoHandler retrieves client metadata by id.
// GET /v1/client/info/{id} - Requires token.
func (h *ClientHandler) InfoHandler(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	client, err := h.clientUseCase.Get(c.Request.Context(), clientID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClientToResponse(client))
}

// RevokeHandler deactivates a client.
// DELETE /v1/client/{id}/revoke - Requires token.
// Returns 204 No Content. Already-issued tokens stay valid until expiry.
func (h *ClientHandler) RevokeHandler(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.clientUseCase.Revoke(c.Request.Context(), clientID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
