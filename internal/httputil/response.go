// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/keywarden/keywarden/internal/errors"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// errorMapping projects one sentinel onto the wire. An empty message means
// the response echoes err.Error(); sentinels whose detail must stay inside
// the service carry a fixed message instead.
type errorMapping struct {
	sentinel error
	status   int
	code     string
	message  string
}

var errorMappings = []errorMapping{
	{apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid_input", ""},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", ""},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden", ""},
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "The requested resource was not found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", "A conflict occurred with existing data"},

	// A stored ciphertext failed its integrity check. The payload stays
	// opaque; the DEK id involved is logged by the caller, never the data.
	{apperrors.ErrAuthenticationFailure, http.StatusInternalServerError, "authentication_failure", "Stored data failed integrity verification"},

	{apperrors.ErrTransportCorruption, http.StatusBadGateway, "transport_corruption", "KMS payload failed integrity verification"},
	{apperrors.ErrTransportTimeout, http.StatusGatewayTimeout, "transport_timeout", "KMS call timed out"},
}

// HandleErrorGin maps domain errors to HTTP status codes and returns a JSON response.
// Mapping happens exactly once at this boundary; use cases never deal in status codes.
// Errors matching no sentinel become an opaque 500.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status := http.StatusInternalServerError
	response := ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	}

	for _, m := range errorMappings {
		if !apperrors.Is(err, m.sentinel) {
			continue
		}
		status = m.status
		response = ErrorResponse{Error: m.code, Message: m.message}
		if m.message == "" {
			response.Message = err.Error()
		}
		break
	}

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", status),
			slog.String("error_code", response.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(status, response)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}

// HandleValidationErrorGin writes a 400 Bad Request response for validation errors.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}
