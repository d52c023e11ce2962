package utils

import (
	"errors"
	"net/http"

	"axiona-learning-core/models"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondWithError sends a standardized error response
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error
func RespondWithBadRequest(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, "bad_request", message, details)
}

// RespondWithNotFound sends a 404 Not Found error
func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, "not_found", message, nil)
}

// RespondWithInternalError sends a 500 Internal Server Error
func RespondWithInternalError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", message, details)
}

// RespondWithDomainError maps known domain errors to HTTP responses
func RespondWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNamespaceNotFound):
		RespondWithError(c, http.StatusNotFound, "namespace_not_found", err.Error(), nil)
	case errors.Is(err, models.ErrUnsupportedKind):
		RespondWithBadRequest(c, err.Error(), nil)
	case errors.Is(err, models.ErrEmptyContent):
		RespondWithBadRequest(c, err.Error(), nil)
	case errors.Is(err, models.ErrIndexUnavailable):
		RespondWithError(c, http.StatusServiceUnavailable, "index_unavailable", err.Error(), nil)
	case errors.Is(err, models.ErrEmbeddingFailure):
		RespondWithError(c, http.StatusBadGateway, "embedding_failure", err.Error(), nil)
	default:
		RespondWithInternalError(c, "unexpected error", gin.H{"error": err.Error()})
	}
}
