package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldextract/internal/domain"
	"fieldextract/internal/middleware"
)

// ErrorResponse is the body sent when a request fails before any document is
// processed. It keeps the batch response shape so callers can treat it uniformly.
type ErrorResponse struct {
	Error           string                  `json:"error" example:"document array is empty"`
	Code            string                  `json:"code" example:"EMPTY_BATCH"`
	IsUsingMockData bool                    `json:"isUsingMockData" example:"true"`
	Results         []domain.DocumentResult `json:"results"`
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, ErrorResponse{
		Error:           msg,
		Code:            code,
		IsUsingMockData: true,
		Results:         []domain.DocumentResult{},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Input errors carry their own message so the caller sees what was wrong.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrEmptyBatch):
		return http.StatusBadRequest, "EMPTY_BATCH", err.Error()
	case errors.Is(err, domain.ErrTooManyDocuments):
		return http.StatusBadRequest, "TOO_MANY_DOCUMENTS", err.Error()
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error()
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "INVALID_REQUEST", err.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, logger *slog.Logger, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		logger.Error("internal error", "request_id", middleware.GetRequestID(c), "error", err)
	} else {
		logger.Warn("rejected request", "request_id", middleware.GetRequestID(c), "code", code, "error", err)
	}
	RespondError(c, status, code, msg)
}
