package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mtlprog/stopwork/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// MapDomainError maps domain errors to HTTP status codes and error codes.
// Specific errors are matched before the class they wrap.
func MapDomainError(err error) (status int, code string, message string) {
	message = err.Error()

	switch {
	// Lookup errors
	case errors.Is(err, domain.ErrEventNotFound):
		return http.StatusNotFound, "EVENT_NOT_FOUND", message
	case errors.Is(err, domain.ErrStepNotFound):
		return http.StatusNotFound, "STEP_NOT_FOUND", message
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", message

	// Conflict errors
	case errors.Is(err, domain.ErrEventCleared):
		return http.StatusConflict, "EVENT_CLEARED", message
	case errors.Is(err, domain.ErrTerminalState):
		return http.StatusConflict, "TERMINAL_STATE", message
	case errors.Is(err, domain.ErrSequence):
		return http.StatusConflict, "STEP_OUT_OF_SEQUENCE", message
	case errors.Is(err, domain.ErrConcurrentModification):
		return http.StatusConflict, "CONCURRENT_MODIFICATION", message
	case errors.Is(err, domain.ErrStepsIncomplete):
		return http.StatusConflict, "STEPS_INCOMPLETE", message
	case errors.Is(err, domain.ErrNotPendingApproval):
		return http.StatusConflict, "NOT_PENDING_APPROVAL", message
	case errors.Is(err, domain.ErrPrecondition):
		return http.StatusConflict, "PRECONDITION_FAILED", message

	// Permission errors
	case errors.Is(err, domain.ErrSeparationOfDuties):
		return http.StatusForbidden, "SEPARATION_OF_DUTIES", message
	case errors.Is(err, domain.ErrAuthorization):
		return http.StatusForbidden, "INSUFFICIENT_ROLE", message
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "INVALID_TOKEN", message

	// Validation errors
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR", message

	// Dependency errors only reach here when nothing was committed
	case errors.Is(err, domain.ErrDependency):
		return http.StatusServiceUnavailable, "DEPENDENCY_UNAVAILABLE", message

	// Default: internal server error
	default:
		// CRITICAL: Log unmapped error for debugging
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}
