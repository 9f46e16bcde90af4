package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeOracleUnavailable = "ORACLE_UNAVAILABLE"
	ErrCodeNoLegalMove       = "NO_LEGAL_MOVE"
	ErrCodeSuperseded        = "SUPERSEDED"
	ErrCodeSessionComplete   = "SESSION_COMPLETE"
	ErrCodeUnknownLegend     = "UNKNOWN_LEGEND"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "ORACLE_UNAVAILABLE")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is, or wraps, an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewOracleUnavailableError reports that no usable oracle answer exists for a position.
func NewOracleUnavailableError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeOracleUnavailable,
		Message: "move oracle unavailable",
		Status:  503,
		Err:     err,
	}
}

// NewNoLegalMoveError reports a finished game at the given position.
func NewNoLegalMoveError(fen string) *AppError {
	return &AppError{
		Code:    ErrCodeNoLegalMove,
		Message: fmt.Sprintf("no legal move in position %s", fen),
		Status:  409,
	}
}

// NewSupersededError reports that a newer query replaced this one before it finished.
func NewSupersededError(key string) *AppError {
	return &AppError{
		Code:    ErrCodeSuperseded,
		Message: fmt.Sprintf("query for %s superseded by a newer one", key),
		Status:  409,
	}
}

// NewSessionCompleteError reports a guess submitted after the last legend move.
func NewSessionCompleteError(sessionID string) *AppError {
	return &AppError{
		Code:    ErrCodeSessionComplete,
		Message: fmt.Sprintf("session %s has no positions left", sessionID),
		Status:  409,
	}
}

// NewUnknownLegendError reports a legend with no registered spellings or no built index.
func NewUnknownLegendError(legendID string) *AppError {
	return &AppError{
		Code:    ErrCodeUnknownLegend,
		Message: fmt.Sprintf("unknown legend: %s", legendID),
		Status:  404,
	}
}
