package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrPermission   = errors.New("permission denied")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal server error")
	ErrUnauthorized = errors.New("unauthorized")
)

// Violation is a single failed field rule, shaped the way clients of the
// profile API already expect.
type Violation struct {
	Param    string `json:"param"`
	Msg      string `json:"msg"`
	Location string `json:"location"`
}

type AppError struct {
	BaseError  error
	Message    string
	Details    string
	Err        error
	Violations []Violation
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (Details: %s, Cause: %v)", e.BaseError.Error(), e.Message, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s (Details: %s)", e.BaseError.Error(), e.Message, e.Details)
}

// Unwrap exposes both the category and the cause to errors.Is/As.
func (e *AppError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.BaseError}
	}
	return []error{e.BaseError, e.Err}
}

func NewAppError(base error, msg, details string, err error) *AppError {
	return &AppError{BaseError: base, Message: msg, Details: details, Err: err}
}

func NewNotFound(resource, identifier string) *AppError {
	msg := fmt.Sprintf("%s not found", resource)
	details := fmt.Sprintf("%s with identifier '%s' was not found", resource, identifier)
	return NewAppError(ErrNotFound, msg, details, nil)
}

// NewNotFoundCause is NewNotFound with a domain cause attached, so the
// boundary sees "not found" while callers can still tell why.
func NewNotFoundCause(resource, identifier string, cause error) *AppError {
	e := NewNotFound(resource, identifier)
	e.Err = cause
	return e
}

func NewInvalidInput(details string, err error) *AppError {
	return NewAppError(ErrInvalidInput, "Invalid input provided", details, err)
}

func NewValidationFailed(violations []Violation) *AppError {
	e := NewAppError(ErrInvalidInput, "Validation failed", fmt.Sprintf("%d field rule(s) violated", len(violations)), nil)
	e.Violations = violations
	return e
}

func NewConflict(resource, field, value string) *AppError {
	msg := fmt.Sprintf("%s conflict", resource)
	details := fmt.Sprintf("%s with %s '%s' already exists", resource, field, value)
	return NewAppError(ErrConflict, msg, details, nil)
}

func NewInternal(details string, err error) *AppError {
	return NewAppError(ErrInternal, "An internal server error occurred", details, err)
}

func NewUnauthorized(details string, err error) *AppError {
	return NewAppError(ErrUnauthorized, "Invalid credentials", details, err)
}

func NewPermissionDenied(details string) *AppError {
	return NewAppError(ErrPermission, "Permission denied", details, nil)
}

func ToHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrPermission) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// ToJSON never includes Details or the cause; those stay in the logs.
func (e *AppError) ToJSON() gin.H {
	if len(e.Violations) > 0 {
		return gin.H{"errors": e.Violations}
	}
	return gin.H{
		"error":   e.BaseError.Error(),
		"message": e.Message,
	}
}
