package services

import (
	"errors"
	"fmt"
	"net/http"

	"careerquest/internal/models"
	"careerquest/internal/repositories"
)

// Error types carried by ServiceError.Type
const (
	ErrTypeValidation      = "VALIDATION_ERROR"
	ErrTypeNotFound        = "NOT_FOUND"
	ErrTypePersistence     = "PERSISTENCE_ERROR"
	ErrTypeNoDataReturned  = "NO_DATA_RETURNED"
	ErrTypeTaskSetMismatch = "TASK_SET_MISMATCH"
	ErrTypeOperationFailed = "OPERATION_FAILED"
	ErrTypeUnauthorized    = "UNAUTHORIZED"
	ErrTypeForbidden       = "FORBIDDEN"
	ErrTypeInternal        = "INTERNAL_ERROR"
)

// ===============================
// ERROR TYPES
// ===============================

// ServiceError represents a structured service error
type ServiceError struct {
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// ===============================
// ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error. Field details are lifted
// from a models.ValidationErrors cause.
func NewValidationError(message string, cause error) *ServiceError {
	err := &ServiceError{
		Type:       ErrTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}

	var fields models.ValidationErrors
	if errors.As(cause, &fields) {
		err.Details = map[string]interface{}{"fields": []models.ValidationError(fields)}
	}
	return err
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewPersistenceError wraps a failed storage round trip
func NewPersistenceError(operation string, cause error) *ServiceError {
	return &ServiceError{
		Type:       ErrTypePersistence,
		Message:    fmt.Sprintf("failed to %s", operation),
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
		Details:    map[string]interface{}{"operation": operation},
	}
}

// NewNoDataReturnedError reports a write that succeeded without returning
// the expected row
func NewNoDataReturnedError(operation string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeNoDataReturned,
		Message:    fmt.Sprintf("%s returned no data", operation),
		StatusCode: http.StatusInternalServerError,
		Cause:      repositories.ErrNoDataReturned,
		Details:    map[string]interface{}{"operation": operation},
	}
}

// NewTaskSetMismatchError reports a reorder list that is not a permutation
// of the mission's task ids
func NewTaskSetMismatchError(expected, received int, unknown, missing, duplicated []string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeTaskSetMismatch,
		Message:    "task ids must list every task of the mission exactly once",
		Code:       "TASK_SET_MISMATCH",
		StatusCode: http.StatusUnprocessableEntity,
		Details: map[string]interface{}{
			"expected_count": expected,
			"received_count": received,
			"unknown_ids":    unknown,
			"missing_ids":    missing,
			"duplicated_ids": duplicated,
		},
	}
}

// NewOperationFailedError is what the API reports for operations whose
// failures are logged rather than returned
func NewOperationFailedError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeOperationFailed,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeForbidden,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// ===============================
// ERROR UTILITIES
// ===============================

// classify turns repository errors into service errors. Service errors
// pass through unchanged.
func classify(operation string, err error) error {
	if err == nil {
		return nil
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return err
	}

	if errors.Is(err, repositories.ErrNoDataReturned) {
		return NewNoDataReturnedError(operation)
	}

	return NewPersistenceError(operation, err)
}

// GetServiceError extracts a ServiceError from an error, or creates a generic one
func GetServiceError(err error) *ServiceError {
	if err == nil {
		return nil
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}

	return &ServiceError{
		Type:       ErrTypeInternal,
		Message:    err.Error(),
		StatusCode: http.StatusInternalServerError,
		Cause:      err,
	}
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType string) bool {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Type == errorType
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return IsErrorType(err, ErrTypeNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return IsErrorType(err, ErrTypeValidation)
}

// IsPersistenceError checks if an error is a storage failure
func IsPersistenceError(err error) bool {
	return IsErrorType(err, ErrTypePersistence)
}

// IsNoDataReturnedError checks if a write returned no row
func IsNoDataReturnedError(err error) bool {
	return IsErrorType(err, ErrTypeNoDataReturned)
}

// IsTaskSetMismatchError checks if a reorder was rejected before writing
func IsTaskSetMismatchError(err error) bool {
	return IsErrorType(err, ErrTypeTaskSetMismatch)
}

// ===============================
// COMMON ERROR PATTERNS
// ===============================

// EntityNotFoundError creates a standard entity not found error
func EntityNotFoundError(entityType string, id interface{}) *ServiceError {
	err := NewNotFoundError(fmt.Sprintf("%s not found", entityType))
	err.Details = map[string]interface{}{
		"resource": entityType,
		"id":       id,
	}
	return err
}
