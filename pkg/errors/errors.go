package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Structural errors: the graph itself is unusable
	ErrorTypeMalformedGraph ErrorType = "MALFORMED_GRAPH"
	ErrorTypeCyclicGraph    ErrorType = "CYCLIC_GRAPH"

	// Policy errors: the graph is intact but execution is refused
	ErrorTypeBoundaryViolation ErrorType = "BOUNDARY_VIOLATION"
	ErrorTypeNotInitialized    ErrorType = "RUNTIME_NOT_INITIALIZED"

	// Interpretation errors: one simulated call failed, the runtime is fine
	ErrorTypeStepExecution ErrorType = "STEP_EXECUTION"

	// Generic application errors
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeRateLimit    ErrorType = "RATE_LIMIT"
	ErrorTypeInternal     ErrorType = "INTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithDetail adds a single error detail
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

// Constructor functions for common error types

// NewMalformedGraphError creates an error for a graph payload that cannot be
// parsed into the typed shape
func NewMalformedGraphError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeMalformedGraph,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewCyclicGraphError creates an error for a graph with no valid topological
// order. The ids of nodes stuck in the cycle are retained in the details.
func NewCyclicGraphError(remaining []string) *AppError {
	return &AppError{
		Type:       ErrorTypeCyclicGraph,
		Message:    "graph contains a cycle, no valid execution order exists",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]interface{}{"cyclic_nodes": remaining},
		StackTrace: captureStackTrace(),
	}
}

// NewBoundaryViolationError creates a policy error carrying the blocking
// issue list unchanged
func NewBoundaryViolationError(issues interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeBoundaryViolation,
		Message:    "service boundary violations block execution",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]interface{}{"issues": issues},
		StackTrace: captureStackTrace(),
	}
}

// NewNotInitializedError creates an error for operations that require a
// deployed graph
func NewNotInitializedError() *AppError {
	return &AppError{
		Type:       ErrorTypeNotInitialized,
		Message:    "no graph has been deployed to the runtime",
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewStepExecutionError creates an error for a single failed interpreter
// step. Node and step ids are always retained so the failure can be
// reproduced from the payload.
func NewStepExecutionError(nodeID, stepID, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeStepExecution,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Details: map[string]interface{}{
			"node_id": nodeID,
			"step_id": stepID,
		},
		StackTrace: captureStackTrace(),
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
		StackTrace: captureStackTrace(),
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(limit int, window string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Message:    fmt.Sprintf("rate limit exceeded: %d requests per %s", limit, window),
		HTTPStatus: http.StatusTooManyRequests,
		StackTrace: captureStackTrace(),
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsMalformedGraph checks if an error is a malformed graph error
func IsMalformedGraph(err error) bool {
	return IsType(err, ErrorTypeMalformedGraph)
}

// IsCyclicGraph checks if an error is a cyclic graph error
func IsCyclicGraph(err error) bool {
	return IsType(err, ErrorTypeCyclicGraph)
}

// IsBoundaryViolation checks if an error is a boundary violation
func IsBoundaryViolation(err error) bool {
	return IsType(err, ErrorTypeBoundaryViolation)
}

// IsNotInitialized checks if an error is a not initialized error
func IsNotInitialized(err error) bool {
	return IsType(err, ErrorTypeNotInitialized)
}

// IsStepExecution checks if an error is a step execution error
func IsStepExecution(err error) bool {
	return IsType(err, ErrorTypeStepExecution)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, add context to message
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	// Otherwise create a new internal error
	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
