// Package errors provides centralized error definitions and error handling utilities
// for the cardshop client. It defines domain-specific errors, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific subsystems:
//   - APIError: failures talking to the remote commerce endpoint
//   - SessionError: failures reading or writing the local session store
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input caught before any request is sent
//   - TimeoutError: operation timed out
//
// # Usage
//
// Creating errors:
//
//	// Domain-specific error
//	err := errors.NewAPIError("createOrder", "request failed", errors.ErrTransport)
//
//	// Semantic error
//	err := errors.NewValidationError("contact is required").WithField("contact")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrUnauthorized) { ... }
//
//	var apiErr *errors.APIError
//	if errors.As(err, &apiErr) { ... }
//
//	// Text safe to show inline next to a form
//	msg := errors.UserMessage(err, "something went wrong")
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed when the user tries again
//   - UserFacing: errors safe to display to users (vs internal errors)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// API-related sentinel errors
var (
	// ErrTransport indicates that no response was received from the endpoint.
	ErrTransport = New("transport failure")
	// ErrUnauthorized indicates the endpoint rejected the bearer token (HTTP 401).
	ErrUnauthorized = New("unauthorized")
	// ErrRateLimited indicates the endpoint is throttling the client (HTTP 429).
	ErrRateLimited = New("rate limited")
	// ErrHTTPStatus indicates an unexpected non-2xx HTTP status.
	ErrHTTPStatus = New("unexpected http status")
	// ErrMalformedResponse indicates the response body could not be decoded.
	ErrMalformedResponse = New("malformed response")
	// ErrRejected indicates the endpoint answered with success=false.
	ErrRejected = New("request rejected")
)

// Session-related sentinel errors
var (
	// ErrStorageUnavailable indicates the local session storage cannot be used.
	ErrStorageUnavailable = New("session storage unavailable")
	// ErrStorageCorrupted indicates a stored value could not be decoded.
	ErrStorageCorrupted = New("session storage corrupted")
)

// Workflow-related sentinel errors
var (
	// ErrNotPurchasable indicates a product has no remaining stock.
	ErrNotPurchasable = New("product is out of stock")
	// ErrSubmitting indicates a submission is already in flight.
	ErrSubmitting = New("submission already in progress")
	// ErrNotOpen indicates an operation on a closed form.
	ErrNotOpen = New("form is not open")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrOperationFailed indicates a general operation failure.
	ErrOperationFailed = New("operation failed")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// ShopError is the base interface for all cardshop errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type ShopError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	// This is used by errors.Is() for error comparison.
	Is(target error) bool

	// Message returns the bare message without context prefixes.
	Message() string

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed when the user tries again.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Message returns the message without prefixes or cause.
func (e *baseError) Message() string {
	return e.message
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// APIError represents a failed call to the remote commerce endpoint.
// The message is the text shown to the user; the cause classifies it.
//
// Example:
//
//	err := errors.NewAPIError("getOrders", "unauthorized, please log in again", errors.ErrUnauthorized)
//	err = err.WithStatus(401).WithRequestID("7f7c...")
//	fmt.Println(err) // "api error [action=getOrders, status=401, request=7f7c...]: unauthorized, please log in again: unauthorized"
type APIError struct {
	baseError
	Action    string
	Status    int
	RequestID string
}

// NewAPIError creates a new APIError.
func NewAPIError(action, message string, cause error) *APIError {
	return &APIError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
		Action: action,
	}
}

// WithStatus adds the observed HTTP status to the error context.
func (e *APIError) WithStatus(status int) *APIError {
	e.Status = status
	return e
}

// WithRequestID adds the client request id to the error context.
func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

// WithSeverity sets the error severity.
func (e *APIError) WithSeverity(s Severity) *APIError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *APIError) WithRetryable(r bool) *APIError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *APIError) Error() string {
	var parts []string
	if e.Action != "" {
		parts = append(parts, fmt.Sprintf("action=%s", e.Action))
	}
	if e.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.Status))
	}
	if e.RequestID != "" {
		parts = append(parts, fmt.Sprintf("request=%s", e.RequestID))
	}

	prefix := "api error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("api error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *APIError) Is(target error) bool {
	if _, ok := target.(*APIError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// SessionError represents errors related to the local session store.
//
// Example:
//
//	err := errors.NewSessionError("failed to decode history", errors.ErrStorageCorrupted)
//	err = err.WithKey("order_history")
//	fmt.Println(err) // "session error [key=order_history]: failed to decode history: session storage corrupted"
type SessionError struct {
	baseError
	Key string
}

// NewSessionError creates a new SessionError.
func NewSessionError(message string, cause error) *SessionError {
	return &SessionError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: false,
		},
	}
}

// WithKey adds the storage key to the error context.
func (e *SessionError) WithKey(key string) *SessionError {
	e.Key = key
	return e
}

// WithSeverity sets the error severity.
func (e *SessionError) WithSeverity(s Severity) *SessionError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *SessionError) Error() string {
	prefix := "session error"
	if e.Key != "" {
		prefix = fmt.Sprintf("session error [key=%s]", e.Key)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SessionError) Is(target error) bool {
	if _, ok := target.(*SessionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("product", "42")
//	fmt.Println(err) // "product '42' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// WithMessage replaces the message shown to the user.
func (e *NotFoundError) WithMessage(message string) *NotFoundError {
	e.message = message
	return e
}

// WithSeverity sets the error severity.
func (e *NotFoundError) WithSeverity(s Severity) *NotFoundError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input caught on the client.
//
// Example:
//
//	err := errors.NewValidationError("contact is required")
//	err = err.WithField("contact").WithValue("")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
//
// Example:
//
//	err := errors.NewTimeoutError("getProducts", 30*time.Second)
//	fmt.Println(err) // "timeout error: getProducts (timeout: 30s)"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed when the user tries again. Nothing in the client retries
// automatically; this only drives the hint shown next to the error.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var shopErr ShopError
	if As(err, &shopErr) {
		return shopErr.IsRetryable()
	}

	if Is(err, ErrTimeout) || Is(err, ErrTransport) || Is(err, ErrRateLimited) {
		return true
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var shopErr ShopError
	if As(err, &shopErr) {
		return shopErr.IsUserFacing()
	}

	return false
}

// UserMessage returns the bare message of the outermost user-facing error in
// the chain, or fallback when there is none.
//
// Example:
//
//	form.Err = errors.UserMessage(err, "failed to create order")
func UserMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var shopErr ShopError
	if As(err, &shopErr) && shopErr.IsUserFacing() && shopErr.Message() != "" {
		return shopErr.Message()
	}
	return fallback
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement ShopError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var shopErr ShopError
	if As(err, &shopErr) {
		return shopErr.Severity()
	}

	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike fmt.Errorf with %w, this returns nil for a nil error.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to load catalog")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to load product %s", id)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
