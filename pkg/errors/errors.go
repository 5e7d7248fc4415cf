// Package errors provides custom error types for the keel data layer.
// These errors enable programmatic error checking across the collection,
// model, and sync packages without string matching.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the keel system
var (
	// ErrNotFound indicates that a requested model was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoComparator indicates a sort was requested on a collection
	// that has no comparator configured
	ErrNoComparator = errors.New("cannot sort a collection without a comparator")

	// ErrNoURL indicates a sync was attempted against a target that
	// cannot resolve a URL
	ErrNoURL = errors.New("a url must be specified")

	// ErrNoSyncer indicates a sync was attempted without a configured syncer
	ErrNoSyncer = errors.New("no syncer configured")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrReadOnly indicates an attempt to modify a read-only resource
	ErrReadOnly = errors.New("read only")
)

// ValidationError represents a model validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// NotFoundError represents an error when a model is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// SyncError represents an error during a sync operation
type SyncError struct {
	Method     string // "create", "read", "update", "patch", "delete"
	URL        string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *SyncError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sync %s %s failed (status %d): %s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("sync %s %s failed: %s", e.Method, e.URL, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewSyncError creates a new SyncError
func NewSyncError(method, url string, statusCode int, err error) *SyncError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &SyncError{
		Method:     method,
		URL:        url,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// ParseError represents an error when parsing payload data
type ParseError struct {
	Format  string // "json", "yaml"
	Target  string // what was being parsed, e.g. "collection", "model"
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s parse error for %s: %s", e.Format, e.Target, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, target string, err error) *ParseError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Format: format, Target: target, Message: message, Err: err}
}

// IOError represents an error during file persistence operations
type IOError struct {
	Operation string // "read", "write", "delete"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, target string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, target, err)
}
