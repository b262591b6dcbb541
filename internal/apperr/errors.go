// Package apperr defines the error taxonomy shared by the storage and
// service layers: validation, not-found, conflict and storage errors,
// plus the uniform result envelope returned across the service boundary.
package apperr

import (
	"errors"
	"fmt"
)

// Error codes surfaced in the result envelope
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeStorage    = "STORAGE_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

// ValidationError reports bad caller input, e.g. a rating outside [1,5].
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidation returns a ValidationError for the given field.
func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports an unknown entity id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// NewNotFound returns a NotFoundError for the given entity and id.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a duplicate unique key, e.g. a DOI collision.
type ConflictError struct {
	Entity  string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Message)
}

// NewConflict returns a ConflictError for the given entity.
func NewConflict(entity, message string) error {
	return &ConflictError{Entity: entity, Message: message}
}

// StorageError wraps an underlying adapter or query failure. Storage
// failures are the one error class that aborts a whole service call.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// WrapStorage wraps err as a StorageError for operation op. It returns nil
// when err is nil and leaves already-classified errors untouched.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var nf *NotFoundError
	var ce *ConflictError
	var se *StorageError
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ce) || errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// CodeOf maps an error to its envelope code.
func CodeOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return CodeValidation
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return CodeNotFound
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return CodeConflict
	}
	var se *StorageError
	if errors.As(err, &se) {
		return CodeStorage
	}
	return CodeInternal
}

// Envelope is the uniform result shape returned by public service
// operations: {success, data?, error?, code?}.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// OK wraps data in a successful envelope.
func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail wraps err in a failed envelope with its mapped code.
func Fail(err error) Envelope {
	return Envelope{Success: false, Error: err.Error(), Code: CodeOf(err)}
}
