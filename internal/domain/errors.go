package domain

import "fmt"

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	Key    string
}

// NewNotFoundError creates a NotFoundError for the given entity and lookup key.
func NewNotFoundError(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// InvalidRequestError indicates the request violates a business precondition,
// such as booking against an unavailable slot.
type InvalidRequestError struct {
	Reason string
}

// NewInvalidRequestError creates an InvalidRequestError with the given reason.
func NewInvalidRequestError(reason string) *InvalidRequestError {
	return &InvalidRequestError{Reason: reason}
}

func (e *InvalidRequestError) Error() string {
	return e.Reason
}

// ConflictError indicates the operation conflicts with the entity's current
// state, such as mutating a cancelled booking.
type ConflictError struct {
	Reason string
}

// NewConflictError creates a ConflictError with the given reason.
func NewConflictError(reason string) *ConflictError {
	return &ConflictError{Reason: reason}
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// UnauthorizedError indicates a missing or invalid credential.
type UnauthorizedError struct {
	Reason string
}

// NewUnauthorizedError creates an UnauthorizedError with the given reason.
func NewUnauthorizedError(reason string) *UnauthorizedError {
	return &UnauthorizedError{Reason: reason}
}

func (e *UnauthorizedError) Error() string {
	return e.Reason
}

// InternalError indicates an unexpected failure that is not the caller's fault.
type InternalError struct {
	Reason string
	Err    error
}

// NewInternalError creates an InternalError wrapping an underlying cause.
func NewInternalError(reason string, err error) *InternalError {
	return &InternalError{Reason: reason, Err: err}
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

// Unwrap returns the underlying cause.
func (e *InternalError) Unwrap() error {
	return e.Err
}
