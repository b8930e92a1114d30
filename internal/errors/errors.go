package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a suisource error code.
type ErrorCode string

const (
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"      // 400
	ErrNotFound            ErrorCode = "NOT_FOUND"            // 404
	ErrNotAPackage         ErrorCode = "NOT_A_PACKAGE"        // 422
	ErrUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE" // 502
	ErrDecompileFailed     ErrorCode = "DECOMPILE_FAILED"     // 500, per-module only
	ErrInternal            ErrorCode = "INTERNAL"             // 500
)

// Error represents a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for an object id that does not resolve on-chain.
func NewNotFound(objectID string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("object not found on chain: %s", objectID),
		Details: map[string]any{"object_id": objectID},
	}
}

// NewNotAPackage creates a 422 error for an object that resolves but is not a package.
// Distinct from NotFound so callers can report "not a package" vs "no such object".
func NewNotAPackage(objectID string) *Error {
	return &Error{
		Code:    ErrNotAPackage,
		Status:  422,
		Message: fmt.Sprintf("object is not a move package: %s", objectID),
		Details: map[string]any{"object_id": objectID},
	}
}

// NewUpstreamUnavailable creates a 502 error for RPC or network failures.
func NewUpstreamUnavailable(msg string) *Error {
	return &Error{
		Code:    ErrUpstreamUnavailable,
		Status:  502,
		Message: msg,
	}
}

// NewDecompileFailed creates a per-module decompilation error.
// Never surfaced as a request-level failure; callers record it inline.
func NewDecompileFailed(module, reason string) *Error {
	return &Error{
		Code:    ErrDecompileFailed,
		Status:  500,
		Message: fmt.Sprintf("failed to decompile module %q: %s", module, reason),
		Details: map[string]any{"module": module, "reason": reason},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is an Error with the given code, unwrapping as needed.
func Is(err error, code ErrorCode) bool {
	var sErr *Error
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}
