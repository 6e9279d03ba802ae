// Package apperr provides standardized error types for the client.
// Services return these typed errors, and callers (the CLI, or any UI
// embedding the SDK) map them to user-facing messaging.
package apperr

import (
	"fmt"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindUnauthorized indicates a missing, invalid, or expired credential.
	// Sessions degrade to anonymous on this kind; it is never shown as an
	// error to the user.
	KindUnauthorized
	// KindForbidden indicates the action is not allowed for the user's role.
	KindForbidden
	// KindNotFound indicates the requested resource does not exist.
	KindNotFound
	// KindValidation indicates a payload rejected before dispatch.
	KindValidation
	// KindServer indicates a backend-reported failure with a message body.
	KindServer
	// KindNetwork indicates no response was received at all.
	KindNetwork
	// KindTimeout indicates the request exceeded its deadline.
	KindTimeout
	// KindBadResponse indicates a 2xx response whose body could not be decoded.
	KindBadResponse
	// KindInternal indicates an unexpected client-side error.
	KindInternal
)

// Fixed user-facing messages for failures the backend did not describe.
const (
	NetworkMessage = "Unable to reach the server. Check your connection and try again."
	TimeoutMessage = "The request timed out. Please try again."
)

// Error is a client error with a typed Kind.
type Error struct {
	Kind    Kind
	Message string // human-readable, safe to display
	Op      string // operation that failed (optional)
	Err     error  // underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp returns the error with the operation set.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// Convenience constructors for common error types.

// Unauthorized creates an authentication failure.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// Forbidden creates a role/permission failure.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a client-side validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Server creates a backend-reported error carrying its message verbatim.
func Server(message string) *Error {
	return New(KindServer, message)
}

// Network creates a connectivity failure with the fixed user-facing message.
func Network(err error) *Error {
	return Wrap(KindNetwork, NetworkMessage, err)
}

// Timeout creates a deadline failure with the fixed user-facing message.
func Timeout(err error) *Error {
	return Wrap(KindTimeout, TimeoutMessage, err)
}

// BadResponse creates a shape/decode failure for a 2xx response.
func BadResponse(message string, err error) *Error {
	return Wrap(KindBadResponse, message, err)
}

// Internal creates an unexpected client-side error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// GetKind extracts the error kind from an error.
// Returns KindUnknown if the error is not an *Error.
func GetKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// UserMessage extracts a displayable message from any error. Typed errors
// carry their own; anything else collapses to a generic message so raw
// internals never reach the user.
func UserMessage(err error) string {
	if e, ok := err.(*Error); ok && e.Message != "" {
		return e.Message
	}
	return "Something went wrong. Please try again."
}
