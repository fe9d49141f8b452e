// Package mcperrors defines the gateway's error taxonomy. Every failure a
// dispatch can produce is represented here with a stable code so the
// registry can convert it to a structured call result instead of letting
// it unwind through the transport.
package mcperrors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorCode categorizes gateway errors.
type ErrorCode int

// Gateway error codes. The numeric values are carried on the wire in the
// error object of a pushed response.
const (
	// CodeValidation: input failed shape checking.
	CodeValidation ErrorCode = 1000 + iota
	// CodeUnknownTool: tool name not registered.
	CodeUnknownTool
	// CodeUnknownPrompt: prompt name not registered.
	CodeUnknownPrompt
	// CodeResourceNotFound: resource URI not registered.
	CodeResourceNotFound
	// CodeBackend: the backend query client failed.
	CodeBackend
	// CodeNoActiveSession: a request arrived with no push channel established.
	CodeNoActiveSession
	// CodeDuplicateName: startup-time registration conflict. Fatal.
	CodeDuplicateName
	// CodeInternal: anything else caught at the dispatch boundary.
	CodeInternal
)

// BaseError is the common base for the typed gateway errors. It carries a
// code, a human-readable message, an optional cause, and key-value context.
type BaseError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("gateway error (code %d): %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("gateway error (code %d): %s", e.Code, e.Message)
}

// Unwrap returns the cause, enabling errors.Is and errors.As traversal.
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key-value detail to the error and returns it for
// chaining.
func (e *BaseError) WithContext(key string, value any) *BaseError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Base returns the embedded BaseError. Promoted through the typed
// wrappers, it lets AsBase recover the code and message from any error in
// the taxonomy without enumerating the wrapper types.
func (e *BaseError) Base() *BaseError {
	return e
}

// carrier is satisfied by every typed wrapper via the promoted Base method.
type carrier interface {
	Base() *BaseError
}

// ValidationError reports input that failed shape checking.
type ValidationError struct{ BaseError }

// UnknownToolError reports a dispatch against an unregistered tool name.
type UnknownToolError struct{ BaseError }

// UnknownPromptError reports a render against an unregistered prompt name.
type UnknownPromptError struct{ BaseError }

// NotFoundError reports a resolve against an unregistered resource URI.
type NotFoundError struct{ BaseError }

// BackendError wraps a failure from the backend query client.
type BackendError struct{ BaseError }

// NoActiveSessionError reports a request delivered while no push channel
// is established.
type NoActiveSessionError struct{ BaseError }

// DuplicateNameError reports a registration conflict. This is the one
// error in the taxonomy that is allowed to abort process startup.
type DuplicateNameError struct{ BaseError }

// InternalError covers failures caught at the dispatch boundary that fit
// no more specific category, including recovered panics.
type InternalError struct{ BaseError }

func newBase(code ErrorCode, message string, cause error) BaseError {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return BaseError{Code: code, Message: message, Cause: cause}
}

// NewValidationError creates a ValidationError.
func NewValidationError(message string, cause error) *ValidationError {
	return &ValidationError{newBase(CodeValidation, message, cause)}
}

// NewUnknownToolError creates an UnknownToolError for the given tool name.
func NewUnknownToolError(name string) *UnknownToolError {
	e := &UnknownToolError{newBase(CodeUnknownTool, fmt.Sprintf("unknown tool: %s", name), nil)}
	e.WithContext("tool", name)
	return e
}

// NewUnknownPromptError creates an UnknownPromptError for the given prompt name.
func NewUnknownPromptError(name string) *UnknownPromptError {
	e := &UnknownPromptError{newBase(CodeUnknownPrompt, fmt.Sprintf("unknown prompt: %s", name), nil)}
	e.WithContext("prompt", name)
	return e
}

// NewNotFoundError creates a NotFoundError for the given resource URI.
func NewNotFoundError(uri string) *NotFoundError {
	e := &NotFoundError{newBase(CodeResourceNotFound, fmt.Sprintf("resource not found: %s", uri), nil)}
	e.WithContext("uri", uri)
	return e
}

// NewBackendError wraps a backend query failure.
func NewBackendError(message string, cause error) *BackendError {
	return &BackendError{newBase(CodeBackend, message, cause)}
}

// NewNoActiveSessionError creates a NoActiveSessionError.
func NewNoActiveSessionError() *NoActiveSessionError {
	return &NoActiveSessionError{newBase(CodeNoActiveSession, "no active session", nil)}
}

// NewDuplicateNameError reports a registration conflict for the given
// kind ("tool", "resource", "prompt") and key.
func NewDuplicateNameError(kind, key string) *DuplicateNameError {
	e := &DuplicateNameError{newBase(CodeDuplicateName, fmt.Sprintf("duplicate %s registration: %s", kind, key), nil)}
	e.WithContext("kind", kind)
	e.WithContext("key", key)
	return e
}

// NewInternalError creates an InternalError.
func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{newBase(CodeInternal, message, cause)}
}

// AsBase extracts the taxonomy base from err, walking the error chain.
func AsBase(err error) (*BaseError, bool) {
	var c carrier
	if errors.As(err, &c) {
		return c.Base(), true
	}
	return nil, false
}

// CodeOf extracts the gateway error code from err, walking the error
// chain. Unrecognized errors map to CodeInternal.
func CodeOf(err error) ErrorCode {
	if base, ok := AsBase(err); ok {
		return base.Code
	}
	return CodeInternal
}
