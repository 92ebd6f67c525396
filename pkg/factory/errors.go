package factory

import (
	"errors"
	"fmt"
)

// ErrorCode classifies query failures.
type ErrorCode string

const (
	// ErrCodeParse indicates the input does not match the query grammar.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodeResolution indicates an entity expression matched nothing, or
	// matched several entities where one was required.
	ErrCodeResolution ErrorCode = "RESOLUTION_ERROR"
	// ErrCodeCompilation indicates structurally invalid query content.
	ErrCodeCompilation ErrorCode = "COMPILATION_ERROR"
	// ErrCodeInternal indicates a failure unrelated to the query text.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Error is a user-visible query error. Message is shown verbatim to the user.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// NewErrorWithContext creates a new Error with context information.
func NewErrorWithContext(code ErrorCode, message string, context map[string]any) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// WrapError wraps an existing error.
func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or
// ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Code == code
}

// UserMessage returns the text to show a user for err.
func UserMessage(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}
