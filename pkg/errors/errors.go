package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// Error represents a service error with an API code and stack trace
type Error struct {
	Status  int      `json:"-"`                // HTTP status for the authenticated paths
	Code    string   `json:"code"`             // stable API error code
	Message string   `json:"message"`
	Err     error    `json:"-"`                // wrapped cause, not serialized
	Fields  []string `json:"fields,omitempty"` // field-level validation messages
	Stack   string   `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements the errors.Wrapper interface
func (e *Error) Unwrap() error {
	return e.Err
}

// WithCode creates a new error with an API code
func WithCode(code, message string) *Error {
	return &Error{
		Status:  StatusOf(code),
		Code:    code,
		Message: message,
		Stack:   captureStack(),
	}
}

// WithCodef creates a new error with an API code and formatted message
func WithCodef(code, format string, args ...interface{}) *Error {
	return &Error{
		Status:  StatusOf(code),
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(),
	}
}

// Wrap wraps an error with message
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
		Stack:   captureStack(),
	}
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Err:     err,
		Stack:   captureStack(),
	}
}

// New creates a new error
func New(message string) *Error {
	return &Error{
		Message: message,
		Stack:   captureStack(),
	}
}

// Validation creates a 400 error carrying field-level messages
func Validation(fields ...string) *Error {
	return &Error{
		Status:  StatusOf(CodeValidation),
		Code:    CodeValidation,
		Message: "validation failed",
		Fields:  fields,
		Stack:   captureStack(),
	}
}

// WithStatus returns a copy of the error with an overridden HTTP
// status. The SMS path surfaces not-found conditions as 422.
func (e *Error) WithStatus(status int) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Status = status
	return &clone
}

func captureStack() string {
	var sb strings.Builder
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if strings.Contains(frame.File, "runtime/") {
			break
		}
		sb.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		if !more {
			break
		}
	}
	return sb.String()
}
