package execution

import (
	"errors"
	"fmt"
)

// ErrorCode identifies well-known error categories raised while resolving,
// running, or reporting on a program execution.
type ErrorCode string

const (
	ErrCodeMissingProgramID  ErrorCode = "MISSING_PROGRAM_ID"
	ErrCodeMissingCredential ErrorCode = "MISSING_CREDENTIAL"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeInputExhausted    ErrorCode = "INPUT_EXHAUSTED"
	ErrCodeExecution         ErrorCode = "EXECUTION_ERROR"
	ErrCodeConnectionClosed  ErrorCode = "CONNECTION_CLOSED"
	ErrCodeCancelled         ErrorCode = "CANCELLED"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// DomainError represents a typed error enriched with contextual data while
// remaining free from infrastructure dependencies.
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As usage.
func (e *DomainError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is allows errors.Is comparisons against other DomainError values. A target
// without a message matches every error carrying the same code.
func (e *DomainError) Is(target error) bool {
	var domainErr *DomainError
	if !errors.As(target, &domainErr) {
		return false
	}
	if domainErr.Message == "" {
		return e.Code == domainErr.Code
	}
	return e.Code == domainErr.Code && e.Message == domainErr.Message
}

// WithContext clones the error with additional contextual metadata.
func (e *DomainError) WithContext(ctx map[string]interface{}) *DomainError {
	if e == nil {
		return nil
	}
	merged := make(map[string]interface{}, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Context: merged,
	}
}

// NewError constructs a DomainError with the supplied code and message.
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{Code: code, Message: message, Cause: cause}
}

// Sentinels for errors.Is checks; they match any DomainError with the same code.
var (
	ErrMissingProgramID  = &DomainError{Code: ErrCodeMissingProgramID}
	ErrMissingCredential = &DomainError{Code: ErrCodeMissingCredential}
	ErrNotFound          = &DomainError{Code: ErrCodeNotFound}
	ErrUnauthorized      = &DomainError{Code: ErrCodeUnauthorized}
	ErrInputExhausted    = &DomainError{Code: ErrCodeInputExhausted}
	ErrExecution         = &DomainError{Code: ErrCodeExecution}
	ErrConnectionClosed  = &DomainError{Code: ErrCodeConnectionClosed}
)

// CodeOf returns the code of the first DomainError in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ErrCodeInternal
}

// MessageOf returns the user-facing text for err: the message of an execution
// failure as reported by the engine, or the domain message otherwise.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return err.Error()
	}
	if domainErr.Code == ErrCodeExecution && domainErr.Cause != nil {
		return domainErr.Cause.Error()
	}
	if domainErr.Message != "" {
		return domainErr.Message
	}
	return string(domainErr.Code)
}

// NewInputExhaustedError reports a read past the end of a fixed input queue.
func NewInputExhaustedError(consumed int) *DomainError {
	return &DomainError{
		Code:    ErrCodeInputExhausted,
		Message: "no input left to read",
		Context: map[string]interface{}{"consumed": consumed},
	}
}

// NewExecutionError wraps an engine failure as a terminal execution error.
func NewExecutionError(cause error) *DomainError {
	return &DomainError{Code: ErrCodeExecution, Message: "program execution failed", Cause: cause}
}
