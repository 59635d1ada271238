package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
)

// IndentError is a coded indentstat error. Category and Severity follow
// from Code; Severity decides whether a run skips the input or stops.
type IndentError struct {
	Code       string
	Message    string
	Category   Category
	Severity   Severity
	Details    map[string]string // e.g. "path", "profile"
	Cause      error
	Suggestion string // printed as the CLI hint
}

func (e *IndentError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *IndentError) Unwrap() error {
	return e.Cause
}

// Is matches another IndentError by code, so errors.Is(err, New(code, "", nil))
// tests for a code anywhere in the chain.
func (e *IndentError) Is(target error) bool {
	t, ok := target.(*IndentError)
	return ok && e.Code == t.Code
}

// WithDetail sets a detail and returns e for chaining.
func (e *IndentError) WithDetail(key, value string) *IndentError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion sets the hint shown under the CLI error line.
func (e *IndentError) WithSuggestion(suggestion string) *IndentError {
	e.Suggestion = suggestion
	return e
}

// New creates an IndentError for code.
func New(code string, message string, cause error) *IndentError {
	return &IndentError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap gives a plain error a code, keeping its text as the message.
func Wrap(code string, err error) *IndentError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError reports an invalid configuration file or value.
func ConfigError(message string, cause error) *IndentError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError reports that path could not be read. The code follows the cause:
// not found, permission denied, or any other read failure.
func IOError(path string, cause error) *IndentError {
	code := ErrCodeFileRead
	switch {
	case stderrors.Is(cause, fs.ErrNotExist):
		code = ErrCodeFileNotFound
	case stderrors.Is(cause, fs.ErrPermission):
		code = ErrCodeFilePermission
	}
	return New(code, fmt.Sprintf("cannot read %s", path), cause).WithDetail("path", path)
}

// ValidationError reports a bad flag or argument value.
func ValidationError(message string, cause error) *IndentError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError reports a failure that is not the user's input.
func InternalError(message string, cause error) *IndentError {
	return New(ErrCodeInternal, message, cause)
}

// As finds the first IndentError in err's chain.
func As(err error) (*IndentError, bool) {
	var ie *IndentError
	if stderrors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// IsSkippable reports whether err only affects a single input, so the run
// can report it and move on.
func IsSkippable(err error) bool {
	ie, ok := As(err)
	return ok && ie.Severity == SeverityWarning
}

// GetCode returns the code of the first IndentError in err's chain, or "".
func GetCode(err error) string {
	if ie, ok := As(err); ok {
		return ie.Code
	}
	return ""
}
