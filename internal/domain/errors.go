package domain

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes pipeline failures.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConversion ErrorKind = "conversion"
	KindIO         ErrorKind = "io"
	KindAPI        ErrorKind = "api"
	KindConfig     ErrorKind = "config"
)

// Error is the typed error carried across pipeline stages.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by kind so callers can branch on categories.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func newError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// ValidationError marks bad input (missing file, wrong extension, bad flag).
func ValidationError(msg string, cause error) *Error {
	return newError(KindValidation, msg, cause)
}

// ConversionError marks a failed page render or image encode.
func ConversionError(msg string, cause error) *Error {
	return newError(KindConversion, msg, cause)
}

// IOError marks a filesystem failure.
func IOError(msg string, cause error) *Error {
	return newError(KindIO, msg, cause)
}

// APIError marks a failed or malformed model-service exchange.
func APIError(msg string, cause error) *Error {
	return newError(KindAPI, msg, cause)
}

// ConfigError marks invalid or missing configuration.
func ConfigError(msg string, cause error) *Error {
	return newError(KindConfig, msg, cause)
}

// KindOf returns the kind of the first Error in err's chain, or empty for
// foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
