// Package errors defines the coded errors shared by the readstack packages.
//
// Every error a user can act on carries a [Code]. The CLI maps the code's
// [Category] to an exit status and the figure server maps it to an HTTP
// status, so both report the same failure the same way:
//
//	rec, err := r.Read()
//	if err != nil {
//	    return errors.Wrap(errors.ErrCodeInvalidRecord, err, "%s line %d", path, r.Line())
//	}
//
//	if errors.Is(err, errors.ErrCodeInvalidRegion) {
//	    // ask for a different region
//	}
//
// The package shadows the standard library's errors package; import that
// one under another name where both are needed.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

// Codes for invalid input.
const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"
	ErrCodeInvalidRegion   Code = "INVALID_REGION"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidOrder    Code = "INVALID_ORDER"
	ErrCodeInvalidRecord   Code = "INVALID_RECORD"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
)

// Codes for missing resources.
const (
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"
	ErrCodeTrackNotFound Code = "TRACK_NOT_FOUND"
)

// Codes for failures the caller cannot fix by changing input.
const (
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Category groups codes by who has to act.
type Category int

// Categories.
const (
	CategoryInternal Category = iota // unknown codes land here
	CategoryInvalid
	CategoryNotFound
	CategoryUnsupported
)

var categories = map[Code]Category{
	ErrCodeInvalidInput:    CategoryInvalid,
	ErrCodeInvalidArgument: CategoryInvalid,
	ErrCodeInvalidRegion:   CategoryInvalid,
	ErrCodeInvalidFormat:   CategoryInvalid,
	ErrCodeInvalidOrder:    CategoryInvalid,
	ErrCodeInvalidRecord:   CategoryInvalid,
	ErrCodeInvalidConfig:   CategoryInvalid,
	ErrCodeInvalidPath:     CategoryInvalid,
	ErrCodeNotFound:        CategoryNotFound,
	ErrCodeFileNotFound:    CategoryNotFound,
	ErrCodeTrackNotFound:   CategoryNotFound,
	ErrCodeUnsupported:     CategoryUnsupported,
}

// Category returns the category of c.
func (c Code) Category() Category { return categories[c] }

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error formats as "CODE: message" or "CODE: message: cause".
func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetCodeOr is GetCode with a fallback for errors that carry no code.
func GetCodeOr(err error, fallback Code) Code {
	if c := GetCode(err); c != "" {
		return c
	}
	return fallback
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// IsInvalid reports whether err carries an INVALID_* code.
func IsInvalid(err error) bool {
	return err != nil && GetCode(err).Category() == CategoryInvalid
}

// IsNotFound reports whether err carries a *_NOT_FOUND code.
func IsNotFound(err error) bool {
	return err != nil && GetCode(err).Category() == CategoryNotFound
}

// UserMessage returns err's message chain without codes, for display.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + UserMessage(e.Cause)
}
