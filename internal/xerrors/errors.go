// Package xerrors provides the coded, wrapped error type used across
// sqlvault. It mirrors the shape of a typical internal errors package:
// a small enum of stable codes plus Wrap/Wrapf/New constructors, with
// stdlib errors.Is/As support via Unwrap.
package xerrors

import "fmt"

// Code identifies the class of failure. Callers should switch on Code,
// never on the formatted message.
type Code int

const (
	// CodeUnknown is never constructed directly; it signals a missing Code.
	CodeUnknown Code = iota
	CodeConfig
	CodeUnsupportedType
	CodeTypeMismatch
	CodeNonNullableNull
	CodeInvalidEncoding
	CodeInvalidDate
	CodeInvalidDateTime
	CodeDecimalParse
	CodeReadError
	CodeWriteError
	CodeBatchShapeMismatch
	CodePrematureEndOfStream
	CodeUnrecoverable
)

func (c Code) String() string {
	switch c {
	case CodeConfig:
		return "config"
	case CodeUnsupportedType:
		return "unsupported_type"
	case CodeTypeMismatch:
		return "type_mismatch"
	case CodeNonNullableNull:
		return "non_nullable_null"
	case CodeInvalidEncoding:
		return "invalid_encoding"
	case CodeInvalidDate:
		return "invalid_date"
	case CodeInvalidDateTime:
		return "invalid_datetime"
	case CodeDecimalParse:
		return "decimal_parse"
	case CodeReadError:
		return "read_error"
	case CodeWriteError:
		return "write_error"
	case CodeBatchShapeMismatch:
		return "batch_shape_mismatch"
	case CodePrematureEndOfStream:
		return "premature_end_of_stream"
	case CodeUnrecoverable:
		return "unrecoverable"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by every sqlvault package.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap lets errors.Is/errors.As see through to the wrapped cause.
func (e *Error) Unwrap() error { return e.Cause }

// New constructs an *Error with no wrapped cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a Code and message to an existing error.
func Wrap(cause error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(cause error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// HasCode reports whether err (or any error it wraps) carries the given Code.
func HasCode(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Code == code {
				return true
			}
			err = e.Cause
			continue
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
