package gateway

import (
	"errors"
	"fmt"
)

// Code is the closed error taxonomy the gateway reports, each mapped to an HTTP
// status by internal/httpapi.
type Code string

const (
	FileNotFound           Code = "file_not_found"
	UnsupportedFileType    Code = "unsupported_file_type"
	LspClientNotFound      Code = "lsp_client_not_found"
	InternalError          Code = "internal_error"
	NotImplemented         Code = "not_implemented"
	RecursionLimitExceeded Code = "recursion_limit_exceeded"
	IdentifierNotFound     Code = "identifier_not_found_at_position"
)

// Error is the gateway's error type: a taxonomy Code plus a human message,
// with a plain Unwrap-able cause rather than a wrapping library.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error with no wrapped cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap constructs an *Error wrapping err.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// As reports whether err (or something it wraps) is a *Error, returning it.
func As(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// HTTPStatus maps a Code to its HTTP status.
func HTTPStatus(code Code) int {
	switch code {
	case FileNotFound, UnsupportedFileType:
		return 400
	case IdentifierNotFound:
		return 400
	case LspClientNotFound, InternalError, RecursionLimitExceeded:
		return 500
	case NotImplemented:
		return 501
	default:
		return 500
	}
}
