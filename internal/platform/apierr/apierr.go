package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable codes surfaced in error envelopes. The auth codes stay
// distinct so clients can tell an expired token from a rejected one.
const (
	CodeAuthMissing      = "auth_missing"
	CodeAuthExpired      = "auth_expired"
	CodeAuthInvalid      = "auth_invalid"
	CodeValidationFailed = "validation_failed"
	CodeNotFound         = "not_found"
	CodeInternal         = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error

	// Message, when set, replaces Err in the caller-visible rendering while
	// Err stays reachable through Unwrap for server-side logging.
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func AuthMissing(err error) *Error {
	return New(http.StatusUnauthorized, CodeAuthMissing, err)
}

func AuthExpired(err error) *Error {
	return New(http.StatusUnauthorized, CodeAuthExpired, err)
}

func AuthInvalid(err error) *Error {
	return New(http.StatusForbidden, CodeAuthInvalid, err)
}

func Validation(err error) *Error {
	return New(http.StatusBadRequest, CodeValidationFailed, err)
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

// Internal keeps the cause for server-side logging but hides it from the
// caller; persistence detail never leaves the process.
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Err: err, Message: "internal error"}
}

// Resolve returns err as an *Error, defaulting anything untyped to a 500.
func Resolve(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
