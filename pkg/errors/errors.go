package errors

import (
	"errors"
	"net/http"
)

// Codes surfaced in the response envelope.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeConflict           = "CONFLICT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
	CodeCacheMiss          = "CACHE_MISS"
	CodeServerReported     = "SERVER_REPORTED"
	CodeConnectivity       = "CONNECTION_FAILED"
	CodeActionInProgress   = "ACTION_IN_PROGRESS"
)

// Error is an application error that knows its HTTP status and envelope code.
// Cause is never serialised.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Cause   error  `json:"-"`
}

var (
	ErrInvalidCredentials = New(CodeInvalidCredentials, http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New(CodeAccountInactive, http.StatusForbidden, "account is inactive")
	ErrNotFound           = New(CodeNotFound, http.StatusNotFound, "resource not found")
	ErrForbidden          = New(CodeForbidden, http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New(CodeUnauthorized, http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New(CodeConflict, http.StatusConflict, "conflict")
	ErrValidation         = New(CodeValidation, http.StatusBadRequest, "validation failed")
	ErrInternal           = New(CodeInternal, http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New(CodeCacheMiss, http.StatusNotFound, "cache miss")
	ErrServerReported     = New(CodeServerReported, http.StatusBadGateway, "request failed")
	ErrConnectivity       = New(CodeConnectivity, http.StatusServiceUnavailable, "connection failed")
	ErrActionInProgress   = New(CodeActionInProgress, http.StatusConflict, "action already in progress")
)

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Cause != nil:
		return e.Message + ": " + e.Cause.Error()
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches any *Error with the same code, so errors.Is(err, ErrNotFound)
// holds for clones and wrapped copies.
func (e *Error) Is(target error) bool {
	var t *Error
	if e == nil || !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

// Wrap returns a copy of e carrying cause. An empty message keeps e's.
func (e *Error) Wrap(cause error, message string) *Error {
	out := Clone(e, message)
	if out != nil {
		out.Cause = cause
	}
	return out
}

// Clone copies err, optionally replacing its message.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	out := *err
	if message != "" {
		out.Message = message
	}
	return &out
}

// FromError finds the *Error in err's chain or reports err as internal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal.Wrap(err, "")
}

// Is reports whether err carries target's code.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	return errors.Is(err, target)
}
