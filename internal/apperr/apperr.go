// Package apperr is the closed set of outcomes the auth core can report to a caller.
//
// Every failure that crosses the account service or access gate boundary is an
// *Error carrying exactly one Kind. Lower-layer faults are re-labeled KindInternal
// and keep their cause only for server-side logging.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind enumerates the error taxonomy.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAccountExists
	KindInvalidCredentials
	KindMissingToken
	KindInvalidToken
	KindAdminRequired
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAccountExists:
		return "account_exists"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindMissingToken:
		return "missing_token"
	case KindInvalidToken:
		return "invalid_token"
	case KindAdminRequired:
		return "admin_required"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Wire codes returned to clients.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeAccountExists      = "AUTH_USER_EXISTS"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeMissingToken       = "AUTH_MISSING_TOKEN"
	CodeInvalidToken       = "AUTH_INVALID_TOKEN"
	CodeAdminRequired      = "AUTH_ADMIN_REQUIRED"
	CodeNotFound           = "AUTH_USER_NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

// Code returns the wire code for k.
func Code(k Kind) string {
	switch k {
	case KindValidation:
		return CodeValidation
	case KindAccountExists:
		return CodeAccountExists
	case KindInvalidCredentials:
		return CodeInvalidCredentials
	case KindMissingToken:
		return CodeMissingToken
	case KindInvalidToken:
		return CodeInvalidToken
	case KindAdminRequired:
		return CodeAdminRequired
	case KindNotFound:
		return CodeNotFound
	default:
		return CodeInternal
	}
}

// Status returns the HTTP status for k.
func Status(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAccountExists:
		return http.StatusConflict
	case KindInvalidCredentials, KindMissingToken, KindInvalidToken:
		return http.StatusUnauthorized
	case KindAdminRequired:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Field is set for validation failures only.
// Op names the operation for logs; Cause is never sent to clients.
type Error struct {
	Kind  Kind
	Field string
	Op    string
	Cause error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, apperr.ErrInvalidCredentials).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

// Shared values for the kinds that carry no extra context. The two
// InvalidCredentials paths in login return this exact value.
var (
	ErrAccountExists      = &Error{Kind: KindAccountExists}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrMissingToken       = &Error{Kind: KindMissingToken}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken}
	ErrAdminRequired      = &Error{Kind: KindAdminRequired}
	ErrNotFound           = &Error{Kind: KindNotFound}
)

// Validation reports the first offending field.
func Validation(field string) *Error {
	return &Error{Kind: KindValidation, Field: field}
}

// Internal labels an unexpected lower-layer failure.
func Internal(op string, cause error) *Error {
	return &Error{Kind: KindInternal, Op: op, Cause: cause}
}

// From classifies err. Nil stays nil; anything unclassified becomes KindInternal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("", err)
}
