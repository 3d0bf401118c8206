// Package errors provides custom error types for the ledgerbook API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import (
	stderrors "errors"
	"net/http"
)

// Kind classifies an AppError so callers can branch on the failure class
// without matching individual codes.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization"
	KindConflict      Kind = "conflict"
	KindPersistence   Kind = "persistence"
	KindRateLimited   Kind = "rate_limited"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Kind       Kind   `json:"-"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so a
// message-customised copy still matches its sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Kind:       sentinel.Kind,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Kind:       sentinel.Kind,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// KindOf returns the Kind of err, or KindPersistence for errors that are
// not AppErrors.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindPersistence
}

// Authentication & authorization errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", Kind: KindAuthorization, StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &AppError{Code: "FORBIDDEN", Message: "Access denied", Kind: KindAuthorization, StatusCode: http.StatusForbidden}
	ErrRateLimited  = &AppError{Code: "RATE_LIMITED", Message: "Too many requests, slow down", Kind: KindRateLimited, StatusCode: http.StatusTooManyRequests}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", Kind: KindValidation, StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", Kind: KindNotFound, StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", Kind: KindPersistence, StatusCode: http.StatusInternalServerError}
)

// Entry errors.
var (
	ErrEntryNotFound         = &AppError{Code: "ENTRY_NOT_FOUND", Message: "Entry not found", Kind: KindNotFound, StatusCode: http.StatusNotFound}
	ErrEntryHasSettlements   = &AppError{Code: "ENTRY_HAS_SETTLEMENTS", Message: "Entry type and category cannot change while settlements exist", Kind: KindValidation, StatusCode: http.StatusBadRequest}
	ErrDerivedEntryImmutable = &AppError{Code: "DERIVED_ENTRY_IMMUTABLE", Message: "Settlement-derived entries only allow note changes", Kind: KindValidation, StatusCode: http.StatusBadRequest}
)

// Settlement errors.
var (
	ErrSettlementNotFound     = &AppError{Code: "SETTLEMENT_NOT_FOUND", Message: "Settlement not found", Kind: KindNotFound, StatusCode: http.StatusNotFound}
	ErrEntryNotSettleable     = &AppError{Code: "ENTRY_NOT_SETTLEABLE", Message: "Only credit and advance entries can be settled", Kind: KindValidation, StatusCode: http.StatusBadRequest}
	ErrExceedsRemaining       = &AppError{Code: "EXCEEDS_REMAINING_BALANCE", Message: "Settlement amount exceeds remaining balance", Kind: KindValidation, StatusCode: http.StatusBadRequest}
	ErrConcurrentModification = &AppError{Code: "CONCURRENT_MODIFICATION", Message: "The entry was modified concurrently, please retry", Kind: KindConflict, StatusCode: http.StatusConflict}
)

// Party errors.
var (
	ErrPartyNotFound = &AppError{Code: "PARTY_NOT_FOUND", Message: "Party not found", Kind: KindNotFound, StatusCode: http.StatusNotFound}
)

// Alert errors.
var (
	ErrAlertNotFound = &AppError{Code: "ALERT_NOT_FOUND", Message: "Alert not found", Kind: KindNotFound, StatusCode: http.StatusNotFound}
)
