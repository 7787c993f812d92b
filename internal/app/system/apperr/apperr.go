// Package apperr defines the typed errors the API surfaces to clients.
//
// Handlers return *Error values from their helpers and render them with
// jsonutil.WriteError, which maps Status to the HTTP code and serializes
// Code plus any detail payload. Anything that is not an *Error renders
// as a generic 500 so internal details never leak.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes returned in response bodies.
const (
	CodeAuthRequired  = "AUTH_REQUIRED"
	CodeValidation    = "VALIDATION_ERROR"
	CodeTooManyFiles  = "TOO_MANY_FILES"
	CodeInvalidFiles  = "INVALID_FILES"
	CodeQuotaExceeded = "QUOTA_EXCEEDED"
	CodeNotFound      = "NOT_FOUND"
	CodeGone          = "GONE"
	CodeConflict      = "CONFLICT"
	CodeInternal      = "INTERNAL_ERROR"
)

// FileError describes why one file in an upload batch was rejected.
type FileError struct {
	Name    string   `json:"name"`
	Reasons []string `json:"reasons"`
}

// Error is an API error with an HTTP status and a wire code.
type Error struct {
	Status  int    // HTTP status to respond with
	Code    string // machine-readable code
	Message string

	// Per-file rejection detail (invalid-files errors only).
	Details []FileError

	// Quota detail (quota-exceeded errors only).
	CurrentUsage int64
	Limit        int64
}

func (e *Error) Error() string {
	return e.Message
}

// AuthRequired returns a 401 error for requests without a valid session.
func AuthRequired() *Error {
	return &Error{
		Status:  http.StatusUnauthorized,
		Code:    CodeAuthRequired,
		Message: "authentication required",
	}
}

// Validation returns a 400 error for malformed client input.
func Validation(format string, args ...any) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    CodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// TooManyFiles returns a 400 error for an oversized upload batch.
func TooManyFiles(count, max int) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    CodeTooManyFiles,
		Message: fmt.Sprintf("too many files: got %d, maximum is %d per upload", count, max),
	}
}

// InvalidFiles returns a 400 error carrying one entry per rejected
// file, each with its specific reasons.
func InvalidFiles(details []FileError) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    CodeInvalidFiles,
		Message: fmt.Sprintf("%d file(s) failed validation", len(details)),
		Details: details,
	}
}

// QuotaExceeded returns a 413 error carrying current usage and the
// limit so the client can show an actionable message.
func QuotaExceeded(currentUsage, limit int64) *Error {
	return &Error{
		Status:       http.StatusRequestEntityTooLarge,
		Code:         CodeQuotaExceeded,
		Message:      "storage quota exceeded",
		CurrentUsage: currentUsage,
		Limit:        limit,
	}
}

// NotFound returns a 404 error. Not-owned resources get the same
// answer as missing ones so existence is never leaked across users.
func NotFound(resource string) *Error {
	return &Error{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: resource + " not found",
	}
}

// Gone returns a 410 error for operations on trashed files.
func Gone(message string) *Error {
	return &Error{
		Status:  http.StatusGone,
		Code:    CodeGone,
		Message: message,
	}
}

// Conflict returns a 409 error.
func Conflict(message string) *Error {
	return &Error{
		Status:  http.StatusConflict,
		Code:    CodeConflict,
		Message: message,
	}
}

// Internal returns a 500 error with a client-safe message. Log the
// underlying error separately.
func Internal(message string) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: message,
	}
}

// From converts any error to an *Error, wrapping unknown errors as a
// generic internal error.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("internal server error")
}
