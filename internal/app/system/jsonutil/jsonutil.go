// Package jsonutil provides helper functions for JSON API responses.
//
// Use these helpers in API handlers to ensure consistent JSON responses
// with proper Content-Type headers and error formatting.
package jsonutil

import (
	"encoding/json"
	"net/http"

	"github.com/driveyard/driveyard/internal/app/system/apperr"
)

// JSON writes a JSON response with the given status code.
//
// Usage:
//
//	jsonutil.JSON(w, http.StatusOK, map[string]any{
//	    "status": "success",
//	    "data": result,
//	})
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// OK writes a 200 OK JSON response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 Created JSON response.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes a 204 No Content response (no body).
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status code.
// The response body is {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// BadRequest writes a 400 Bad Request error response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 Unauthorized error response carrying the
// auth-required wire code.
func Unauthorized(w http.ResponseWriter, message string) {
	JSON(w, http.StatusUnauthorized, map[string]string{
		"error": message,
		"code":  apperr.CodeAuthRequired,
	})
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// InternalError writes a 500 Internal Server Error response.
// Use this for unexpected server errors. Do not expose internal details
// to clients - log the actual error separately.
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}

// errorBody is the wire shape of an application error. Optional fields
// are omitted when unset.
type errorBody struct {
	Error        string             `json:"error"`
	Code         string             `json:"code"`
	Details      []apperr.FileError `json:"details,omitempty"`
	CurrentUsage *int64             `json:"currentUsage,omitempty"`
	Limit        *int64             `json:"limit,omitempty"`
}

// WriteError renders err as a JSON error response. Application errors
// carry their own status code, machine-readable code, and any
// per-file or quota details; everything else becomes a generic 500.
func WriteError(w http.ResponseWriter, err error) {
	e := apperr.From(err)
	body := errorBody{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
	if e.Code == apperr.CodeQuotaExceeded {
		body.CurrentUsage = &e.CurrentUsage
		body.Limit = &e.Limit
	}
	JSON(w, e.Status, body)
}

// Decode reads and decodes JSON from the request body into v.
// Returns an error that can be passed to BadRequest if decoding fails.
//
// Usage:
//
//	var input UpdateFileInput
//	if err := jsonutil.Decode(r, &input); err != nil {
//	    jsonutil.BadRequest(w, err.Error())
//	    return
//	}
func Decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
