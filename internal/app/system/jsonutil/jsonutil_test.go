package jsonutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/driveyard/driveyard/internal/app/system/apperr"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
		wantBody   string
	}{
		{
			name:       "200 OK with data",
			status:     http.StatusOK,
			data:       map[string]string{"message": "hello"},
			wantStatus: http.StatusOK,
			wantBody:   `{"message":"hello"}`,
		},
		{
			name:       "201 Created with data",
			status:     http.StatusCreated,
			data:       map[string]int{"id": 123},
			wantStatus: http.StatusCreated,
			wantBody:   `{"id":123}`,
		},
		{
			name:       "nil data",
			status:     http.StatusOK,
			data:       nil,
			wantStatus: http.StatusOK,
			wantBody:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			JSON(rec, tt.status, tt.data)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			body := strings.TrimSpace(rec.Body.String())
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, "invalid input")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("json unmarshal error: %v", err)
	}
	if got["error"] != "invalid input" {
		t.Errorf("error = %q, want 'invalid input'", got["error"])
	}
}

func TestUnauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	Unauthorized(rec, "authentication required")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("json unmarshal error: %v", err)
	}
	if got["error"] != "authentication required" {
		t.Errorf("error = %q, want 'authentication required'", got["error"])
	}
	if got["code"] != apperr.CodeAuthRequired {
		t.Errorf("code = %q, want %q", got["code"], apperr.CodeAuthRequired)
	}
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	NoContent(rec)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body should be empty, got %q", rec.Body.String())
	}
}

func TestWriteError_Validation(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, apperr.Validation("name is required"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	var got struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("json unmarshal error: %v", err)
	}
	if got.Code != apperr.CodeValidation {
		t.Errorf("code = %q, want %q", got.Code, apperr.CodeValidation)
	}
	if got.Error != "name is required" {
		t.Errorf("error = %q, want 'name is required'", got.Error)
	}
}

func TestWriteError_InvalidFilesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, apperr.InvalidFiles([]apperr.FileError{
		{Name: "huge.bin", Reasons: []string{"too large", "unsupported type"}},
	}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	var got struct {
		Code    string `json:"code"`
		Details []struct {
			Name    string   `json:"name"`
			Reasons []string `json:"reasons"`
		} `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("json unmarshal error: %v", err)
	}
	if got.Code != apperr.CodeInvalidFiles {
		t.Errorf("code = %q, want %q", got.Code, apperr.CodeInvalidFiles)
	}
	if len(got.Details) != 1 || got.Details[0].Name != "huge.bin" || len(got.Details[0].Reasons) != 2 {
		t.Errorf("details = %+v, want one entry with both reasons", got.Details)
	}
}

func TestWriteError_QuotaCarriesUsage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, apperr.QuotaExceeded(4<<30, 5<<30))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}

	var got struct {
		Code         string `json:"code"`
		CurrentUsage *int64 `json:"currentUsage"`
		Limit        *int64 `json:"limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("json unmarshal error: %v", err)
	}
	if got.Code != apperr.CodeQuotaExceeded {
		t.Errorf("code = %q, want %q", got.Code, apperr.CodeQuotaExceeded)
	}
	if got.CurrentUsage == nil || *got.CurrentUsage != 4<<30 {
		t.Errorf("currentUsage = %v, want %d", got.CurrentUsage, int64(4<<30))
	}
	if got.Limit == nil || *got.Limit != 5<<30 {
		t.Errorf("limit = %v, want %d", got.Limit, int64(5<<30))
	}
}

func TestWriteError_UnknownErrorBecomes500(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("mongo: connection reset"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var got struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("json unmarshal error: %v", err)
	}
	if got.Code != apperr.CodeInternal {
		t.Errorf("code = %q, want %q", got.Code, apperr.CodeInternal)
	}
	// Internal details must never reach the client.
	if strings.Contains(got.Error, "mongo") {
		t.Errorf("error = %q, leaks internal detail", got.Error)
	}
}

func TestDecode(t *testing.T) {
	body := `{"name":"test","value":123}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var got map[string]any
	if err := Decode(req, &got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got["name"] != "test" {
		t.Errorf("name = %v, want test", got["name"])
	}

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{invalid}`))
	if err := Decode(bad, &got); err == nil {
		t.Error("Decode() should fail for invalid JSON")
	}
}
