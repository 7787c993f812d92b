// Package inputval validates and sanitizes client-supplied upload
// batches and display names.
//
// Upload validation runs strictly before the quota check and before
// any object-store call, so one malformed file can never leave partial
// uploads behind.
package inputval

import (
	"strings"

	"github.com/driveyard/driveyard/internal/app/system/apperr"
	"github.com/microcosm-cc/bluemonday"
)

// Upload batch limits.
const (
	MaxFilesPerUpload = 10
	MaxFileSize       = 100 << 20 // 100 MiB per file
	MaxNameLength     = 255
)

// forbiddenNameChars are path-control characters not allowed in file
// or folder names.
const forbiddenNameChars = `<>:"/\|?*`

// allowedMimeTypes is the upload allow-list beyond image/*: PDF, plain
// text, and the common Office formats.
var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"text/plain":      true,
	"text/csv":        true,
	"application/msword":            true,
	"application/vnd.ms-excel":      true,
	"application/vnd.ms-powerpoint": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
}

// namePolicy strips all markup from user-supplied names.
var namePolicy = bluemonday.StrictPolicy()

// UploadFile describes one candidate file in an upload batch.
type UploadFile struct {
	Name     string
	MimeType string
	Size     int64
}

// MimeAllowed reports whether a declared MIME type is on the upload
// allow-list.
func MimeAllowed(mimeType string) bool {
	if strings.HasPrefix(mimeType, "image/") {
		return true
	}
	return allowedMimeTypes[mimeType]
}

// ValidateUploadBatch checks an upload batch against the configured
// limits. maxFiles and maxFileSize fall back to the package defaults
// when zero. The returned error is always an *apperr.Error; invalid
// files are batched into one error naming every offender with its
// specific reasons.
func ValidateUploadBatch(files []UploadFile, maxFiles int, maxFileSize int64) error {
	if maxFiles <= 0 {
		maxFiles = MaxFilesPerUpload
	}
	if maxFileSize <= 0 {
		maxFileSize = MaxFileSize
	}

	if len(files) == 0 {
		return apperr.Validation("no files uploaded")
	}
	if len(files) > maxFiles {
		return apperr.TooManyFiles(len(files), maxFiles)
	}

	var details []apperr.FileError
	for _, f := range files {
		var reasons []string
		if f.Size > maxFileSize {
			reasons = append(reasons, "too large")
		}
		if !MimeAllowed(f.MimeType) {
			reasons = append(reasons, "unsupported type")
		}
		if len(reasons) > 0 {
			details = append(details, apperr.FileError{Name: f.Name, Reasons: reasons})
		}
	}
	if len(details) > 0 {
		return apperr.InvalidFiles(details)
	}

	return nil
}

// SanitizeName strips markup and surrounding whitespace from a
// user-supplied display name.
func SanitizeName(name string) string {
	return strings.TrimSpace(namePolicy.Sanitize(name))
}

// ValidateName checks a file or folder display name: non-empty, at
// most 255 characters, no path-control characters.
func ValidateName(name string) error {
	if name == "" {
		return apperr.Validation("name is required")
	}
	if len(name) > MaxNameLength {
		return apperr.Validation("name must be at most %d characters", MaxNameLength)
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return apperr.Validation(`name must not contain any of %s`, forbiddenNameChars)
	}
	return nil
}
