package files

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/driveyard/driveyard/internal/app/store/file"
	"github.com/driveyard/driveyard/internal/app/system/apperr"
	"github.com/driveyard/driveyard/internal/app/system/blob"
	"github.com/driveyard/driveyard/internal/app/system/inputval"
	"github.com/driveyard/driveyard/internal/app/system/jsonutil"
	"github.com/driveyard/driveyard/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxMultipartMemory is the in-memory buffer for multipart parsing;
// larger parts spill to temp files.
const maxMultipartMemory = 32 << 20

// UploadHandler handles POST /api/files.
//
// The request is multipart/form-data with one or more "files" parts and
// an optional "folderId" field. The whole batch is validated and
// checked against the caller's storage quota before any object is
// written; after admission each file is stored independently, so one
// bad file fails alone. All-success responds 200, any failure after
// admission responds 207 with per-file errors.
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requestUser(r)
	if err != nil {
		jsonutil.WriteError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		jsonutil.WriteError(w, apperr.Validation("invalid multipart request"))
		return
	}

	var folderID *primitive.ObjectID
	if folderHex := r.FormValue("folderId"); folderHex != "" {
		oid, err := primitive.ObjectIDFromHex(folderHex)
		if err != nil {
			jsonutil.WriteError(w, apperr.Validation("invalid folder id"))
			return
		}
		if _, err := h.folders.GetByID(r.Context(), oid, ownerID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				jsonutil.WriteError(w, apperr.NotFound("folder"))
				return
			}
			h.logger.Error("failed to load folder", zap.Error(err))
			jsonutil.WriteError(w, apperr.Internal("upload failed"))
			return
		}
		folderID = &oid
	}

	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["files"]
	}

	// Validate the whole batch before touching storage.
	batch := make([]inputval.UploadFile, 0, len(headers))
	for _, fh := range headers {
		batch = append(batch, inputval.UploadFile{
			Name:     fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
		})
	}
	if err := inputval.ValidateUploadBatch(batch, h.cfg.MaxUploadFiles, h.cfg.MaxFileSize); err != nil {
		jsonutil.WriteError(w, err)
		return
	}

	// Quota admission: the batch is admitted or rejected as a whole.
	// Concurrent uploads can both pass this check, so the quota is a
	// soft limit under races.
	user, err := h.users.GetByID(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("failed to load user for quota check", zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("upload failed"))
		return
	}
	usage, err := h.files.StorageUsed(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("failed to compute storage usage", zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("upload failed"))
		return
	}
	limit := h.quotaFor(user)
	var incoming int64
	for _, f := range batch {
		incoming += f.Size
	}
	if usage+incoming > limit {
		jsonutil.WriteError(w, apperr.QuotaExceeded(usage, limit))
		return
	}

	// Store each admitted file independently.
	stored := []models.File{}
	var failures []UploadError
	for _, fh := range headers {
		f, err := h.storeOne(r, ownerID, folderID, fh)
		if err != nil {
			h.logger.Warn("file upload failed",
				zap.String("name", fh.Filename),
				zap.Int64("size", fh.Size),
				zap.Error(err))
			failures = append(failures, UploadError{Name: fh.Filename, Error: err.Error()})
			continue
		}
		stored = append(stored, *f)
	}

	status := http.StatusOK
	if len(failures) > 0 {
		status = http.StatusMultiStatus
	}
	jsonutil.JSON(w, status, UploadResponse{Files: stored, Errors: failures})
}

// storeOne writes one file's bytes to the object store (with retries)
// and then records its metadata. The object write is the flaky step;
// the metadata insert is not retried.
func (h *Handler) storeOne(r *http.Request, ownerID primitive.ObjectID, folderID *primitive.ObjectID, fh *multipart.FileHeader) (*models.File, error) {
	name := inputval.SanitizeName(fh.Filename)
	if name == "" {
		name = "unnamed"
	}
	key := objectKey(ownerID, name)
	contentType := fh.Header.Get("Content-Type")

	err := h.cfg.Retry.Do(r.Context(), func(ctx context.Context) error {
		src, err := fh.Open()
		if err != nil {
			return err
		}
		defer src.Close()
		return h.blobs.Put(ctx, key, src, fh.Size, blob.PutOptions{ContentType: contentType})
	})
	if err != nil {
		return nil, err
	}

	f, err := h.files.Create(r.Context(), file.CreateInput{
		OwnerID:      ownerID,
		FolderID:     folderID,
		Name:         name,
		OriginalName: fh.Filename,
		MimeType:     contentType,
		Size:         fh.Size,
		StorageKey:   key,
	})
	if err != nil {
		// The object is stored but unrecorded; remove it so it cannot
		// leak storage.
		if rmErr := h.blobs.Remove(r.Context(), key); rmErr != nil {
			h.logger.Warn("failed to remove orphaned object",
				zap.String("key", key),
				zap.Error(rmErr))
		}
		return nil, err
	}

	h.logger.Debug("file stored",
		zap.String("file_id", f.ID.Hex()),
		zap.String("key", key),
		zap.Int64("size", f.Size))
	return f, nil
}

// objectKey builds a collision-free object key partitioned by owner and
// month, keeping a readable trace of the original name.
func objectKey(ownerID primitive.ObjectID, name string) string {
	now := time.Now().UTC()
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	if len(base) > 64 {
		base = base[:64]
	}
	return fmt.Sprintf("users/%s/%04d/%02d/%d-%s-%s%s",
		ownerID.Hex(), now.Year(), int(now.Month()),
		now.UnixMilli(), uuid.NewString()[:8], base, ext)
}
