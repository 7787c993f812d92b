// Package files provides the file API: view-based listing and search,
// multipart upload with quota enforcement, presigned download and
// preview redirects, metadata updates, and permanent deletion.
//
// Endpoints (mounted at /api/files):
//   - GET    /api/files            - List files by view or search
//   - POST   /api/files            - Upload a batch of files
//   - GET    /api/files/{id}/download - Redirect to a presigned download URL
//   - GET    /api/files/{id}/preview  - Redirect to a presigned inline URL
//   - PUT    /api/files/{id}       - Rename, move, star, trash, restore
//   - DELETE /api/files/{id}       - Permanently delete
package files

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/driveyard/driveyard/internal/app/store/file"
	"github.com/driveyard/driveyard/internal/app/store/folder"
	userstore "github.com/driveyard/driveyard/internal/app/store/users"
	"github.com/driveyard/driveyard/internal/app/system/apperr"
	"github.com/driveyard/driveyard/internal/app/system/auth"
	"github.com/driveyard/driveyard/internal/app/system/blob"
	"github.com/driveyard/driveyard/internal/app/system/jsonutil"
	"github.com/driveyard/driveyard/internal/app/system/retry"
	"github.com/driveyard/driveyard/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Config carries the tunable limits for the file API.
type Config struct {
	MaxUploadFiles int           // max files per upload batch
	MaxFileSize    int64         // max bytes per file
	DefaultQuota   int64         // per-user storage limit when the user has no override
	PresignExpiry  time.Duration // lifetime of download/preview URLs
	Retry          retry.Policy  // retry policy for object-store writes
}

// Handler handles file API requests.
type Handler struct {
	files   *file.Store
	folders *folder.Store
	users   *userstore.Store
	blobs   blob.Store
	logger  *zap.Logger
	cfg     Config
}

// NewHandler creates a new file API handler.
func NewHandler(files *file.Store, folders *folder.Store, users *userstore.Store, blobs blob.Store, logger *zap.Logger, cfg Config) *Handler {
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = 15 * time.Minute
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Default()
	}
	return &Handler{
		files:   files,
		folders: folders,
		users:   users,
		blobs:   blobs,
		logger:  logger,
		cfg:     cfg,
	}
}

// quotaFor returns the storage limit for a user, falling back to the
// configured default when the user record has no override.
func (h *Handler) quotaFor(u *models.User) int64 {
	if u != nil && u.StorageLimit > 0 {
		return u.StorageLimit
	}
	return h.cfg.DefaultQuota
}

// requestUser returns the authenticated user's ID, or a 401 error.
func requestUser(r *http.Request) (primitive.ObjectID, error) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, apperr.AuthRequired()
	}
	oid := u.UserID()
	if oid.IsZero() {
		return primitive.NilObjectID, apperr.NotFound("user")
	}
	return oid, nil
}

// pathFileID parses the {id} URL parameter.
func pathFileID(r *http.Request) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid file id")
	}
	return oid, nil
}

// ListHandler handles GET /api/files.
//
// Query parameters: view (my-drive, recent, starred, trash), folderId
// (My Drive only), search, page, limit, sortBy, sortOrder.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requestUser(r)
	if err != nil {
		jsonutil.WriteError(w, err)
		return
	}

	q := r.URL.Query()
	opts := file.ListOptions{
		View:      file.ParseView(q.Get("view")),
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	opts.Page, _ = strconv.ParseInt(q.Get("page"), 10, 64)
	opts.Limit, _ = strconv.ParseInt(q.Get("limit"), 10, 64)

	if folderHex := q.Get("folderId"); folderHex != "" {
		folderID, err := primitive.ObjectIDFromHex(folderHex)
		if err != nil {
			jsonutil.WriteError(w, apperr.Validation("invalid folder id"))
			return
		}
		// The folder must exist and belong to the caller.
		if _, err := h.folders.GetByID(r.Context(), folderID, ownerID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				jsonutil.WriteError(w, apperr.NotFound("folder"))
				return
			}
			h.logger.Error("failed to load folder", zap.Error(err))
			jsonutil.WriteError(w, apperr.Internal("failed to list files"))
			return
		}
		opts.FolderID = &folderID
	}

	opts = opts.Normalized()

	list, err := h.files.List(r.Context(), ownerID, opts)
	if err != nil {
		h.logger.Error("failed to list files", zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("failed to list files"))
		return
	}
	total, err := h.files.Count(r.Context(), ownerID, opts)
	if err != nil {
		h.logger.Error("failed to count files", zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("failed to list files"))
		return
	}

	jsonutil.OK(w, ListResponse{
		Files:       list,
		Pagination:  NewPagination(opts.Page, opts.Limit, total),
		View:        string(opts.View),
		SearchQuery: opts.Search,
	})
}

// DownloadHandler handles GET /api/files/{id}/download. It redirects to
// a short-lived presigned URL with an attachment disposition carrying
// the file's original name.
func (h *Handler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	h.redirectToBlob(w, r, blob.DispositionAttachment)
}

// PreviewHandler handles GET /api/files/{id}/preview. Same as download
// but with an inline disposition so browsers render the content.
func (h *Handler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	h.redirectToBlob(w, r, blob.DispositionInline)
}

func (h *Handler) redirectToBlob(w http.ResponseWriter, r *http.Request, disposition string) {
	ownerID, err := requestUser(r)
	if err != nil {
		jsonutil.WriteError(w, err)
		return
	}
	id, err := pathFileID(r)
	if err != nil {
		jsonutil.WriteError(w, err)
		return
	}

	f, err := h.files.GetByID(r.Context(), id, ownerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.WriteError(w, apperr.NotFound("file"))
			return
		}
		h.logger.Error("failed to load file", zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("failed to load file"))
		return
	}
	if f.IsTrashed {
		jsonutil.WriteError(w, apperr.Gone("file is in the trash; restore it first"))
		return
	}

	u, err := h.blobs.PresignGet(r.Context(), f.StorageKey, f.OriginalName, disposition, h.cfg.PresignExpiry)
	if err != nil {
		h.logger.Error("failed to presign object URL",
			zap.String("file_id", f.ID.Hex()),
			zap.String("key", f.StorageKey),
			zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("failed to generate download link"))
		return
	}

	http.Redirect(w, r, u.String(), http.StatusFound)
}
