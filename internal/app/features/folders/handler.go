// Package folders provides the folder API: listing, creation, rename
// and move, and deletion under a configurable policy for non-empty
// folders.
//
// Endpoints (mounted at /api/folders):
//   - GET    /api/folders          - List folders under a parent
//   - POST   /api/folders          - Create a folder
//   - PUT    /api/folders/{id}     - Rename or move a folder
//   - DELETE /api/folders/{id}     - Delete a folder
package folders

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/driveyard/driveyard/internal/app/store/file"
	"github.com/driveyard/driveyard/internal/app/store/folder"
	"github.com/driveyard/driveyard/internal/app/system/apperr"
	"github.com/driveyard/driveyard/internal/app/system/auth"
	"github.com/driveyard/driveyard/internal/app/system/blob"
	"github.com/driveyard/driveyard/internal/app/system/inputval"
	"github.com/driveyard/driveyard/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DeletePolicy controls what happens when a non-empty folder is deleted.
type DeletePolicy string

const (
	// PolicyReject refuses to delete a non-empty folder (409).
	PolicyReject DeletePolicy = "reject"
	// PolicyCascade recursively deletes contained files and subfolders.
	PolicyCascade DeletePolicy = "cascade"
	// PolicyOrphan moves direct children to the root level.
	PolicyOrphan DeletePolicy = "orphan"
)

// ParsePolicy maps a config value to a DeletePolicy, defaulting to reject.
func ParsePolicy(s string) DeletePolicy {
	switch DeletePolicy(s) {
	case PolicyCascade, PolicyOrphan:
		return DeletePolicy(s)
	default:
		return PolicyReject
	}
}

// Handler handles folder API requests.
type Handler struct {
	folders *folder.Store
	files   *file.Store
	blobs   blob.Store
	logger  *zap.Logger
	policy  DeletePolicy
}

// NewHandler creates a new folder API handler.
func NewHandler(folders *folder.Store, files *file.Store, blobs blob.Store, logger *zap.Logger, policy DeletePolicy) *Handler {
	return &Handler{
		folders: folders,
		files:   files,
		blobs:   blobs,
		logger:  logger,
		policy:  policy,
	}
}

// Routes returns a router with the folder API endpoints. The caller is
// expected to wrap it with session middleware.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.ListHandler)
	r.Post("/", h.CreateHandler)
	r.Put("/{id}", h.UpdateHandler)
	r.Delete("/{id}", h.DeleteHandler)

	return r
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

// ListHandler handles GET /api/folders. The optional parentId query
// parameter scopes the listing; absent means root-level folders.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requestUser(r)
	if err != nil {
		jsonutil.WriteError(w, err)
		return
	}

	var parentID *primitive.ObjectID
	if parentHex := r.URL.Query().Get("parentId"); parentHex != "" {
		oid, err := primitive.ObjectIDFromHex(parentHex)
		if err != nil {
			jsonutil.WriteError(w, apperr.Validation("invalid parent folder id"))
			return
		}
		if _, err := h.folders.GetByID(r.Context(), oid, ownerID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				jsonutil.WriteError(w, apperr.NotFound("folder"))
				return
			}
			h.logger.Error("failed to load folder", zap.Error(err))
			jsonutil.WriteError(w, apperr.Internal("failed to list folders"))
			return
		}
		parentID = &oid
	}

	list, err := h.folders.ListByParent(r.Context(), ownerID, parentID)
	if err != nil {
		h.logger.Error("failed to list folders", zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("failed to list folders"))
		return
	}

	jsonutil.OK(w, map[string]any{"folders": list})
}

// CreateHandler handles POST /api/folders.
//
// Request body: {"name": "...", "parentId": "..."} with parentId
// optional (absent or null means root level).
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requestUser(r)
	if err != nil {
		jsonutil.WriteError(w, err)
		return
	}

	var req struct {
		Name     string  `json:"name"`
		ParentID *string `json:"parentId"`
	}
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.WriteError(w, apperr.Validation("invalid JSON payload"))
		return
	}

	name := inputval.SanitizeName(req.Name)
	if err := inputval.ValidateName(name); err != nil {
		jsonutil.WriteError(w, err)
		return
	}

	var parentID *primitive.ObjectID
	if req.ParentID != nil && *req.ParentID != "" {
		oid, err := primitive.ObjectIDFromHex(*req.ParentID)
		if err != nil {
			jsonutil.WriteError(w, apperr.Validation("invalid parent folder id"))
			return
		}
		if _, err := h.folders.GetByID(r.Context(), oid, ownerID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				jsonutil.WriteError(w, apperr.NotFound("folder"))
				return
			}
			h.logger.Error("failed to load parent folder", zap.Error(err))
			jsonutil.WriteError(w, apperr.Internal("failed to create folder"))
			return
		}
		parentID = &oid
	}

	f, err := h.folders.Create(r.Context(), folder.CreateInput{
		OwnerID:  ownerID,
		ParentID: parentID,
		Name:     name,
	})
	if err != nil {
		h.logger.Error("failed to create folder", zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("failed to create folder"))
		return
	}

	jsonutil.Created(w, f)
}

// UpdateHandler handles PUT /api/folders/{id}: rename and/or move. The
// parentId field uses an explicit null to mean "move to root"; an
// absent field leaves the parent unchanged.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requestUser(r)
	if err != nil {
		jsonutil.WriteError(w, err)
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.WriteError(w, apperr.Validation("invalid folder id"))
		return
	}

	var req struct {
		Name     *string         `json:"name"`
		ParentID json.RawMessage `json:"parentId"`
	}
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.WriteError(w, apperr.Validation("invalid JSON payload"))
		return
	}

	input := folder.UpdateInput{}

	if req.Name != nil {
		name := inputval.SanitizeName(*req.Name)
		if err := inputval.ValidateName(name); err != nil {
			jsonutil.WriteError(w, err)
			return
		}
		input.Name = &name
	}

	if len(req.ParentID) > 0 {
		input.SetParent = true
		if string(req.ParentID) != "null" {
			var parentHex string
			if err := json.Unmarshal(req.ParentID, &parentHex); err != nil {
				jsonutil.WriteError(w, apperr.Validation("invalid parent folder id"))
				return
			}
			parentID, err := primitive.ObjectIDFromHex(parentHex)
			if err != nil {
				jsonutil.WriteError(w, apperr.Validation("invalid parent folder id"))
				return
			}
			if parentID == id {
				jsonutil.WriteError(w, apperr.Validation("folder cannot be its own parent"))
				return
			}
			if _, err := h.folders.GetByID(r.Context(), parentID, ownerID); err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					jsonutil.WriteError(w, apperr.NotFound("folder"))
					return
				}
				h.logger.Error("failed to load parent folder", zap.Error(err))
				jsonutil.WriteError(w, apperr.Internal("failed to update folder"))
				return
			}
			input.ParentID = &parentID
		}
	}

	if input.Name == nil && !input.SetParent {
		jsonutil.WriteError(w, apperr.Validation("no fields to update"))
		return
	}

	f, err := h.folders.Update(r.Context(), id, ownerID, input)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.WriteError(w, apperr.NotFound("folder"))
			return
		}
		h.logger.Error("failed to update folder", zap.String("folder_id", id.Hex()), zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("failed to update folder"))
		return
	}

	jsonutil.OK(w, f)
}
