package files

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/driveyard/driveyard/internal/app/store/file"
	"github.com/driveyard/driveyard/internal/app/system/apperr"
	"github.com/driveyard/driveyard/internal/app/system/inputval"
	"github.com/driveyard/driveyard/internal/app/system/jsonutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// updateRequest is the body of PUT /api/files/{id}. FolderID is raw so
// an explicit null (move to root) can be told apart from an absent
// field (leave unchanged).
type updateRequest struct {
	Name      *string         `json:"name"`
	FolderID  json.RawMessage `json:"folderId"`
	IsStarred *bool           `json:"isStarred"`
	IsTrashed *bool           `json:"isTrashed"`
}

var jsonNull = []byte("null")

// UpdateHandler handles PUT /api/files/{id}: rename, move between
// folders, star/unstar, and trash/restore.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
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

	var req updateRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.WriteError(w, apperr.Validation("invalid JSON payload"))
		return
	}

	input := file.UpdateInput{
		IsStarred: req.IsStarred,
		IsTrashed: req.IsTrashed,
	}

	if req.Name != nil {
		name := inputval.SanitizeName(*req.Name)
		if err := inputval.ValidateName(name); err != nil {
			jsonutil.WriteError(w, err)
			return
		}
		input.Name = &name
	}

	if len(req.FolderID) > 0 {
		input.SetFolder = true
		if !bytes.Equal(req.FolderID, jsonNull) {
			var folderHex string
			if err := json.Unmarshal(req.FolderID, &folderHex); err != nil {
				jsonutil.WriteError(w, apperr.Validation("invalid folder id"))
				return
			}
			folderID, err := primitive.ObjectIDFromHex(folderHex)
			if err != nil {
				jsonutil.WriteError(w, apperr.Validation("invalid folder id"))
				return
			}
			// The destination folder must exist and belong to the caller.
			if _, err := h.folders.GetByID(r.Context(), folderID, ownerID); err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					jsonutil.WriteError(w, apperr.NotFound("folder"))
					return
				}
				h.logger.Error("failed to load folder", zap.Error(err))
				jsonutil.WriteError(w, apperr.Internal("failed to update file"))
				return
			}
			input.FolderID = &folderID
		}
	}

	if input.Name == nil && !input.SetFolder && input.IsStarred == nil && input.IsTrashed == nil {
		jsonutil.WriteError(w, apperr.Validation("no fields to update"))
		return
	}

	f, err := h.files.Update(r.Context(), id, ownerID, input)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.WriteError(w, apperr.NotFound("file"))
			return
		}
		h.logger.Error("failed to update file", zap.String("file_id", id.Hex()), zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("failed to update file"))
		return
	}

	jsonutil.OK(w, f)
}

// DeleteHandler handles DELETE /api/files/{id}: permanent removal of
// both the object and the metadata record.
//
// The metadata record is the source of truth for quota, so it is
// deleted even when the object removal fails; a leaked object only
// wastes bucket space and is logged for cleanup.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
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
		jsonutil.WriteError(w, apperr.Internal("failed to delete file"))
		return
	}

	if err := h.blobs.Remove(r.Context(), f.StorageKey); err != nil {
		h.logger.Warn("failed to remove object, deleting record anyway",
			zap.String("file_id", f.ID.Hex()),
			zap.String("key", f.StorageKey),
			zap.Error(err))
	}

	if _, err := h.files.Delete(r.Context(), id, ownerID); err != nil {
		h.logger.Error("failed to delete file record", zap.String("file_id", id.Hex()), zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("failed to delete file"))
		return
	}

	jsonutil.NoContent(w)
}
