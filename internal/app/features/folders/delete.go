package folders

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/driveyard/driveyard/internal/app/system/apperr"
	"github.com/driveyard/driveyard/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DeleteHandler handles DELETE /api/folders/{id}.
//
// Non-empty folders are handled per the configured policy: reject
// responds 409, cascade recursively deletes contents (objects
// included), orphan moves direct children to the root level.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
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
	ctx := r.Context()

	if _, err := h.folders.GetByID(ctx, id, ownerID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.WriteError(w, apperr.NotFound("folder"))
			return
		}
		h.logger.Error("failed to load folder", zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("failed to delete folder"))
		return
	}

	fileCount, err := h.files.CountByFolderID(ctx, ownerID, id)
	if err != nil {
		h.logger.Error("failed to count folder files", zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("failed to delete folder"))
		return
	}
	subfolderCount, err := h.folders.CountByParent(ctx, ownerID, &id)
	if err != nil {
		h.logger.Error("failed to count subfolders", zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("failed to delete folder"))
		return
	}

	if fileCount > 0 || subfolderCount > 0 {
		switch h.policy {
		case PolicyCascade:
			if err := h.deleteContents(ctx, ownerID, id); err != nil {
				h.logger.Error("failed to cascade delete folder",
					zap.String("folder_id", id.Hex()),
					zap.Error(err))
				jsonutil.WriteError(w, apperr.Internal("failed to delete folder"))
				return
			}
		case PolicyOrphan:
			if _, err := h.files.OrphanByFolderID(ctx, ownerID, id); err != nil {
				h.logger.Error("failed to orphan folder files", zap.Error(err))
				jsonutil.WriteError(w, apperr.Internal("failed to delete folder"))
				return
			}
			if _, err := h.folders.OrphanByParentID(ctx, ownerID, id); err != nil {
				h.logger.Error("failed to orphan subfolders", zap.Error(err))
				jsonutil.WriteError(w, apperr.Internal("failed to delete folder"))
				return
			}
		default:
			jsonutil.WriteError(w, apperr.Conflict("folder is not empty"))
			return
		}
	}

	if _, err := h.folders.Delete(ctx, id, ownerID); err != nil {
		h.logger.Error("failed to delete folder record", zap.String("folder_id", id.Hex()), zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("failed to delete folder"))
		return
	}

	jsonutil.NoContent(w)
}

// deleteContents recursively deletes all files and subfolders within a
// folder. Object removal failures are logged and do not stop the
// cascade; record deletion failures do.
func (h *Handler) deleteContents(ctx context.Context, ownerID, folderID primitive.ObjectID) error {
	contained, err := h.files.GetByFolderID(ctx, ownerID, folderID)
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}
	for _, f := range contained {
		if err := h.blobs.Remove(ctx, f.StorageKey); err != nil {
			h.logger.Warn("failed to remove object during cascade",
				zap.String("key", f.StorageKey),
				zap.Error(err))
		}
		if _, err := h.files.Delete(ctx, f.ID, ownerID); err != nil {
			return fmt.Errorf("deleting file %s: %w", f.ID.Hex(), err)
		}
	}

	subfolders, err := h.folders.ListByParent(ctx, ownerID, &folderID)
	if err != nil {
		return fmt.Errorf("listing subfolders: %w", err)
	}
	for _, sf := range subfolders {
		if err := h.deleteContents(ctx, ownerID, sf.ID); err != nil {
			return err
		}
		if _, err := h.folders.Delete(ctx, sf.ID, ownerID); err != nil {
			return fmt.Errorf("deleting subfolder %s: %w", sf.ID.Hex(), err)
		}
	}

	return nil
}
