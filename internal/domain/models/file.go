package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// File represents one uploaded object and its metadata.
type File struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID      primitive.ObjectID  `bson:"owner_id" json:"userId"`
	FolderID     *primitive.ObjectID `bson:"folder_id,omitempty" json:"folderId"` // nil = root level
	Name         string              `bson:"name" json:"name"`                    // Display name
	NameCI       string              `bson:"name_ci" json:"-"`                    // Case-insensitive for sorting/search
	OriginalName string              `bson:"original_name" json:"originalName"`   // Filename as uploaded
	MimeType     string              `bson:"mime_type" json:"mimeType"`
	Size         int64               `bson:"size" json:"size"`        // File size in bytes
	StorageKey   string              `bson:"storage_key" json:"path"` // Key in the object store
	IsStarred    bool                `bson:"is_starred" json:"isStarred"`
	IsTrashed    bool                `bson:"is_trashed" json:"isTrashed"`
	CreatedAt    time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updatedAt"`
}

// IsInRoot returns true if the file is at the root level (not in any folder).
func (f *File) IsInRoot() bool {
	return f.FolderID == nil
}
