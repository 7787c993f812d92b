package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Folder represents a directory node in a user's drive.
type Folder struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID  `bson:"owner_id" json:"userId"`
	ParentID  *primitive.ObjectID `bson:"parent_id,omitempty" json:"parentId"` // nil = root level
	Name      string              `bson:"name" json:"name"`
	NameCI    string              `bson:"name_ci" json:"-"`
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updatedAt"`
}
