package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account that owns folders and files.
//
// StorageLimit is the per-user quota in bytes; zero means "use the
// configured default".
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"-"` // Folded for case-insensitive lookup
	FullName     string             `bson:"full_name" json:"name"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	StorageLimit int64              `bson:"storage_limit,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}
