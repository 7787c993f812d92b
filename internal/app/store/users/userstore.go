// Package userstore provides storage for user accounts.
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/driveyard/driveyard/internal/app/store/storeutil"
	"github.com/driveyard/driveyard/internal/app/system/authutil"
	"github.com/driveyard/driveyard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateEmail is returned when creating a user whose email is
// already registered.
var ErrDuplicateEmail = errors.New("a user with this email already exists")

// ErrInvalidEmail is returned when creating a user with a malformed
// email address.
var ErrInvalidEmail = errors.New("invalid email address")

// Store provides access to the users collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new user store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// CreateInput contains the input for creating a user.
type CreateInput struct {
	Email        string
	FullName     string
	PasswordHash string
	StorageLimit int64 // 0 = configured default
}

// Create inserts a new user after normalizing the email.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.User, error) {
	now := time.Now().UTC()
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !authutil.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	u := models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		EmailCI:      storeutil.Fold(email),
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: input.PasswordHash,
		StorageLimit: input.StorageLimit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return &u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": storeutil.Fold(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}
