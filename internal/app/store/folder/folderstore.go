// Package folder provides storage for drive folders.
package folder

import (
	"context"
	"time"

	"github.com/driveyard/driveyard/internal/app/store/storeutil"
	"github.com/driveyard/driveyard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the folders collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new folder store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("folders"),
	}
}

// CreateInput contains the input for creating a folder.
type CreateInput struct {
	OwnerID  primitive.ObjectID
	ParentID *primitive.ObjectID
	Name     string
}

// Create creates a new folder.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Folder, error) {
	now := time.Now().UTC()
	f := models.Folder{
		ID:        primitive.NewObjectID(),
		OwnerID:   input.OwnerID,
		ParentID:  input.ParentID,
		Name:      input.Name,
		NameCI:    storeutil.Fold(input.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return nil, err
	}

	return &f, nil
}

// GetByID retrieves a folder by ID, scoped to its owner. Another
// user's folder returns mongo.ErrNoDocuments, same as a missing one.
func (s *Store) GetByID(ctx context.Context, id, ownerID primitive.ObjectID) (*models.Folder, error) {
	var f models.Folder
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateInput contains the input for updating a folder. SetParent must
// be true to reparent; ParentID nil with SetParent set moves the folder
// to the root level.
type UpdateInput struct {
	Name      *string
	SetParent bool
	ParentID  *primitive.ObjectID
}

// Update applies input to the folder and returns the updated record.
func (s *Store) Update(ctx context.Context, id, ownerID primitive.ObjectID, input UpdateInput) (*models.Folder, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}

	if input.Name != nil {
		set["name"] = *input.Name
		set["name_ci"] = storeutil.Fold(*input.Name)
	}
	if input.SetParent {
		if input.ParentID != nil {
			set["parent_id"] = *input.ParentID
		} else {
			unset["parent_id"] = ""
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var f models.Folder
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id, "owner_id": ownerID}, update, opts).Decode(&f)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Delete removes a folder record. Returns false if nothing matched.
// Contained files and subfolders are the caller's responsibility; see
// the folders feature for the delete policies.
func (s *Store) Delete(ctx context.Context, id, ownerID primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// ListByParent returns a user's folders within a parent, sorted by
// name. Pass nil for parentID to list root-level folders.
func (s *Store) ListByParent(ctx context.Context, ownerID primitive.ObjectID, parentID *primitive.ObjectID) ([]models.Folder, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cursor, err := s.c.Find(ctx, bson.M{"owner_id": ownerID, "parent_id": parentID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	folders := []models.Folder{}
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// CountByParent returns the number of direct subfolders of a parent.
func (s *Store) CountByParent(ctx context.Context, ownerID primitive.ObjectID, parentID *primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"owner_id": ownerID, "parent_id": parentID})
}

// OrphanByParentID moves all direct subfolders of a parent to the root
// level. Returns the number of folders moved.
func (s *Store) OrphanByParentID(ctx context.Context, ownerID, parentID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"owner_id": ownerID, "parent_id": parentID},
		bson.M{
			"$unset": bson.M{"parent_id": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
