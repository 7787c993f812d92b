// Package file provides storage for file metadata and the view-based
// listing queries behind the drive browse, search, and trash screens.
package file

import (
	"context"
	"regexp"
	"time"

	"github.com/driveyard/driveyard/internal/app/store/storeutil"
	"github.com/driveyard/driveyard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the files collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new file store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("files"),
	}
}

// CreateInput contains the input for creating a file record.
type CreateInput struct {
	OwnerID      primitive.ObjectID
	FolderID     *primitive.ObjectID
	Name         string
	OriginalName string
	MimeType     string
	Size         int64
	StorageKey   string
}

// Create creates a new file record.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.File, error) {
	now := time.Now().UTC()
	f := models.File{
		ID:           primitive.NewObjectID(),
		OwnerID:      input.OwnerID,
		FolderID:     input.FolderID,
		Name:         input.Name,
		NameCI:       storeutil.Fold(input.Name),
		OriginalName: input.OriginalName,
		MimeType:     input.MimeType,
		Size:         input.Size,
		StorageKey:   input.StorageKey,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return nil, err
	}

	return &f, nil
}

// GetByID retrieves a file by ID, scoped to its owner. A file belonging
// to another user is indistinguishable from a missing one: both return
// mongo.ErrNoDocuments.
func (s *Store) GetByID(ctx context.Context, id, ownerID primitive.ObjectID) (*models.File, error) {
	var f models.File
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateInput contains the input for updating a file. Nil pointer fields
// are left unchanged. SetFolder must be true to move the file; FolderID
// nil with SetFolder set moves the file to the root level.
type UpdateInput struct {
	Name      *string
	SetFolder bool
	FolderID  *primitive.ObjectID
	IsStarred *bool
	IsTrashed *bool
}

// Update applies input to the file and returns the updated record.
// Returns mongo.ErrNoDocuments if the file does not exist or is not
// owned by ownerID.
func (s *Store) Update(ctx context.Context, id, ownerID primitive.ObjectID, input UpdateInput) (*models.File, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}

	if input.Name != nil {
		set["name"] = *input.Name
		set["name_ci"] = storeutil.Fold(*input.Name)
	}
	if input.SetFolder {
		if input.FolderID != nil {
			set["folder_id"] = *input.FolderID
		} else {
			unset["folder_id"] = ""
		}
	}
	if input.IsStarred != nil {
		set["is_starred"] = *input.IsStarred
	}
	if input.IsTrashed != nil {
		set["is_trashed"] = *input.IsTrashed
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var f models.File
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id, "owner_id": ownerID}, update, opts).Decode(&f)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Delete removes a file record. Returns false if nothing matched.
func (s *Store) Delete(ctx context.Context, id, ownerID primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// View selects the filter predicate for a listing request.
type View string

// Views over the files collection. Every view is implicitly scoped to
// the requesting user.
const (
	ViewMyDrive View = "my-drive" // not trashed, within one folder (or root)
	ViewRecent  View = "recent"   // not trashed, any folder
	ViewStarred View = "starred"  // not trashed and starred
	ViewTrash   View = "trash"    // trashed only
)

// ParseView maps a request parameter to a View, defaulting to My Drive.
func ParseView(s string) View {
	switch View(s) {
	case ViewRecent, ViewStarred, ViewTrash:
		return View(s)
	default:
		return ViewMyDrive
	}
}

// Pagination limits for listing queries.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// ListOptions contains options for listing files. A non-empty Search
// takes precedence over View. Zero values get per-view defaults from
// Normalized.
type ListOptions struct {
	View      View
	FolderID  *primitive.ObjectID // My Drive only; nil = root
	Search    string
	Page      int64
	Limit     int64
	SortBy    string // "name", "size", "createdAt", "updatedAt"
	SortOrder string // "asc" or "desc"
}

// Normalized fills defaults and clamps out-of-range values: page >= 1,
// limit defaulted and capped, sort field whitelisted (unknown falls
// back to name), and per-view default sorts (Recent and Trash list
// most recently updated first).
func (o ListOptions) Normalized() ListOptions {
	if o.View == "" {
		o.View = ViewMyDrive
	}
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}

	switch o.SortBy {
	case "name", "size", "createdAt", "updatedAt":
	case "":
		if o.Search == "" && (o.View == ViewRecent || o.View == ViewTrash) {
			o.SortBy = "updatedAt"
		} else {
			o.SortBy = "name"
		}
	default:
		o.SortBy = "name"
	}

	switch o.SortOrder {
	case "asc", "desc":
	default:
		if o.Search == "" && (o.View == ViewRecent || o.View == ViewTrash) {
			o.SortOrder = "desc"
		} else {
			o.SortOrder = "asc"
		}
	}

	return o
}

// filter builds the predicate for this listing. List and Count both go
// through here so a page and its total count can never disagree.
func (o ListOptions) filter(ownerID primitive.ObjectID) bson.M {
	f := bson.M{"owner_id": ownerID}

	if o.Search != "" {
		pattern := regexp.QuoteMeta(storeutil.Fold(o.Search))
		f["is_trashed"] = false
		f["$or"] = []bson.M{
			{"name_ci": bson.M{"$regex": pattern}},
			{"mime_type": bson.M{"$regex": pattern, "$options": "i"}},
		}
		return f
	}

	switch o.View {
	case ViewTrash:
		f["is_trashed"] = true
	case ViewStarred:
		f["is_trashed"] = false
		f["is_starred"] = true
	case ViewRecent:
		f["is_trashed"] = false
	default: // My Drive
		f["is_trashed"] = false
		f["folder_id"] = o.FolderID
	}
	return f
}

// sortSpec maps the whitelisted sort field to its bson key and order.
func (o ListOptions) sortSpec() bson.D {
	field := "name_ci"
	switch o.SortBy {
	case "size":
		field = "size"
	case "createdAt":
		field = "created_at"
	case "updatedAt":
		field = "updated_at"
	}

	order := 1
	if o.SortOrder == "desc" {
		order = -1
	}
	return bson.D{{Key: field, Value: order}, {Key: "_id", Value: order}}
}

// List returns one page of files for the given view or search.
func (s *Store) List(ctx context.Context, ownerID primitive.ObjectID, opts ListOptions) ([]models.File, error) {
	opts = opts.Normalized()

	findOpts := storeutil.Paginate(opts.Limit, opts.Page).SetSort(opts.sortSpec())
	cursor, err := s.c.Find(ctx, opts.filter(ownerID), findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	files := []models.File{}
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// Count returns the exact number of files matching the same predicate
// List uses, ignoring pagination.
func (s *Store) Count(ctx context.Context, ownerID primitive.ObjectID, opts ListOptions) (int64, error) {
	opts = opts.Normalized()
	return s.c.CountDocuments(ctx, opts.filter(ownerID))
}

// StorageUsed sums the sizes of the user's live (non-trashed) files.
// Trashed files do not count toward quota until hard-deleted.
func (s *Store) StorageUsed(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner_id": ownerID, "is_trashed": false}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$size"}}}},
	}

	cursor, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// CountByFolderID returns the number of file records in a folder,
// trashed included.
func (s *Store) CountByFolderID(ctx context.Context, ownerID, folderID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"owner_id": ownerID, "folder_id": folderID})
}

// GetByFolderID returns all file records in a folder, trashed included.
// Used by folder deletion, which must account for every contained file.
func (s *Store) GetByFolderID(ctx context.Context, ownerID, folderID primitive.ObjectID) ([]models.File, error) {
	cursor, err := s.c.Find(ctx, bson.M{"owner_id": ownerID, "folder_id": folderID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []models.File
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// OrphanByFolderID moves all files in a folder to the root level.
// Returns the number of files moved.
func (s *Store) OrphanByFolderID(ctx context.Context, ownerID, folderID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"owner_id": ownerID, "folder_id": folderID},
		bson.M{
			"$unset": bson.M{"folder_id": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
