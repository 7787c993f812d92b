// Package indexes creates the MongoDB indexes the stores rely on.
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureSessions(ctx, db); err != nil {
		problems = append(problems, "sessions: "+err.Error())
	}
	if err := ensureFolders(ctx, db); err != nil {
		problems = append(problems, "folders: "+err.Error())
	}
	if err := ensureFiles(ctx, db); err != nil {
		problems = append(problems, "files: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New("index creation failed: " + strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_users_email"),
		},
	})
	return err
}

func ensureSessions(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("sessions").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_sessions_token"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_sessions_user"),
		},
		// TTL index for automatic cleanup of expired sessions.
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_sessions_ttl"),
		},
	})
	return err
}

func ensureFolders(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("folders").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "parent_id", Value: 1}},
			Options: options.Index().SetName("idx_folders_owner_parent"),
		},
	})
	return err
}

func ensureFiles(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("files").Indexes().CreateMany(ctx, []mongo.IndexModel{
		// The My Drive predicate: owner + trashed flag + folder.
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "is_trashed", Value: 1}, {Key: "folder_id", Value: 1}},
			Options: options.Index().SetName("idx_files_owner_trashed_folder"),
		},
		// Name sort and prefix search within an owner.
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_files_owner_name"),
		},
		// Recent view: owner + updated_at.
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_files_owner_updated"),
		},
	})
	return err
}
