// Package sessions provides server-side session records. The cookie
// carries a signed token; the record here is the source of truth, so a
// logout or TTL expiry invalidates the cookie even before it lapses.
package sessions

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Session represents a stored session in the database.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Token     string             `bson:"token"` // Unique 32-byte random token
	UserID    primitive.ObjectID `bson:"user_id"`
	IPAddress string             `bson:"ip_address,omitempty"`
	UserAgent string             `bson:"user_agent,omitempty"`
	ExpiresAt time.Time          `bson:"expires_at"` // TTL index target
	CreatedAt time.Time          `bson:"created_at"`
}

// Store manages session records in MongoDB.
type Store struct {
	c *mongo.Collection
}

// New creates a new session Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// CreateInput contains the input for creating a session record.
type CreateInput struct {
	Token     string
	UserID    primitive.ObjectID
	IPAddress string
	UserAgent string
	TTL       time.Duration
}

// Create inserts a new session record.
func (s *Store) Create(ctx context.Context, input CreateInput) (*Session, error) {
	now := time.Now().UTC()
	sess := Session{
		ID:        primitive.NewObjectID(),
		Token:     input.Token,
		UserID:    input.UserID,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		ExpiresAt: now.Add(input.TTL),
		CreatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// GetByToken looks up a live (unexpired) session by its token. Returns
// mongo.ErrNoDocuments if the token is unknown or expired.
func (s *Store) GetByToken(ctx context.Context, token string) (*Session, error) {
	var sess Session
	filter := bson.M{
		"token":      token,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}
	if err := s.c.FindOne(ctx, filter).Decode(&sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// DeleteByToken removes a session record, ending the session.
func (s *Store) DeleteByToken(ctx context.Context, token string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"token": token})
	return err
}

// DeleteByUser removes all of a user's sessions.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
