package sessions

import (
	"errors"
	"testing"
	"time"

	"github.com/driveyard/driveyard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestCreate_And_GetByToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	created, err := store.Create(ctx, CreateInput{
		Token:     "tok-abc",
		UserID:    userID,
		IPAddress: "192.0.2.1",
		UserAgent: "test-agent",
		TTL:       time.Hour,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	wantExpiry := time.Now().UTC().Add(time.Hour)
	if diff := created.ExpiresAt.Sub(wantExpiry); diff < -time.Minute || diff > time.Minute {
		t.Errorf("ExpiresAt = %v, want ~%v", created.ExpiresAt, wantExpiry)
	}

	got, err := store.GetByToken(ctx, "tok-abc")
	if err != nil {
		t.Fatalf("GetByToken() error = %v", err)
	}
	if got.UserID != userID {
		t.Errorf("UserID = %v, want %v", got.UserID, userID)
	}
	if got.IPAddress != "192.0.2.1" || got.UserAgent != "test-agent" {
		t.Errorf("session metadata = %q / %q", got.IPAddress, got.UserAgent)
	}

	_, err = store.GetByToken(ctx, "tok-unknown")
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetByToken() unknown error = %v, want ErrNoDocuments", err)
	}
}

func TestGetByToken_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Negative TTL writes an already-expired record; the query filter
	// must reject it even before the TTL monitor removes it.
	if _, err := store.Create(ctx, CreateInput{Token: "tok-old", UserID: primitive.NewObjectID(), TTL: -time.Minute}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err := store.GetByToken(ctx, "tok-old")
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetByToken() expired error = %v, want ErrNoDocuments", err)
	}
}

func TestDeleteByToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, CreateInput{Token: "tok-abc", UserID: primitive.NewObjectID(), TTL: time.Hour}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.DeleteByToken(ctx, "tok-abc"); err != nil {
		t.Fatalf("DeleteByToken() error = %v", err)
	}
	if _, err := store.GetByToken(ctx, "tok-abc"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetByToken() after delete error = %v, want ErrNoDocuments", err)
	}

	// Deleting an unknown token is a no-op.
	if err := store.DeleteByToken(ctx, "tok-gone"); err != nil {
		t.Errorf("DeleteByToken() unknown token error = %v", err)
	}
}

func TestValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	v := NewValidator(store, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, CreateInput{Token: "tok-live", UserID: primitive.NewObjectID(), TTL: time.Hour}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Create(ctx, CreateInput{Token: "tok-stale", UserID: primitive.NewObjectID(), TTL: -time.Minute}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !v.ValidToken(ctx, "tok-live") {
		t.Error("ValidToken(tok-live) = false, want true")
	}
	if v.ValidToken(ctx, "tok-stale") {
		t.Error("ValidToken(tok-stale) = true, want false for expired record")
	}
	if v.ValidToken(ctx, "tok-unknown") {
		t.Error("ValidToken(tok-unknown) = true, want false")
	}
	if v.ValidToken(ctx, "") {
		t.Error("ValidToken(\"\") = true, want false")
	}

	// A deleted record invalidates the token immediately.
	if err := store.DeleteByToken(ctx, "tok-live"); err != nil {
		t.Fatalf("DeleteByToken() error = %v", err)
	}
	if v.ValidToken(ctx, "tok-live") {
		t.Error("ValidToken(tok-live) = true after delete, want false")
	}
}

func TestDeleteByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()
	for _, tok := range []string{"tok-1", "tok-2", "tok-3"} {
		if _, err := store.Create(ctx, CreateInput{Token: tok, UserID: userID, TTL: time.Hour}); err != nil {
			t.Fatalf("Create(%s) error = %v", tok, err)
		}
	}
	if _, err := store.Create(ctx, CreateInput{Token: "tok-other", UserID: otherID, TTL: time.Hour}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	n, err := store.DeleteByUser(ctx, userID)
	if err != nil {
		t.Fatalf("DeleteByUser() error = %v", err)
	}
	if n != 3 {
		t.Errorf("DeleteByUser() = %d, want 3", n)
	}

	// Other users' sessions stay.
	if _, err := store.GetByToken(ctx, "tok-other"); err != nil {
		t.Errorf("GetByToken(tok-other) error = %v", err)
	}
}
