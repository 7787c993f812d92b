package folder

import (
	"errors"
	"testing"

	"github.com/driveyard/driveyard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreate_And_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()

	f, err := store.Create(ctx, CreateInput{OwnerID: owner, Name: "Études"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if f.NameCI != "etudes" {
		t.Errorf("NameCI = %q, want folded name", f.NameCI)
	}
	if f.ParentID != nil {
		t.Errorf("ParentID = %v, want nil for root folder", f.ParentID)
	}

	got, err := store.GetByID(ctx, f.ID, owner)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Études" {
		t.Errorf("Name = %q, want Études", got.Name)
	}

	_, err = store.GetByID(ctx, f.ID, primitive.NewObjectID())
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetByID() with wrong owner error = %v, want ErrNoDocuments", err)
	}
}

func TestUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	parent, err := store.Create(ctx, CreateInput{OwnerID: owner, Name: "Parent"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	child, err := store.Create(ctx, CreateInput{OwnerID: owner, Name: "Child"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	name := "Renamed"
	got, err := store.Update(ctx, child.ID, owner, UpdateInput{Name: &name, SetParent: true, ParentID: &parent.ID})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Name != "Renamed" || got.NameCI != "renamed" {
		t.Errorf("Name = %q NameCI = %q after rename", got.Name, got.NameCI)
	}
	if got.ParentID == nil || *got.ParentID != parent.ID {
		t.Errorf("ParentID = %v, want %v", got.ParentID, parent.ID)
	}

	// Move back to root with an explicit nil parent.
	got, err = store.Update(ctx, child.ID, owner, UpdateInput{SetParent: true})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.ParentID != nil {
		t.Errorf("ParentID = %v, want nil after move to root", got.ParentID)
	}

	_, err = store.Update(ctx, child.ID, primitive.NewObjectID(), UpdateInput{Name: &name})
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("Update() with wrong owner error = %v, want ErrNoDocuments", err)
	}
}

func TestListByParent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	parent, err := store.Create(ctx, CreateInput{OwnerID: owner, Name: "Parent"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for _, name := range []string{"zeta", "Alpha", "möbius"} {
		if _, err := store.Create(ctx, CreateInput{OwnerID: owner, ParentID: &parent.ID, Name: name}); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}
	// Another user's folder under the "same" parent ID must not appear.
	if _, err := store.Create(ctx, CreateInput{OwnerID: primitive.NewObjectID(), ParentID: &parent.ID, Name: "intruder"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	list, err := store.ListByParent(ctx, owner, &parent.ID)
	if err != nil {
		t.Fatalf("ListByParent() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	// Sorted by folded name: alpha, mobius, zeta.
	if list[0].Name != "Alpha" || list[1].Name != "möbius" || list[2].Name != "zeta" {
		t.Errorf("order = [%s %s %s], want case-insensitive name order", list[0].Name, list[1].Name, list[2].Name)
	}

	root, err := store.ListByParent(ctx, owner, nil)
	if err != nil {
		t.Fatalf("ListByParent(root) error = %v", err)
	}
	if len(root) != 1 || root[0].Name != "Parent" {
		t.Errorf("root folders = %v, want only Parent", root)
	}

	n, err := store.CountByParent(ctx, owner, &parent.ID)
	if err != nil {
		t.Fatalf("CountByParent() error = %v", err)
	}
	if n != 3 {
		t.Errorf("CountByParent() = %d, want 3", n)
	}
}

func TestDelete_And_Orphan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	parent, err := store.Create(ctx, CreateInput{OwnerID: owner, Name: "Parent"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for _, name := range []string{"a", "b"} {
		if _, err := store.Create(ctx, CreateInput{OwnerID: owner, ParentID: &parent.ID, Name: name}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	moved, err := store.OrphanByParentID(ctx, owner, parent.ID)
	if err != nil {
		t.Fatalf("OrphanByParentID() error = %v", err)
	}
	if moved != 2 {
		t.Errorf("OrphanByParentID() = %d, want 2", moved)
	}
	n, err := store.CountByParent(ctx, owner, &parent.ID)
	if err != nil {
		t.Fatalf("CountByParent() error = %v", err)
	}
	if n != 0 {
		t.Errorf("CountByParent() after orphan = %d, want 0", n)
	}

	deleted, err := store.Delete(ctx, parent.ID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted {
		t.Error("Delete() with wrong owner should match nothing")
	}

	deleted, err = store.Delete(ctx, parent.ID, owner)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !deleted {
		t.Error("Delete() = false, want true")
	}
}
