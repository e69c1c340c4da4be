package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/anonymous123-code/chatApp/internal/apperror"
	"github.com/anonymous123-code/chatApp/internal/model"
)

// newTestDB returns a fresh in-memory database scoped to the test. ":memory:"
// keeps everything off disk and the connection teardown destroys it.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		FullName:     "Test User",
		Email:        username + "@example.com",
		PasswordHash: "$2a$04$fakehashfakehashfakehash",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %q: %v", username, err)
	}
	return user
}

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "alice")

	if user.ID == "" {
		t.Error("CreateUser() did not assign an internal ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set CreatedAt")
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "alice")

	dup := &model.User{Username: "alice", Email: "other@example.com"}
	err := db.CreateUser(context.Background(), dup)
	if err == nil {
		t.Fatal("CreateUser() should fail for a duplicate username")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateUser() error = %v, want ErrConflict", err)
	}
}

func TestUserGetByUsername(t *testing.T) {
	db := newTestDB(t)

	created := createTestUser(t, db, "alice")

	got, err := db.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByUsername() ID = %q, want %q", got.ID, created.ID)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("GetByUsername() Email = %q, want %q", got.Email, "alice@example.com")
	}
	if got.PasswordHash != created.PasswordHash {
		t.Error("GetByUsername() did not return the stored password hash")
	}
}

func TestUserGetByUsername_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByUsername(context.Background(), "ghost")
	if err == nil {
		t.Fatal("GetByUsername() should fail for an unknown username")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByUsername() error = %v, want ErrNotFound", err)
	}
}
