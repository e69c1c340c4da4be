package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/anonymous123-code/chatApp/internal/apperror"
)

func TestClaim(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	chatID := createTestChat(t, db, "alice")

	if err := db.Claim(ctx, "AbC123xYz9", chatID); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}

	got, err := db.GetChatID(ctx, "AbC123xYz9")
	if err != nil {
		t.Fatalf("GetChatID() error = %v", err)
	}
	if got != chatID {
		t.Errorf("GetChatID() = %d, want %d", got, chatID)
	}
}

func TestClaim_TakenCode(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	c0 := createTestChat(t, db, "alice")
	c1 := createTestChat(t, db, "bob")

	if err := db.Claim(ctx, "SAMECODE00", c0); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}

	// The namespace is global: a different chat can't take the same code.
	err := db.Claim(ctx, "SAMECODE00", c1)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Claim() of a taken code = %v, want ErrConflict", err)
	}

	// The original claim must be untouched.
	if got, _ := db.GetChatID(ctx, "SAMECODE00"); got != c0 {
		t.Errorf("GetChatID() = %d, want %d", got, c0)
	}
}

func TestClaim_UnknownChat(t *testing.T) {
	db := newTestDB(t)

	err := db.Claim(context.Background(), "AbC123xYz9", 42)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Claim() for an unknown chat = %v, want ErrNotFound", err)
	}
}

func TestGetChatID_UnknownCode(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetChatID(context.Background(), "NOSUCHCODE")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetChatID() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteInvite(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	chatID := createTestChat(t, db, "alice")

	if err := db.Claim(ctx, "AbC123xYz9", chatID); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if err := db.DeleteInvite(ctx, "AbC123xYz9"); err != nil {
		t.Fatalf("DeleteInvite() error = %v", err)
	}
	if _, err := db.GetChatID(ctx, "AbC123xYz9"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetChatID() after delete = %v, want ErrNotFound", err)
	}

	// The code is free again for any chat.
	if err := db.Claim(ctx, "AbC123xYz9", chatID); err != nil {
		t.Errorf("Claim() of a freed code error = %v", err)
	}
}

func TestDeleteInvite_UnknownCode(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteInvite(context.Background(), "NOSUCHCODE")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteInvite() error = %v, want ErrNotFound", err)
	}
}

func TestListByChat(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	c0 := createTestChat(t, db, "alice")
	c1 := createTestChat(t, db, "bob")

	for _, code := range []string{"CODEAAAAAA", "CODEBBBBBB"} {
		if err := db.Claim(ctx, code, c0); err != nil {
			t.Fatalf("Claim(%q) error = %v", code, err)
		}
	}
	if err := db.Claim(ctx, "CODECCCCCC", c1); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}

	codes, err := db.ListByChat(ctx, c0)
	if err != nil {
		t.Fatalf("ListByChat() error = %v", err)
	}
	if !reflect.DeepEqual(codes, []string{"CODEAAAAAA", "CODEBBBBBB"}) {
		t.Errorf("ListByChat() = %v, want the chat's own codes only", codes)
	}

	empty, err := db.ListByChat(ctx, 99)
	if err != nil {
		t.Fatalf("ListByChat() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ListByChat() for an unknown chat = %v, want empty", empty)
	}
}
