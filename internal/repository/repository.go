// Package repository defines the storage contracts the business layers
// depend on. Services receive these interfaces (never a concrete store), so
// tests can substitute in-memory fakes and the SQLite backend stays an
// implementation detail of one package.
package repository

import (
	"context"

	"github.com/anonymous123-code/chatApp/internal/model"
)

// UserRepository persists user accounts. Usernames are unique; accounts are
// never deleted, only disabled.
type UserRepository interface {
	// CreateUser inserts a new user. Returns apperror.ErrConflict if the
	// username is already registered.
	CreateUser(ctx context.Context, user *model.User) error

	// GetByUsername returns the user with the given username, or
	// apperror.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// ChatRepository persists chats and their membership sets.
type ChatRepository interface {
	// CreateChat allocates the smallest non-negative integer ID not currently
	// in use (first-fit — deleted IDs are reclaimed), creates the chat, and
	// makes owner its sole member. Safe under concurrent invocation: two
	// concurrent calls never allocate the same ID.
	CreateChat(ctx context.Context, owner string) (int, error)

	// DeleteChat removes the chat and cascades to its messages and invites as
	// one unit. Returns apperror.ErrNotFound for an unknown ID.
	DeleteChat(ctx context.Context, chatID int) error

	// ChatExists reports whether the chat is live.
	ChatExists(ctx context.Context, chatID int) (bool, error)

	// IsMember reports whether username is in the chat's membership set.
	// A nonexistent chat yields false, not an error.
	IsMember(ctx context.Context, chatID int, username string) (bool, error)

	// ListMembers returns the membership set, sorted. Empty slice (not
	// nil) for a chat with no members.
	ListMembers(ctx context.Context, chatID int) ([]string, error)

	// AddMember adds username to the membership set. Adding an existing
	// member is a no-op (set semantics).
	AddMember(ctx context.Context, chatID int, username string) error

	// RemoveMember removes username from the membership set. Removing a
	// non-member returns apperror.ErrNotFound ("member not found").
	RemoveMember(ctx context.Context, chatID int, username string) error

	// ListByMember returns the chats username belongs to, ascending by ID.
	ListByMember(ctx context.Context, username string) ([]model.Chat, error)
}

// MessageRepository persists the ordered message sequence of each chat.
//
// Message IDs are positional: ID = index in the chat's sequence. Deleting a
// message shifts all later IDs down by one, so IDs must not be cached across
// mutations. Every method taking a messageID resolves it against the
// sequence as it exists at call time.
type MessageRepository interface {
	// AppendMessage adds a message to the end of the chat's sequence and returns
	// its positional ID. The timestamp is captured here (wall clock,
	// nanoseconds).
	AppendMessage(ctx context.Context, chatID int, author, content string) (int, error)

	// GetMessage returns the message at the given position, or
	// apperror.ErrNotFound.
	GetMessage(ctx context.Context, chatID, messageID int) (*model.Message, error)

	// ListMessages returns all messages in insertion order with their current
	// positional IDs. Empty slice for an empty chat.
	ListMessages(ctx context.Context, chatID int) ([]model.Message, error)

	// EditMessage replaces the content of the message at the given position and
	// marks it edited.
	EditMessage(ctx context.Context, chatID, messageID int, content string) error

	// DeleteMessage removes the message at the given position; later messages
	// shift down by one.
	DeleteMessage(ctx context.Context, chatID, messageID int) error
}

// InviteRepository persists invite codes. The code namespace is global
// across all chats.
type InviteRepository interface {
	// Claim atomically registers code for chatID. If the code is already
	// taken — by any chat — it returns apperror.ErrConflict and the caller
	// regenerates. No two concurrent claims of the same code can both
	// succeed.
	Claim(ctx context.Context, code string, chatID int) error

	// GetChatID resolves a code to its chat, or apperror.ErrNotFound.
	GetChatID(ctx context.Context, code string) (int, error)

	// DeleteInvite removes the code. Returns apperror.ErrNotFound for an
	// unknown code.
	DeleteInvite(ctx context.Context, code string) error

	// ListByChat returns all live codes referencing the chat, in creation
	// order.
	ListByChat(ctx context.Context, chatID int) ([]string, error)
}
