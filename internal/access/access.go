// Package access is the authorization decision layer: given (actor,
// resource, action) it answers allow or deny, and nothing else. It performs
// no mutations and holds no state of its own — every decision is re-derived
// from the current relational facts (membership, authorship) on every call,
// so there are no cached permissions to go stale. The cost is one membership
// or authorship lookup per request, which is fine at this scale.
//
// Services consult this package before every mutating or chat-scoped read
// operation; a denial always arrives before anything is written.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonymous123-code/chatApp/internal/apperror"
	"github.com/anonymous123-code/chatApp/internal/model"
)

// ChatReader is the read-only slice of the chat store the authorizer needs.
type ChatReader interface {
	ChatExists(ctx context.Context, chatID int) (bool, error)
	IsMember(ctx context.Context, chatID int, username string) (bool, error)
}

// MessageReader resolves positional message IDs for authorship checks.
type MessageReader interface {
	GetMessage(ctx context.Context, chatID, messageID int) (*model.Message, error)
}

// Authorizer makes allow/deny decisions from read-only store views.
type Authorizer struct {
	chats    ChatReader
	messages MessageReader
}

// New creates an Authorizer over the given read views.
func New(chats ChatReader, messages MessageReader) *Authorizer {
	return &Authorizer{chats: chats, messages: messages}
}

// ChatExists reports whether the chat is live.
func (a *Authorizer) ChatExists(ctx context.Context, chatID int) (bool, error) {
	return a.chats.ChatExists(ctx, chatID)
}

// IsMember reports whether username is in the chat's membership set.
// A nonexistent chat yields false, not an error: to a non-member, "no such
// chat" and "not your chat" must be indistinguishable.
func (a *Authorizer) IsMember(ctx context.Context, chatID int, username string) (bool, error) {
	return a.chats.IsMember(ctx, chatID, username)
}

// IsMessageAuthor reports whether username wrote the message at the given
// position. A missing message yields false.
func (a *Authorizer) IsMessageAuthor(ctx context.Context, chatID, messageID int, username string) (bool, error) {
	msg, err := a.messages.GetMessage(ctx, chatID, messageID)
	if err != nil {
		if _, notFound := isNotFound(err); notFound {
			return false, nil
		}
		return false, err
	}
	return msg.Author == username, nil
}

// RequireMember denies with Forbidden unless username is a member of the
// chat. denial is the action-specific message surfaced to the caller
// (e.g. "Not allowed to send in chat").
//
// Membership is checked BEFORE any existence distinction: a non-member
// poking at a chat — live or not — gets Forbidden, never NotFound.
func (a *Authorizer) RequireMember(ctx context.Context, chatID int, username, denial string) error {
	member, err := a.chats.IsMember(ctx, chatID, username)
	if err != nil {
		return fmt.Errorf("access: checking membership: %w", err)
	}
	if !member {
		return apperror.Forbidden(denial)
	}
	return nil
}

// RequireMessageAuthor enforces the full edit/delete rule chain and returns
// the message on success:
//
//  1. requester must be a member        → Forbidden
//  2. the message must exist            → NotFound
//  3. requester must be the author      → Forbidden ("only the sender...")
//
// The order is contractual: membership always wins over existence, and an
// existing message by someone else is a permission problem, not a lookup
// problem.
func (a *Authorizer) RequireMessageAuthor(ctx context.Context, chatID, messageID int, username string) (*model.Message, error) {
	if err := a.RequireMember(ctx, chatID, username, "Not allowed to edit chat"); err != nil {
		return nil, err
	}

	msg, err := a.messages.GetMessage(ctx, chatID, messageID)
	if err != nil {
		if appErr, notFound := isNotFound(err); notFound {
			return nil, appErr
		}
		return nil, fmt.Errorf("access: resolving message: %w", err)
	}

	if msg.Author != username {
		return nil, apperror.Forbidden("Only the sender is able to edit")
	}

	return msg, nil
}

func isNotFound(err error) (*apperror.AppError, bool) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && errors.Is(err, apperror.ErrNotFound) {
		return appErr, true
	}
	return nil, false
}
