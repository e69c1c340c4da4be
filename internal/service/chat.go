package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anonymous123-code/chatApp/internal/access"
	"github.com/anonymous123-code/chatApp/internal/apperror"
	"github.com/anonymous123-code/chatApp/internal/model"
	"github.com/anonymous123-code/chatApp/internal/repository"
)

// MaxMessageLength caps message content. ~8KB of text is generous for chat
// and keeps a hostile client from using the store as a blob dump.
const MaxMessageLength = 8192

// ChatService handles chat lifecycle, membership, and the message lifecycle
// (send, edit, delete) including the authorship rules.
//
// Every method takes the requester's username — the already-authenticated
// actor from the token — and re-derives permission from current membership
// and authorship via the authorizer before any mutation.
type ChatService struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	authz    *access.Authorizer
	logger   *slog.Logger
}

// NewChatService creates a ChatService.
func NewChatService(
	chats repository.ChatRepository,
	messages repository.MessageRepository,
	authz *access.Authorizer,
	logger *slog.Logger,
) *ChatService {
	return &ChatService{
		chats:    chats,
		messages: messages,
		authz:    authz,
		logger:   logger,
	}
}

// Create makes a new chat with the requester as its only member. Any
// authenticated user may create chats; there is nothing to authorize.
func (s *ChatService) Create(ctx context.Context, requester string) (int, error) {
	chatID, err := s.chats.CreateChat(ctx, requester)
	if err != nil {
		return 0, fmt.Errorf("service/chat: creating chat: %w", err)
	}

	s.logger.Info("chat created",
		slog.Int("chatID", chatID),
		slog.String("owner", requester),
	)

	return chatID, nil
}

// Delete removes the chat with all its messages and invites. Any current
// member may delete the chat, not just its creator.
func (s *ChatService) Delete(ctx context.Context, chatID int, requester string) error {
	if err := s.authz.RequireMember(ctx, chatID, requester, "Not allowed to edit chat"); err != nil {
		return err
	}

	if err := s.chats.DeleteChat(ctx, chatID); err != nil {
		return fmt.Errorf("service/chat: deleting chat %d: %w", chatID, err)
	}

	s.logger.Info("chat deleted",
		slog.Int("chatID", chatID),
		slog.String("by", requester),
	)

	return nil
}

// ListMine returns the chats the requester is a member of.
func (s *ChatService) ListMine(ctx context.Context, requester string) ([]model.Chat, error) {
	chats, err := s.chats.ListByMember(ctx, requester)
	if err != nil {
		return nil, fmt.Errorf("service/chat: listing chats: %w", err)
	}
	return chats, nil
}

// Members returns the chat's membership set. Members only.
func (s *ChatService) Members(ctx context.Context, chatID int, requester string) ([]string, error) {
	if err := s.authz.RequireMember(ctx, chatID, requester, "Not a member"); err != nil {
		return nil, err
	}

	members, err := s.chats.ListMembers(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("service/chat: listing members of chat %d: %w", chatID, err)
	}
	return members, nil
}

// Kick removes member from the chat. Any current member may kick anyone,
// including themselves (leaving). Kicking someone who isn't in the chat is
// NotFound ("member not found") — checked only AFTER the requester's own
// membership, so outsiders still just see Forbidden.
func (s *ChatService) Kick(ctx context.Context, chatID int, member, requester string) error {
	if err := s.authz.RequireMember(ctx, chatID, requester, "Not allowed to edit chat"); err != nil {
		return err
	}

	if err := s.chats.RemoveMember(ctx, chatID, member); err != nil {
		return err // already a domain error ("member not found")
	}

	// The last member kicking themselves leaves a memberless chat. That's
	// an accepted terminal state: the chat is unreachable until an invite
	// created earlier brings someone back in. No cleanup.
	s.logger.Info("member kicked",
		slog.Int("chatID", chatID),
		slog.String("member", member),
		slog.String("by", requester),
	)

	return nil
}

// Send appends a message authored by the requester and returns its
// positional ID.
func (s *ChatService) Send(ctx context.Context, chatID int, requester, content string) (int, error) {
	if err := s.authz.RequireMember(ctx, chatID, requester, "Not allowed to send in chat"); err != nil {
		return 0, err
	}

	if len(content) > MaxMessageLength {
		return 0, apperror.ValidationFailed("content",
			fmt.Sprintf("message must be %d characters or less", MaxMessageLength))
	}

	messageID, err := s.messages.AppendMessage(ctx, chatID, requester, content)
	if err != nil {
		return 0, fmt.Errorf("service/chat: sending message to chat %d: %w", chatID, err)
	}

	return messageID, nil
}

// Messages returns the chat's messages in order. Members only.
func (s *ChatService) Messages(ctx context.Context, chatID int, requester string) ([]model.Message, error) {
	if err := s.authz.RequireMember(ctx, chatID, requester, "Not allowed to view chat"); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("service/chat: listing messages of chat %d: %w", chatID, err)
	}
	return messages, nil
}

// EditMessage replaces the content of one of the requester's own messages
// and marks it edited. The authorizer enforces the full rule chain: member
// → message exists → requester is the author.
func (s *ChatService) EditMessage(ctx context.Context, chatID, messageID int, requester, content string) error {
	if _, err := s.authz.RequireMessageAuthor(ctx, chatID, messageID, requester); err != nil {
		return err
	}

	if len(content) > MaxMessageLength {
		return apperror.ValidationFailed("content",
			fmt.Sprintf("message must be %d characters or less", MaxMessageLength))
	}

	if err := s.messages.EditMessage(ctx, chatID, messageID, content); err != nil {
		return fmt.Errorf("service/chat: editing message %d of chat %d: %w", messageID, chatID, err)
	}

	return nil
}

// DeleteMessage removes one of the requester's own messages. Later messages
// shift down one position — callers holding message IDs must refresh them.
func (s *ChatService) DeleteMessage(ctx context.Context, chatID, messageID int, requester string) error {
	if _, err := s.authz.RequireMessageAuthor(ctx, chatID, messageID, requester); err != nil {
		return err
	}

	if err := s.messages.DeleteMessage(ctx, chatID, messageID); err != nil {
		return fmt.Errorf("service/chat: deleting message %d of chat %d: %w", messageID, chatID, err)
	}

	return nil
}
