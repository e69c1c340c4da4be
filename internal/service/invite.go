package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/anonymous123-code/chatApp/internal/access"
	"github.com/anonymous123-code/chatApp/internal/apperror"
	"github.com/anonymous123-code/chatApp/internal/repository"
)

const (
	// inviteCodeLength is fixed: every code is exactly 10 characters.
	inviteCodeLength = 10

	// inviteCharset is the 62-symbol alphanumeric alphabet codes are drawn
	// from, uniform at random per character. 62^10 ≈ 8.4e17 possible codes.
	inviteCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// InviteService manages the invite lifecycle: generation, redemption, and
// deletion. Codes live in one global namespace shared by all chats.
type InviteService struct {
	invites repository.InviteRepository
	chats   repository.ChatRepository
	authz   *access.Authorizer
	logger  *slog.Logger
}

// NewInviteService creates an InviteService.
func NewInviteService(
	invites repository.InviteRepository,
	chats repository.ChatRepository,
	authz *access.Authorizer,
	logger *slog.Logger,
) *InviteService {
	return &InviteService{
		invites: invites,
		chats:   chats,
		authz:   authz,
		logger:  logger,
	}
}

// Generate creates a new invite code for the chat. Members only.
//
// The code is generated, then claimed atomically against the global
// namespace; if another invite already holds it the claim fails with
// ErrConflict and we generate a fresh one. At 62^10 codes a collision is
// astronomically unlikely, but the retry loop is a correctness requirement,
// not an optimization: without it a collision would silently alias two
// chats. Collisions never surface to the caller.
func (s *InviteService) Generate(ctx context.Context, chatID int, requester string) (string, error) {
	if err := s.authz.RequireMember(ctx, chatID, requester, "Non-member user can't create invites"); err != nil {
		return "", err
	}

	for {
		code, err := randomInviteCode()
		if err != nil {
			return "", fmt.Errorf("service/invite: generating code: %w", err)
		}

		err = s.invites.Claim(ctx, code, chatID)
		if err == nil {
			s.logger.Info("invite created",
				slog.Int("chatID", chatID),
				slog.String("by", requester),
			)
			return code, nil
		}
		if errors.Is(err, apperror.ErrConflict) {
			continue // code taken, roll again
		}
		if errors.Is(err, apperror.ErrNotFound) {
			// Chat deleted between the membership check and the claim.
			return "", apperror.Forbidden("Non-member user can't create invites")
		}
		return "", fmt.Errorf("service/invite: claiming code for chat %d: %w", chatID, err)
	}
}

// List returns all live codes for the chat. Members only.
func (s *InviteService) List(ctx context.Context, chatID int, requester string) ([]string, error) {
	if err := s.authz.RequireMember(ctx, chatID, requester, "Not allowed to view chat invites"); err != nil {
		return nil, err
	}

	codes, err := s.invites.ListByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("service/invite: listing invites of chat %d: %w", chatID, err)
	}
	return codes, nil
}

// Redeem joins the requester to the invite's chat. The invite survives —
// codes are multi-use until a member deletes them.
//
// An unknown code and a repeat redemption are both the CALLER's mistake, so
// both are BadRequest, not Forbidden/NotFound: someone holding a dead code
// was never authorized to learn anything about the chat behind it.
func (s *InviteService) Redeem(ctx context.Context, code, requester string) (int, error) {
	chatID, err := s.invites.GetChatID(ctx, code)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return 0, apperror.ValidationFailed("invite", "Invalid invite")
		}
		return 0, fmt.Errorf("service/invite: resolving invite: %w", err)
	}

	member, err := s.authz.IsMember(ctx, chatID, requester)
	if err != nil {
		return 0, fmt.Errorf("service/invite: checking membership: %w", err)
	}
	if member {
		return 0, apperror.ValidationFailed("invite", "Joined already")
	}

	if err := s.chats.AddMember(ctx, chatID, requester); err != nil {
		return 0, fmt.Errorf("service/invite: joining chat %d: %w", chatID, err)
	}

	s.logger.Info("invite redeemed",
		slog.Int("chatID", chatID),
		slog.String("username", requester),
	)

	return chatID, nil
}

// Delete removes an invite code. Any member of the invite's chat may delete
// it — including one who joined through it moments ago.
func (s *InviteService) Delete(ctx context.Context, code, requester string) error {
	chatID, err := s.invites.GetChatID(ctx, code)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ValidationFailed("invite", "Invalid invite")
		}
		return fmt.Errorf("service/invite: resolving invite: %w", err)
	}

	if err := s.authz.RequireMember(ctx, chatID, requester, "Non-member user can't delete invite"); err != nil {
		return err
	}

	if err := s.invites.DeleteInvite(ctx, code); err != nil {
		return fmt.Errorf("service/invite: deleting invite: %w", err)
	}

	s.logger.Info("invite deleted",
		slog.Int("chatID", chatID),
		slog.String("by", requester),
	)

	return nil
}

// randomInviteCode draws inviteCodeLength characters uniform-at-random from
// inviteCharset using crypto/rand. rand.Int does rejection sampling
// internally, so there is no modulo bias.
func randomInviteCode() (string, error) {
	max := big.NewInt(int64(len(inviteCharset)))
	buf := make([]byte, inviteCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = inviteCharset[n.Int64()]
	}
	return string(buf), nil
}
