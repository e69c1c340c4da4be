package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/anonymous123-code/chatApp/internal/apperror"
	"github.com/anonymous123-code/chatApp/internal/repository"
)

// compile-time check that *DB implements repository.InviteRepository
var _ repository.InviteRepository = (*DB)(nil)

// Claim atomically registers code for chatID.
//
// The code namespace is GLOBAL — a code collides with any live invite, not
// just invites of the same chat. The free-check and the insert both run
// under db.mu, so two concurrent claims that generated the same code can't
// both observe it as free; the loser gets ErrConflict and the service layer
// regenerates. The PRIMARY KEY on code is the backstop.
func (db *DB) Claim(ctx context.Context, code string, chatID int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM invites WHERE code = ?`, code,
	).Scan(&one)
	if err == nil {
		return apperror.Conflict("invite", code)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: checking invite code: %w", err)
	}

	err = db.conn.QueryRowContext(ctx, `SELECT 1 FROM chats WHERE id = ?`, chatID).Scan(&one)
	if err == sql.ErrNoRows {
		return apperror.NotFound("chat", strconv.Itoa(chatID))
	}
	if err != nil {
		return fmt.Errorf("sqlite: checking chat %d: %w", chatID, err)
	}

	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO invites (code, chat_id) VALUES (?, ?)`, code, chatID,
	); err != nil {
		return fmt.Errorf("sqlite: inserting invite for chat %d: %w", chatID, err)
	}

	return nil
}

// GetChatID resolves an invite code to its chat.
// Returns apperror.ErrNotFound for an unknown code.
func (db *DB) GetChatID(ctx context.Context, code string) (int, error) {
	var chatID int
	err := db.conn.QueryRowContext(ctx,
		`SELECT chat_id FROM invites WHERE code = ?`, code,
	).Scan(&chatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, apperror.NotFound("invite", code)
		}
		return 0, fmt.Errorf("sqlite: resolving invite: %w", err)
	}
	return chatID, nil
}

// DeleteInvite removes the code from the registry.
func (db *DB) DeleteInvite(ctx context.Context, code string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.ExecContext(ctx, `DELETE FROM invites WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("sqlite: deleting invite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("invite", code)
	}

	return nil
}

// ListByChat returns all live codes referencing the chat, oldest first.
func (db *DB) ListByChat(ctx context.Context, chatID int) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT code FROM invites WHERE chat_id = ? ORDER BY created_at, code`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing invites of chat %d: %w", chatID, err)
	}
	defer rows.Close()

	codes := make([]string, 0, 4)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("sqlite: scanning invite row: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating invites: %w", err)
	}

	return codes, nil
}
