package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/anonymous123-code/chatApp/internal/apperror"
	"github.com/anonymous123-code/chatApp/internal/model"
	"github.com/anonymous123-code/chatApp/internal/repository"
)

// compile-time check that *DB implements repository.ChatRepository
var _ repository.ChatRepository = (*DB)(nil)

// CreateChat allocates a chat ID and inserts the chat with owner as its sole
// member.
//
// ID POLICY — SMALLEST FREE INTEGER, NOT MAX+1:
// IDs of deleted chats are reclaimed. We scan the live IDs in ascending
// order and take the first gap (or the count itself when there is no gap:
// IDs 0..n-1 live → allocate n). An auto-incrementing column would change
// the externally observable IDs, so the scan is done explicitly.
//
// db.mu covers the scan AND the insert; a concurrent Create can't observe
// the same gap. A concurrent Delete can only free more IDs, which never
// invalidates the one chosen here.
func (db *DB) CreateChat(ctx context.Context, owner string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.QueryContext(ctx, `SELECT id FROM chats ORDER BY id ASC`)
	if err != nil {
		return 0, fmt.Errorf("sqlite: scanning chat ids: %w", err)
	}

	chatID := 0
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("sqlite: scanning chat id row: %w", err)
		}
		if id != chatID {
			// First gap found: chatID is free.
			break
		}
		chatID++
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("sqlite: iterating chat ids: %w", err)
	}
	rows.Close()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning chat create: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO chats (id) VALUES (?)`, chatID); err != nil {
		return 0, fmt.Errorf("sqlite: inserting chat %d: %w", chatID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_members (chat_id, username) VALUES (?, ?)`, chatID, owner,
	); err != nil {
		return 0, fmt.Errorf("sqlite: adding owner %s to chat %d: %w", owner, chatID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing chat create: %w", err)
	}

	return chatID, nil
}

// DeleteChat removes the chat. The ON DELETE CASCADE constraints take its
// members, messages, and invites with it in the same statement — callers see
// either the full chat or nothing.
func (db *DB) DeleteChat(ctx context.Context, chatID int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, chatID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting chat %d: %w", chatID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("chat", strconv.Itoa(chatID))
	}

	return nil
}

// ChatExists reports whether the chat is live.
func (db *DB) ChatExists(ctx context.Context, chatID int) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM chats WHERE id = ?`, chatID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking chat %d: %w", chatID, err)
	}
	return true, nil
}

// IsMember reports whether username belongs to the chat. A nonexistent chat
// has no members, so it yields false rather than an error.
func (db *DB) IsMember(ctx context.Context, chatID int, username string) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM chat_members WHERE chat_id = ? AND username = ?`,
		chatID, username,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking membership of %s in chat %d: %w", username, chatID, err)
	}
	return true, nil
}

// ListMembers returns the chat's membership set, sorted by username.
func (db *DB) ListMembers(ctx context.Context, chatID int) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT username FROM chat_members WHERE chat_id = ? ORDER BY username`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing members of chat %d: %w", chatID, err)
	}
	defer rows.Close()

	members := make([]string, 0, 8)
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("sqlite: scanning member row: %w", err)
		}
		members = append(members, username)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating members: %w", err)
	}

	return members, nil
}

// AddMember adds username to the chat's membership set. INSERT OR IGNORE
// gives set semantics: adding an existing member is a silent no-op instead
// of a primary key violation.
func (db *DB) AddMember(ctx context.Context, chatID int, username string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO chat_members (chat_id, username) VALUES (?, ?)`,
		chatID, username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding member %s to chat %d: %w", username, chatID, err)
	}
	return nil
}

// RemoveMember removes username from the chat's membership set.
// Removing someone who isn't a member is an error, not a no-op — the caller
// (kick) needs to distinguish "kicked" from "was never here".
func (db *DB) RemoveMember(ctx context.Context, chatID int, username string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM chat_members WHERE chat_id = ? AND username = ?`,
		chatID, username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing member %s from chat %d: %w", username, chatID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundMsg("member not found")
	}

	return nil
}

// ListByMember returns every chat username belongs to, including each chat's
// full membership set, ascending by chat ID.
//
// One self-join instead of a query per chat: row (chat_id, member) appears
// once for every member of every chat the user is in.
func (db *DB) ListByMember(ctx context.Context, username string) ([]model.Chat, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT mine.chat_id, everyone.username
		 FROM chat_members mine
		 JOIN chat_members everyone ON everyone.chat_id = mine.chat_id
		 WHERE mine.username = ?
		 ORDER BY mine.chat_id, everyone.username`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing chats of %s: %w", username, err)
	}
	defer rows.Close()

	chats := make([]model.Chat, 0, 8)
	for rows.Next() {
		var chatID int
		var member string
		if err := rows.Scan(&chatID, &member); err != nil {
			return nil, fmt.Errorf("sqlite: scanning chat row: %w", err)
		}
		if len(chats) == 0 || chats[len(chats)-1].ID != chatID {
			chats = append(chats, model.Chat{ID: chatID, Members: []string{}})
		}
		last := &chats[len(chats)-1]
		last.Members = append(last.Members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating chats: %w", err)
	}

	return chats, nil
}
