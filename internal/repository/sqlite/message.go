package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/anonymous123-code/chatApp/internal/apperror"
	"github.com/anonymous123-code/chatApp/internal/model"
	"github.com/anonymous123-code/chatApp/internal/repository"
)

// compile-time check that *DB implements repository.MessageRepository
var _ repository.MessageRepository = (*DB)(nil)

// POSITIONAL MESSAGE IDS:
// A message's public ID is its index in the chat's sequence, not a stored
// column. Rows carry an internal append counter (messages.id, AUTOINCREMENT
// so it is never reused) that fixes the insertion order; position N is
// simply the N-th row of the chat ordered by that counter.
//
// This makes the shift-on-delete contract fall out of the representation:
// deleting position 0 of [A,B,C] leaves [B,C] at positions [0,1], and a
// stale reference to the old position 1 (B) now resolves to C. Nothing is
// renumbered — later reads just count differently.

// AppendMessage adds a message to the end of the chat's sequence and returns its
// positional ID (= the number of messages already in the chat).
//
// Runs under db.mu so the position can't be claimed twice, and so a
// concurrent chat Delete can't interleave: the append either completes on a
// live chat or fails with NotFound — never a message on a deleted chat.
func (db *DB) AppendMessage(ctx context.Context, chatID int, author, content string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var one int
	err := db.conn.QueryRowContext(ctx, `SELECT 1 FROM chats WHERE id = ?`, chatID).Scan(&one)
	if err == sql.ErrNoRows {
		return 0, apperror.NotFound("chat", strconv.Itoa(chatID))
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking chat %d: %w", chatID, err)
	}

	var position int
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE chat_id = ?`, chatID,
	).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting messages in chat %d: %w", chatID, err)
	}

	// Wall-clock capture, nanosecond resolution. No monotonicity guarantee
	// across chats — that's accepted behaviour.
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO messages (chat_id, author, content, timestamp, edited)
		 VALUES (?, ?, ?, ?, 0)`,
		chatID, author, content, time.Now().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: appending message to chat %d: %w", chatID, err)
	}

	return position, nil
}

// GetMessage returns the message at the given position in the chat's sequence, or
// apperror.ErrNotFound if the chat has no such position.
func (db *DB) GetMessage(ctx context.Context, chatID, messageID int) (*model.Message, error) {
	if messageID < 0 {
		return nil, apperror.NotFound("message", strconv.Itoa(messageID))
	}

	m := model.Message{ID: messageID, ChatID: chatID}

	err := db.conn.QueryRowContext(ctx,
		`SELECT author, content, timestamp, edited
		 FROM messages WHERE chat_id = ?
		 ORDER BY id LIMIT 1 OFFSET ?`,
		chatID, messageID,
	).Scan(&m.Author, &m.Content, &m.Timestamp, &m.Edited)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("message", strconv.Itoa(messageID))
		}
		return nil, fmt.Errorf("sqlite: getting message %d of chat %d: %w", messageID, chatID, err)
	}

	return &m, nil
}

// ListMessages returns the chat's messages in insertion order, positional IDs
// assigned by enumeration. Empty slice (not nil) for an empty chat.
func (db *DB) ListMessages(ctx context.Context, chatID int) ([]model.Message, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT author, content, timestamp, edited
		 FROM messages WHERE chat_id = ? ORDER BY id`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages of chat %d: %w", chatID, err)
	}
	defer rows.Close()

	messages := make([]model.Message, 0, 16)
	for rows.Next() {
		m := model.Message{ID: len(messages), ChatID: chatID}
		if err := rows.Scan(&m.Author, &m.Content, &m.Timestamp, &m.Edited); err != nil {
			return nil, fmt.Errorf("sqlite: scanning message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating messages: %w", err)
	}

	return messages, nil
}

// EditMessage replaces the content of the message at the given position and marks
// it edited. Resolve-then-update runs under db.mu so the position can't
// shift between the two statements.
func (db *DB) EditMessage(ctx context.Context, chatID, messageID int, content string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	rowID, err := db.resolvePosition(ctx, chatID, messageID)
	if err != nil {
		return err
	}

	_, err = db.conn.ExecContext(ctx,
		`UPDATE messages SET content = ?, edited = 1 WHERE id = ?`,
		content, rowID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: editing message %d of chat %d: %w", messageID, chatID, err)
	}

	return nil
}

// DeleteMessage removes the message at the given position. No renumbering happens:
// every later message's positional ID drops by one simply because the
// sequence got shorter.
func (db *DB) DeleteMessage(ctx context.Context, chatID, messageID int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	rowID, err := db.resolvePosition(ctx, chatID, messageID)
	if err != nil {
		return err
	}

	_, err = db.conn.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, rowID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting message %d of chat %d: %w", messageID, chatID, err)
	}

	return nil
}

// resolvePosition maps a positional message ID to the internal row ID.
// Callers must hold db.mu when the result feeds a mutation.
func (db *DB) resolvePosition(ctx context.Context, chatID, messageID int) (int64, error) {
	if messageID < 0 {
		return 0, apperror.NotFound("message", strconv.Itoa(messageID))
	}

	var rowID int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM messages WHERE chat_id = ?
		 ORDER BY id LIMIT 1 OFFSET ?`,
		chatID, messageID,
	).Scan(&rowID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, apperror.NotFound("message", strconv.Itoa(messageID))
		}
		return 0, fmt.Errorf("sqlite: resolving message %d of chat %d: %w", messageID, chatID, err)
	}

	return rowID, nil
}
