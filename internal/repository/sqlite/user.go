package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/anonymous123-code/chatApp/internal/apperror"
	"github.com/anonymous123-code/chatApp/internal/model"
	"github.com/anonymous123-code/chatApp/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user. The internal ID (xid) and creation timestamp
// are assigned here; the caller provides username, profile fields, and the
// password hash.
//
// The existence check and the insert run under db.mu, so two concurrent
// registrations of the same username can't both pass the check. The UNIQUE
// constraint on username is the backstop.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE username = ?`, user.Username,
	).Scan(&exists)
	if err == nil {
		return apperror.Conflict("user", user.Username)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: checking username %s: %w", user.Username, err)
	}

	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, full_name, email, password_hash, disabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.Disabled,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	return nil
}

// GetByUsername retrieves a user by username.
// Returns apperror.ErrNotFound if no such user exists.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, full_name, email, password_hash, disabled, created_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(
		&u.ID,
		&u.Username,
		&u.FullName,
		&u.Email,
		&u.PasswordHash,
		&u.Disabled,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", username, err)
	}

	return &u, nil
}
