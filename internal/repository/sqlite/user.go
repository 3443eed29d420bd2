package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/breakline/surfspots/internal/apperror"
	"github.com/breakline/surfspots/internal/model"
	"github.com/breakline/surfspots/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// UpsertByEmail inserts a new user on first sign-in, or refreshes the
// profile fields of an existing one. The email address is the identity key.
//
// We deliberately do NOT touch the role column on the update path: role is
// only ever changed administratively, and an OAuth round-trip must not reset
// an admin back to "user".
func (db *DB) UpsertByEmail(ctx context.Context, user *model.User) error {
	var existing model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, role, created_at FROM users WHERE email = ?`, user.Email,
	).Scan(&existing.ID, &existing.Role, &existing.CreatedAt)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by email %s: %w", user.Email, err)
	}

	if existing.ID != "" {
		// Returning user — refresh profile fields, keep identity and role.
		user.ID = existing.ID
		user.Role = existing.Role
		user.CreatedAt = existing.CreatedAt
		user.UpdatedAt = time.Now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET username = ?, image = ?, provider = ?, updated_at = ?
			 WHERE id = ?`,
			user.Username,
			user.Image,
			user.Provider,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	// First sign-in — create the account with the default role.
	now := time.Now()
	user.ID = xid.New().String()
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, username, image, provider, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Username,
		user.Image,
		user.Provider,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByEmail retrieves a user by their email address.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `WHERE email = ?`, email)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, username, image, provider, role, created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.Image,
		&u.Provider,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprintf("%v", arg))
		}
		return nil, fmt.Errorf("sqlite: getting user %v: %w", arg, err)
	}

	return &u, nil
}
