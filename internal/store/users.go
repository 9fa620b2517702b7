package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BhanuRekulampati/item-tracker/internal/model"
)

const userColumns = `id, username, password_hash, full_name, email, phone, email_verified, created_at`

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email, &u.Phone, &u.EmailVerified, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return u, nil
}

// CreateUser creates a new, unverified user.
func (s *SQLite) CreateUser(ctx context.Context, username, passwordHash, fullName, email, phone string) (*model.User, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, full_name, email, phone, email_verified)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		username, passwordHash, fullName, email, phone,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return s.GetUser(ctx, id)
}

// GetUser returns a user by ID.
func (s *SQLite) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
}

// GetUserByUsername returns a user by username.
func (s *SQLite) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username,
	))
}

// GetUserByEmail returns a user by email.
func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
}

// SetUserVerified marks a user's email as verified.
func (s *SQLite) SetUserVerified(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET email_verified = 1 WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("marking user verified: %w", err)
	}
	return nil
}

// UpdateUserProfile updates a user's full name, email and phone.
func (s *SQLite) UpdateUserProfile(ctx context.Context, id int64, fullName, email, phone string) (*model.User, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET full_name = ?, email = ?, phone = ? WHERE id = ?`,
		fullName, email, phone, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating user profile: %w", err)
	}
	return s.GetUser(ctx, id)
}

// UpdateUserPassword replaces a user's password hash.
func (s *SQLite) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}
