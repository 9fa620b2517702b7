package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BhanuRekulampati/item-tracker/internal/model"
)

// ReplaceVerification deletes any existing verification for the user and
// inserts the new one in a single transaction, so a freshly issued code
// immediately invalidates its predecessor.
func (s *SQLite) ReplaceVerification(ctx context.Context, v *model.EmailVerification) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting verification transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM email_verifications WHERE user_id = ?`, v.UserID,
	); err != nil {
		return fmt.Errorf("removing prior verifications: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO email_verifications (user_id, email, code, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		v.UserID, v.Email, v.Code, v.ExpiresAt, v.CreatedAt,
	); err != nil {
		return fmt.Errorf("storing verification: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing verification: %w", err)
	}
	return nil
}

// GetVerification returns the verification matching user and code, expired
// or not. Expiry is the caller's check; the store only reports what exists.
func (s *SQLite) GetVerification(ctx context.Context, userID int64, code string) (*model.EmailVerification, error) {
	v := &model.EmailVerification{}
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, email, code, expires_at, created_at
		 FROM email_verifications WHERE user_id = ? AND code = ?`,
		userID, code,
	).Scan(&v.UserID, &v.Email, &v.Code, &v.ExpiresAt, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting verification: %w", err)
	}
	return v, nil
}

// DeleteVerification removes the verification matching user and code.
func (s *SQLite) DeleteVerification(ctx context.Context, userID int64, code string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM email_verifications WHERE user_id = ? AND code = ?`,
		userID, code,
	)
	if err != nil {
		return fmt.Errorf("deleting verification: %w", err)
	}
	return nil
}
