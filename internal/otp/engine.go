package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/BhanuRekulampati/item-tracker/internal/model"
	"github.com/BhanuRekulampati/item-tracker/internal/store"
)

// TTL is how long an issued code stays valid.
const TTL = 10 * time.Minute

// ErrInvalidOrExpired is returned for absent, mismatched and expired codes
// alike; a caller cannot tell which it was.
var ErrInvalidOrExpired = errors.New("invalid or expired verification code")

// Engine issues and checks one-time email verification codes. At most one
// code is active per user: issuing replaces any pending one, and expiry is
// enforced lazily at validation time rather than by a sweeper.
type Engine struct {
	store store.Store
	now   func() time.Time
}

func NewEngine(st store.Store) *Engine {
	return &Engine{store: st, now: time.Now}
}

// Issue generates a fresh 6-digit code valid for TTL and stores it,
// replacing any code previously issued to the user.
func (e *Engine) Issue(ctx context.Context, userID int64, email string) (string, error) {
	code, err := randomCode()
	if err != nil {
		return "", fmt.Errorf("generating code: %w", err)
	}

	now := e.now()
	v := &model.EmailVerification{
		UserID:    userID,
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(TTL),
		CreatedAt: now,
	}
	if err := e.store.ReplaceVerification(ctx, v); err != nil {
		return "", fmt.Errorf("storing code: %w", err)
	}

	return code, nil
}

// Validate checks whether the code matches the user's pending verification
// and is still within its validity window (strictly before expiry). It has
// no side effects; Consume is the mutating commit.
func (e *Engine) Validate(ctx context.Context, userID int64, code string) error {
	v, err := e.store.GetVerification(ctx, userID, code)
	if err != nil {
		return fmt.Errorf("looking up code: %w", err)
	}
	if v == nil || !e.now().Before(v.ExpiresAt) {
		return ErrInvalidOrExpired
	}
	return nil
}

// Consume deletes the matching verification record. Call after a
// successful Validate.
func (e *Engine) Consume(ctx context.Context, userID int64, code string) error {
	if err := e.store.DeleteVerification(ctx, userID, code); err != nil {
		return fmt.Errorf("consuming code: %w", err)
	}
	return nil
}

// randomCode returns a uniform random code in [100000, 999999], so the
// string form is always exactly 6 digits.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
