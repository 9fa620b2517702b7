package model

import "time"

// EmailVerification is a pending email-proof challenge. At most one exists
// per user at a time; issuing a new code replaces any prior one.
type EmailVerification struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
