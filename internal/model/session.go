package model

import "time"

// Session is a server-held login session. The client only ever holds the
// session ID (inside a signed cookie); deleting the record ends the session.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
