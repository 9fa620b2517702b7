package store

import (
	"context"
	"time"

	"github.com/BhanuRekulampati/item-tracker/internal/model"
)

// Store is the storage port. Component logic depends only on this
// interface; the SQLite and in-memory backends are interchangeable.
//
// Lookups return (nil, nil) when the record does not exist. Uniqueness of
// usernames, emails and QR tokens is checked by callers before writing;
// the backends additionally enforce it and return an error on violation.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, username, passwordHash, fullName, email, phone string) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	SetUserVerified(ctx context.Context, id int64) error
	UpdateUserProfile(ctx context.Context, id int64, fullName, email, phone string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error

	// Email verifications. ReplaceVerification atomically removes any
	// existing verification for the user before inserting the new one, so
	// at most one is ever active per user.
	ReplaceVerification(ctx context.Context, v *model.EmailVerification) error
	GetVerification(ctx context.Context, userID int64, code string) (*model.EmailVerification, error)
	DeleteVerification(ctx context.Context, userID int64, code string) error

	// Items.
	CreateItem(ctx context.Context, userID int64, name, description, icon, qrToken string) (*model.Item, error)
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	GetItemByToken(ctx context.Context, token string) (*model.Item, error)
	ListItemsByUser(ctx context.Context, userID int64) ([]model.Item, error)
	UpdateItem(ctx context.Context, id int64, name, description, icon string, active bool) (*model.Item, error)
	DeleteItem(ctx context.Context, id int64) (bool, error)
	// RecordScan is a single atomic increment of scan_count that also sets
	// last_scan. Returns (nil, nil) if the item no longer exists.
	RecordScan(ctx context.Context, id int64, at time.Time) (*model.Item, error)

	// Sessions.
	CreateSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	DeleteSession(ctx context.Context, id string) error
}
