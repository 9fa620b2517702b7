package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/BhanuRekulampati/item-tracker/internal/mail"
	"github.com/BhanuRekulampati/item-tracker/internal/model"
	"github.com/BhanuRekulampati/item-tracker/internal/otp"
	"github.com/BhanuRekulampati/item-tracker/internal/store"
)

// Service is the authentication gateway: it turns credentials into
// sessions and enforces the email verification gate. Until ConfirmOTP
// flips the verified flag, no path grants a session.
type Service struct {
	store      store.Store
	otp        *otp.Engine
	notifier   mail.Notifier
	production bool
}

func NewService(st store.Store, engine *otp.Engine, notifier mail.Notifier, production bool) *Service {
	return &Service{store: st, otp: engine, notifier: notifier, production: production}
}

// Register creates an unverified account and emails a verification code.
// The returned user is NOT logged in; the caller proceeds to OTP entry.
func (s *Service) Register(ctx context.Context, username, password, fullName, email, phone string) (*model.User, error) {
	existing, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	existing, err = s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, hash, fullName, email, phone)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if err := s.sendCode(ctx, user); err != nil {
		// The account exists and the code can be re-sent; only production
		// treats delivery failure as fatal.
		return nil, err
	}

	slog.Info("user registered", "user", user.Username)
	return user, nil
}

// ResendOTP issues and sends a fresh code, invalidating any pending one.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	return s.sendCode(ctx, user)
}

// ConfirmOTP verifies the code, marks the email verified, and establishes
// a session. This is the only path by which an unverified account becomes
// usable, and the implicit login is deliberate: confirming control of the
// email is a stronger proof than a password alone.
func (s *Service) ConfirmOTP(ctx context.Context, userID int64, code string) (*model.User, *model.Session, error) {
	if err := s.otp.Validate(ctx, userID, code); err != nil {
		return nil, nil, err
	}

	if err := s.store.SetUserVerified(ctx, userID); err != nil {
		return nil, nil, fmt.Errorf("marking verified: %w", err)
	}
	if err := s.otp.Consume(ctx, userID, code); err != nil {
		return nil, nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	session, err := s.newSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("email verified", "user", user.Username)
	return user, session, nil
}

// Login authenticates credentials and establishes a session. Unknown
// usernames and wrong passwords are indistinguishable; a correct password
// on an unverified account is reported distinctly and grants no session.
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, *model.Session, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, nil, ErrEmailNotVerified
	}

	session, err := s.newSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("user logged in", "user", user.Username)
	return user, session, nil
}

// Logout destroys the session; destroying an already-dead session is fine.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.store.DeleteSession(ctx, sessionID)
}

// CurrentUser resolves a session ID to its user.
func (s *Service) CurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("looking up session: %w", err)
	}
	if session == nil {
		return nil, ErrUnauthenticated
	}
	if !time.Now().Before(session.ExpiresAt) {
		_ = s.store.DeleteSession(ctx, sessionID)
		return nil, ErrUnauthenticated
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// UpdateProfile changes the user's name, email and phone. A changed email
// must not collide with another account.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, fullName, email, phone string) (*model.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if email != user.Email {
		existing, err := s.store.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("checking email: %w", err)
		}
		if existing != nil {
			return nil, ErrEmailTaken
		}
	}

	return s.store.UpdateUserProfile(ctx, userID, fullName, email, phone)
}

// ChangePassword replaces the user's password after verifying the current
// one.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, newPassword string) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if !CheckPassword(current, user.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return s.store.UpdateUserPassword(ctx, userID, hash)
}

func (s *Service) newSession(ctx context.Context, userID int64) (*model.Session, error) {
	now := time.Now()
	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(SessionLifetime),
		CreatedAt: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return session, nil
}

// sendCode issues a fresh OTP and attempts delivery. Outside production a
// delivery failure is logged and swallowed so the user can still verify
// via resend.
func (s *Service) sendCode(ctx context.Context, user *model.User) error {
	code, err := s.otp.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return err
	}

	if err := s.notifier.SendVerificationCode(ctx, user.Email, code, user.FullName); err != nil {
		if s.production {
			return fmt.Errorf("sending verification code: %w", err)
		}
		slog.Warn("verification email failed, continuing", "to", user.Email, "error", err)
	}
	return nil
}
