package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BhanuRekulampati/item-tracker/internal/otp"
	"github.com/BhanuRekulampati/item-tracker/internal/store"
)

// captureNotifier records sent codes and can be made to fail.
type captureNotifier struct {
	lastEmail string
	lastCode  string
	sent      int
	fail      bool
}

func (n *captureNotifier) SendVerificationCode(ctx context.Context, email, code, displayName string) error {
	if n.fail {
		return errors.New("smtp down")
	}
	n.lastEmail = email
	n.lastCode = code
	n.sent++
	return nil
}

func newTestService(t *testing.T) (*Service, *captureNotifier, store.Store) {
	t.Helper()
	st := store.NewMemory()
	notifier := &captureNotifier{}
	svc := NewService(st, otp.NewEngine(st), notifier, false)
	return svc, notifier, st
}

func register(t *testing.T, svc *Service) int64 {
	t.Helper()
	user, err := svc.Register(context.Background(), "alice", "pw123456", "Alice A", "a@x.com", "555-1111")
	require.NoError(t, err)
	return user.ID
}

func TestRegisterStoresHashAndSendsCode(t *testing.T) {
	svc, notifier, st := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "pw123456", "Alice A", "a@x.com", "555-1111")
	require.NoError(t, err)

	stored, _ := st.GetUser(ctx, user.ID)
	assert.NotEqual(t, "pw123456", stored.PasswordHash)
	assert.True(t, CheckPassword("pw123456", stored.PasswordHash))
	assert.False(t, stored.EmailVerified)

	assert.Equal(t, "a@x.com", notifier.lastEmail)
	assert.Len(t, notifier.lastCode, 6)
}

func TestRegisterConflicts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc)

	_, err := svc.Register(ctx, "alice", "pw", "Other", "other@x.com", "1")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(ctx, "other", "pw", "Other", "a@x.com", "1")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterDeliveryFailureSoftOutsideProduction(t *testing.T) {
	st := store.NewMemory()
	notifier := &captureNotifier{fail: true}
	svc := NewService(st, otp.NewEngine(st), notifier, false)

	user, err := svc.Register(context.Background(), "alice", "pw123456", "Alice A", "a@x.com", "1")
	require.NoError(t, err, "delivery failure must not fail registration in dev")
	require.NotNil(t, user)

	// The code exists and can be re-sent once delivery recovers.
	notifier.fail = false
	require.NoError(t, svc.ResendOTP(context.Background(), "a@x.com"))
	assert.Len(t, notifier.lastCode, 6)
}

func TestRegisterDeliveryFailureHardInProduction(t *testing.T) {
	st := store.NewMemory()
	notifier := &captureNotifier{fail: true}
	svc := NewService(st, otp.NewEngine(st), notifier, true)

	_, err := svc.Register(context.Background(), "alice", "pw123456", "Alice A", "a@x.com", "1")
	assert.Error(t, err)
}

func TestResendOTP(t *testing.T) {
	svc, notifier, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ResendOTP(ctx, "nobody@x.com"), ErrUserNotFound)

	userID := register(t, svc)
	firstCode := notifier.lastCode

	require.NoError(t, svc.ResendOTP(ctx, "a@x.com"))
	assert.Equal(t, 2, notifier.sent)

	// If the new code differs, the old one must be dead immediately.
	if notifier.lastCode != firstCode {
		_, _, err := svc.ConfirmOTP(ctx, userID, firstCode)
		assert.ErrorIs(t, err, otp.ErrInvalidOrExpired)
	}

	_, _, err := svc.ConfirmOTP(ctx, userID, notifier.lastCode)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ResendOTP(ctx, "a@x.com"), ErrAlreadyVerified)
}

func TestConfirmOTP(t *testing.T) {
	svc, notifier, st := newTestService(t)
	ctx := context.Background()
	userID := register(t, svc)

	_, _, err := svc.ConfirmOTP(ctx, userID, "000000")
	assert.ErrorIs(t, err, otp.ErrInvalidOrExpired)

	user, session, err := svc.ConfirmOTP(ctx, userID, notifier.lastCode)
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)
	require.NotNil(t, session)

	// The session works immediately.
	current, err := svc.CurrentUser(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, current.ID)

	// The code is consumed.
	v, _ := st.GetVerification(ctx, userID, notifier.lastCode)
	assert.Nil(t, v)
	_, _, err = svc.ConfirmOTP(ctx, userID, notifier.lastCode)
	assert.ErrorIs(t, err, otp.ErrInvalidOrExpired)
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	svc, notifier, _ := newTestService(t)
	ctx := context.Background()
	userID := register(t, svc)

	// Correct password, unverified: distinct error, no session.
	_, session, err := svc.Login(ctx, "alice", "pw123456")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
	assert.Nil(t, session)

	_, _, err = svc.ConfirmOTP(ctx, userID, notifier.lastCode)
	require.NoError(t, err)

	user, session, err := svc.Login(ctx, "alice", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	require.NotNil(t, session)
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	svc, notifier, _ := newTestService(t)
	ctx := context.Background()
	userID := register(t, svc)
	svc.ConfirmOTP(ctx, userID, notifier.lastCode)

	_, _, unknownErr := svc.Login(ctx, "nobody", "pw123456")
	_, _, wrongErr := svc.Login(ctx, "alice", "wrong-password")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongErr)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, notifier, _ := newTestService(t)
	ctx := context.Background()
	userID := register(t, svc)
	_, session, err := svc.ConfirmOTP(ctx, userID, notifier.lastCode)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.ID))
	_, err = svc.CurrentUser(ctx, session.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.NoError(t, svc.Logout(ctx, session.ID))
}

func TestConcurrentSessionsAllowed(t *testing.T) {
	svc, notifier, _ := newTestService(t)
	ctx := context.Background()
	userID := register(t, svc)
	svc.ConfirmOTP(ctx, userID, notifier.lastCode)

	_, first, err := svc.Login(ctx, "alice", "pw123456")
	require.NoError(t, err)
	_, second, err := svc.Login(ctx, "alice", "pw123456")
	require.NoError(t, err)

	// Logging in again does not kill the earlier session.
	_, err = svc.CurrentUser(ctx, first.ID)
	assert.NoError(t, err)
	_, err = svc.CurrentUser(ctx, second.ID)
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc, notifier, _ := newTestService(t)
	ctx := context.Background()
	userID := register(t, svc)
	svc.ConfirmOTP(ctx, userID, notifier.lastCode)

	_, err := svc.Register(ctx, "bob", "pw123456", "Bob B", "b@x.com", "2")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, userID, "Alice Updated", "new@x.com", "555-2222")
	require.NoError(t, err)
	assert.Equal(t, "Alice Updated", updated.FullName)
	assert.Equal(t, "new@x.com", updated.Email)

	// Changing to another account's email is a conflict.
	_, err = svc.UpdateProfile(ctx, userID, "Alice", "b@x.com", "555-2222")
	assert.ErrorIs(t, err, ErrEmailTaken)

	// Keeping your own email is not.
	_, err = svc.UpdateProfile(ctx, userID, "Alice", "new@x.com", "555-3333")
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, notifier, _ := newTestService(t)
	ctx := context.Background()
	userID := register(t, svc)
	svc.ConfirmOTP(ctx, userID, notifier.lastCode)

	assert.ErrorIs(t, svc.ChangePassword(ctx, userID, "wrong", "newpw12345"), ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(ctx, userID, "pw123456", "newpw12345"))

	_, _, err := svc.Login(ctx, "alice", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "alice", "newpw12345")
	assert.NoError(t, err)
}
