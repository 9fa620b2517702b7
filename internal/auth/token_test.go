package auth

import (
	"testing"
	"time"

	"github.com/BhanuRekulampati/item-tracker/internal/model"
)

func testSession() *model.Session {
	now := time.Now()
	return &model.Session{
		ID:        "11111111-2222-3333-4444-555555555555",
		UserID:    42,
		ExpiresAt: now.Add(SessionLifetime),
		CreatedAt: now,
	}
}

func TestSignAndParseSession(t *testing.T) {
	secret := "test-secret-key"
	session := testSession()

	value, err := SignSession(secret, session)
	if err != nil {
		t.Fatalf("SignSession: %v", err)
	}
	if value == "" {
		t.Fatal("expected non-empty cookie value")
	}

	claims, err := ParseSession(secret, value)
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user_id 42, got %d", claims.UserID)
	}
	if claims.ID != session.ID {
		t.Errorf("expected session id %q, got %q", session.ID, claims.ID)
	}
}

func TestParseSessionWrongSecret(t *testing.T) {
	value, _ := SignSession("secret1", testSession())

	_, err := ParseSession("secret2", value)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestParseSessionInvalid(t *testing.T) {
	_, err := ParseSession("secret", "not-a-cookie")
	if err == nil {
		t.Error("expected error for invalid value")
	}
}

func TestParseSessionExpired(t *testing.T) {
	session := testSession()
	session.ExpiresAt = time.Now().Add(-time.Hour)
	session.CreatedAt = time.Now().Add(-2 * time.Hour)

	value, _ := SignSession("secret", session)
	_, err := ParseSession("secret", value)
	if err == nil {
		t.Error("expected error for expired session envelope")
	}
}
