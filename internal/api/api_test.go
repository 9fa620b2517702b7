package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BhanuRekulampati/item-tracker/internal/auth"
	"github.com/BhanuRekulampati/item-tracker/internal/item"
	"github.com/BhanuRekulampati/item-tracker/internal/otp"
	"github.com/BhanuRekulampati/item-tracker/internal/store"
)

// testNotifier captures the last verification code instead of emailing it.
type testNotifier struct {
	lastCode string
}

func (n *testNotifier) SendVerificationCode(ctx context.Context, email, code, displayName string) error {
	n.lastCode = code
	return nil
}

type testServer struct {
	*httptest.Server
	notifier *testNotifier
	store    store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st := store.NewMemory()
	notifier := &testNotifier{}
	authSvc := auth.NewService(st, otp.NewEngine(st), notifier, false)
	itemSvc := item.NewService(st)

	srv := httptest.NewServer(NewRouter(authSvc, itemSvc, st, "test-secret", false))
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, notifier: notifier, store: st}
}

// newClient returns an HTTP client with its own cookie jar, i.e. its own
// browser session.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		decoded = nil
	}
	return resp.StatusCode, decoded
}

// registerAndVerify walks a fresh user through the full signup flow and
// leaves the client logged in.
func registerAndVerify(t *testing.T, srv *testServer, client *http.Client, username, email string) int64 {
	t.Helper()

	status, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/register", map[string]any{
		"username": username,
		"password": "pw123456",
		"fullName": "Test User",
		"email":    email,
		"phone":    "555-0000",
	})
	require.Equal(t, http.StatusCreated, status, "register: %v", body)
	userID := int64(body["userId"].(float64))

	status, body = doJSON(t, client, http.MethodPost, srv.URL+"/api/verify-email", map[string]any{
		"userId": userID,
		"code":   srv.notifier.lastCode,
	})
	require.Equal(t, http.StatusOK, status, "verify: %v", body)

	return userID
}

func TestSignupLoginAndDiscloseFlow(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	// Register.
	status, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/register", map[string]any{
		"username": "alice",
		"password": "pw123456",
		"fullName": "Alice Anderson",
		"email":    "alice@example.com",
		"phone":    "555-1234",
	})
	require.Equal(t, http.StatusCreated, status)
	userID := int64(body["userId"].(float64))
	assert.Equal(t, "alice@example.com", body["email"])

	// Login before verification is refused.
	status, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/login", map[string]any{
		"username": "alice", "password": "pw123456",
	})
	assert.Equal(t, http.StatusForbidden, status)

	// Wrong code is rejected.
	status, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/verify-email", map[string]any{
		"userId": userID, "code": "000000",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Correct code verifies and logs in via cookie.
	status, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/verify-email", map[string]any{
		"userId": userID, "code": srv.notifier.lastCode,
	})
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, client, http.MethodGet, srv.URL+"/api/user", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body["username"])

	// Register an item.
	status, body = doJSON(t, client, http.MethodPost, srv.URL+"/api/items", map[string]any{
		"name":        "Backpack",
		"description": "Black, red zipper",
	})
	require.Equal(t, http.StatusCreated, status)
	token := body["qr_token"].(string)
	assert.Len(t, token, item.TokenLength)

	// A stranger without any session scans the label.
	status, body = doJSON(t, http.DefaultClient, http.MethodGet, srv.URL+"/api/qr/"+token, nil)
	require.Equal(t, http.StatusOK, status)

	// The projection is exactly these keys, nothing more.
	assert.Equal(t, map[string]any{
		"fullName": "Alice Anderson",
		"email":    "alice@example.com",
		"phone":    "555-1234",
		"item": map[string]any{
			"name":        "Backpack",
			"description": "Black, red zipper",
		},
	}, body)

	// Each scan increments the counter.
	for i := 0; i < 2; i++ {
		status, _ = doJSON(t, http.DefaultClient, http.MethodGet, srv.URL+"/api/qr/"+token, nil)
		require.Equal(t, http.StatusOK, status)
	}
	items, err := srv.store.ListItemsByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].ScanCount)
	assert.NotNil(t, items[0].LastScan)
}

func TestDiscloseUnknownToken(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doJSON(t, http.DefaultClient, http.MethodGet, srv.URL+"/api/qr/AAAAAAAAAA", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDiscloseIgnoresInactiveFlag(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)
	registerAndVerify(t, srv, client, "alice", "alice@example.com")

	status, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/items", map[string]any{"name": "Keys"})
	require.Equal(t, http.StatusCreated, status)
	token := body["qr_token"].(string)
	itemID := int64(body["id"].(float64))

	status, _ = doJSON(t, client, http.MethodPut, srv.URL+fmt.Sprintf("/api/items/%d", itemID), map[string]any{
		"isActive": false,
	})
	require.Equal(t, http.StatusOK, status)

	// Deactivation hides nothing from finders; it is bookkeeping only.
	status, body = doJSON(t, http.DefaultClient, http.MethodGet, srv.URL+"/api/qr/"+token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Keys", body["item"].(map[string]any)["name"])
}

func TestDiscloseOmitsEmptyDescription(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)
	registerAndVerify(t, srv, client, "alice", "alice@example.com")

	status, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/items", map[string]any{"name": "Keys"})
	require.Equal(t, http.StatusCreated, status)
	token := body["qr_token"].(string)

	status, body = doJSON(t, http.DefaultClient, http.MethodGet, srv.URL+"/api/qr/"+token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["item"].(map[string]any)["description"])
}

func TestDiscloseMissingOwner(t *testing.T) {
	srv := newTestServer(t)

	// An item whose owner record is gone resolves but discloses nothing.
	it, err := srv.store.CreateItem(context.Background(), 9999, "Orphan", "", "ri-key-line", "orphantokn")
	require.NoError(t, err)

	status, body := doJSON(t, http.DefaultClient, http.MethodGet, srv.URL+"/api/qr/"+it.QRToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["error"], "owner information")
}

func TestItemMutationRequiresOwnership(t *testing.T) {
	srv := newTestServer(t)

	aliceClient := newClient(t)
	registerAndVerify(t, srv, aliceClient, "alice", "alice@example.com")

	status, body := doJSON(t, aliceClient, http.MethodPost, srv.URL+"/api/items", map[string]any{"name": "Backpack"})
	require.Equal(t, http.StatusCreated, status)
	itemID := int64(body["id"].(float64))
	itemURL := srv.URL + fmt.Sprintf("/api/items/%d", itemID)

	bobClient := newClient(t)
	registerAndVerify(t, srv, bobClient, "bob", "bob@example.com")

	status, _ = doJSON(t, bobClient, http.MethodGet, itemURL, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = doJSON(t, bobClient, http.MethodPut, itemURL, map[string]any{"name": "Mine now"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = doJSON(t, bobClient, http.MethodDelete, itemURL, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Owner still holds the untouched item.
	status, body = doJSON(t, aliceClient, http.MethodGet, itemURL, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Backpack", body["name"])
}

func TestAuthenticatedRoutesRejectMissingSession(t *testing.T) {
	srv := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/user"},
		{http.MethodPut, "/api/user"},
		{http.MethodGet, "/api/items"},
		{http.MethodPost, "/api/items"},
	} {
		status, _ := doJSON(t, http.DefaultClient, route.method, srv.URL+route.path, nil)
		assert.Equal(t, http.StatusUnauthorized, status, "%s %s", route.method, route.path)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)
	registerAndVerify(t, srv, client, "alice", "alice@example.com")

	status, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/logout", nil)
	require.Equal(t, http.StatusOK, status)

	// The cookie is cleared and the server-side record is gone, so even a
	// replayed copy of the old cookie would fail.
	status, _ = doJSON(t, client, http.MethodGet, srv.URL+"/api/user", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegisterConflicts(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)
	registerAndVerify(t, srv, client, "alice", "alice@example.com")

	status, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/register", map[string]any{
		"username": "alice", "password": "pw123456", "email": "other@example.com",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "username")

	status, body = doJSON(t, client, http.MethodPost, srv.URL+"/api/register", map[string]any{
		"username": "alice2", "password": "pw123456", "email": "alice@example.com",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "email")
}

func TestSessionCookieAttributes(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	status, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/register", map[string]any{
		"username": "alice", "password": "pw123456", "email": "alice@example.com",
	})
	require.Equal(t, http.StatusCreated, status)
	userID := int64(body["userId"].(float64))

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{
		"userId": userID, "code": srv.notifier.lastCode,
	}))
	resp, err := http.Post(srv.URL+"/api/verify-email", "application/json", &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "verify-email must set the session cookie")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.False(t, cookie.Secure, "secure only in production")

	// The cookie value is opaque to clients but not a raw session ID.
	assert.True(t, strings.Count(cookie.Value, ".") == 2, "expected a signed value")
}
