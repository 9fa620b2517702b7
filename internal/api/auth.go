package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/BhanuRekulampati/item-tracker/internal/auth"
	"github.com/BhanuRekulampati/item-tracker/internal/model"
	"github.com/BhanuRekulampati/item-tracker/internal/otp"
)

const sessionCookieName = "session"

// AuthHandler handles registration, verification and session endpoints.
type AuthHandler struct {
	Service    *auth.Service
	Secret     string
	Production bool
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type registerResponse struct {
	UserID  int64  `json:"userId"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

type verifyEmailRequest struct {
	UserID int64  `json:"userId"`
	Code   string `json:"code"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" || req.Email == "" {
		jsonError(w, http.StatusBadRequest, "username, password and email required")
		return
	}

	user, err := h.Service.Register(r.Context(), req.Username, req.Password, req.FullName, req.Email, req.Phone)
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		jsonError(w, http.StatusConflict, "username already taken")
		return
	case errors.Is(err, auth.ErrEmailTaken):
		jsonError(w, http.StatusConflict, "email already registered")
		return
	case err != nil:
		slog.Error("registration failed", "username", req.Username, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("user registered", "user", user.Username)
	jsonResponse(w, http.StatusCreated, registerResponse{
		UserID:  user.ID,
		Email:   user.Email,
		Message: "verification code sent",
	})
}

// SendOTP handles POST /api/send-otp.
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		jsonError(w, http.StatusBadRequest, "email required")
		return
	}

	err := h.Service.ResendOTP(r.Context(), req.Email)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		jsonError(w, http.StatusNotFound, "no account with that email")
		return
	case errors.Is(err, auth.ErrAlreadyVerified):
		jsonError(w, http.StatusBadRequest, "email already verified")
		return
	case err != nil:
		slog.Error("sending verification code", "email", req.Email, "error", err)
		jsonError(w, http.StatusInternalServerError, "could not send verification code")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "verification code sent"})
}

// VerifyEmail handles POST /api/verify-email.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == 0 || req.Code == "" {
		jsonError(w, http.StatusBadRequest, "userId and code required")
		return
	}

	user, session, err := h.Service.ConfirmOTP(r.Context(), req.UserID, req.Code)
	switch {
	case errors.Is(err, otp.ErrInvalidOrExpired):
		jsonError(w, http.StatusBadRequest, "invalid or expired code")
		return
	case err != nil:
		slog.Error("email verification failed", "user_id", req.UserID, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.setSessionCookie(w, session); err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("email verified", "user", user.Username)
	jsonResponse(w, http.StatusOK, user)
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, session, err := h.Service.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	case errors.Is(err, auth.ErrEmailNotVerified):
		jsonError(w, http.StatusForbidden, "email not verified")
		return
	case err != nil:
		slog.Error("login error", "username", req.Username, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.setSessionCookie(w, session); err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("user logged in", "user", user.Username)
	jsonResponse(w, http.StatusOK, user)
}

// Logout handles POST /api/logout. It succeeds even without a valid
// session so stale clients can always clear their cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if claims, err := auth.ParseSession(h.Secret, cookie.Value); err == nil {
			if err := h.Service.Logout(r.Context(), claims.ID); err != nil {
				slog.Error("logout", "error", err)
			}
		}
	}

	h.clearSessionCookie(w)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, GetUser(r.Context()))
}

// UpdateProfile handles PUT /api/user.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := GetUser(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FullName == "" || req.Email == "" {
		jsonError(w, http.StatusBadRequest, "fullName and email required")
		return
	}

	updated, err := h.Service.UpdateProfile(r.Context(), user.ID, req.FullName, req.Email, req.Phone)
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		jsonError(w, http.StatusConflict, "email already registered")
		return
	case err != nil:
		slog.Error("profile update failed", "user", user.Username, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonResponse(w, http.StatusOK, updated)
}

// ChangePassword handles PUT /api/user/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := GetUser(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}

	err := h.Service.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, auth.ErrWrongPassword):
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	case err != nil:
		slog.Error("password change failed", "user", user.Username, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("user changed password", "user", user.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *model.Session) error {
	value, err := auth.SignSession(h.Secret, session)
	if err != nil {
		slog.Error("signing session", "error", err)
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(auth.SessionLifetime.Seconds()),
		HttpOnly: true,
		Secure:   h.Production,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Production,
		SameSite: http.SameSiteLaxMode,
	})
}
