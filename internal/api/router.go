package api

import (
	"net/http"

	"github.com/BhanuRekulampati/item-tracker/internal/auth"
	"github.com/BhanuRekulampati/item-tracker/internal/item"
	"github.com/BhanuRekulampati/item-tracker/internal/store"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(authSvc *auth.Service, itemSvc *item.Service, st store.Store, secret string, production bool) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Service: authSvc, Secret: secret, Production: production}
	itemsHandler := &ItemsHandler{Service: itemSvc}
	discloseHandler := &DiscloseHandler{Service: itemSvc, Store: st}

	sessionMW := SessionMiddleware(secret, authSvc)

	// Public: registration, verification and the finder endpoint.
	mux.HandleFunc("POST /api/register", authHandler.Register)
	mux.HandleFunc("POST /api/send-otp", authHandler.SendOTP)
	mux.HandleFunc("POST /api/verify-email", authHandler.VerifyEmail)
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("POST /api/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/qr/{token}", discloseHandler.Disclose)

	// Authenticated: profile.
	mux.Handle("GET /api/user", sessionMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/user", sessionMW(http.HandlerFunc(authHandler.UpdateProfile)))
	mux.Handle("PUT /api/user/password", sessionMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Authenticated: item registry.
	mux.Handle("GET /api/items", sessionMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", sessionMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", sessionMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", sessionMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", sessionMW(http.HandlerFunc(itemsHandler.Delete)))

	return mux
}
