package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BhanuRekulampati/item-tracker/internal/item"
)

// ItemsHandler handles the owner-facing item registry endpoints.
type ItemsHandler struct {
	Service *item.Service
}

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type updateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	IsActive    *bool   `json:"isActive"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUser(r.Context())

	items, err := h.Service.ListByOwner(r.Context(), user.ID)
	if err != nil {
		slog.Error("listing items", "user", user.Username, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUser(r.Context())

	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	it, err := h.Service.Create(r.Context(), user.ID, req.Name, req.Description, req.Icon)
	if err != nil {
		slog.Error("creating item", "user", user.Username, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("item created", "user", user.Username, "item", it.Name)
	jsonResponse(w, http.StatusCreated, it)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUser(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	it, err := h.Service.Get(r.Context(), user.ID, id)
	if err != nil {
		h.writeItemError(w, user.Username, err)
		return
	}

	jsonResponse(w, http.StatusOK, it)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUser(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil && *req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name cannot be empty")
		return
	}

	it, err := h.Service.Update(r.Context(), user.ID, id, item.Update{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.writeItemError(w, user.Username, err)
		return
	}

	jsonResponse(w, http.StatusOK, it)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUser(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.Service.Delete(r.Context(), user.ID, id); err != nil {
		h.writeItemError(w, user.Username, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemsHandler) writeItemError(w http.ResponseWriter, username string, err error) {
	switch {
	case errors.Is(err, item.ErrNotFound):
		jsonError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, item.ErrForbidden):
		jsonError(w, http.StatusForbidden, "not your item")
	default:
		slog.Error("item operation failed", "user", username, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
