package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/BhanuRekulampati/item-tracker/internal/item"
	"github.com/BhanuRekulampati/item-tracker/internal/store"
)

// DiscloseHandler serves the public finder endpoint behind a QR scan.
// It requires no authentication and must never leak more than the
// projection below.
type DiscloseHandler struct {
	Service *item.Service
	Store   store.Store
}

// disclosedItem and ownerInfoResponse together define the complete set
// of fields a finder may see. New fields are added here deliberately,
// never by serializing internal models.
type disclosedItem struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type ownerInfoResponse struct {
	FullName string        `json:"fullName"`
	Email    string        `json:"email"`
	Phone    string        `json:"phone"`
	Item     disclosedItem `json:"item"`
}

// Disclose handles GET /api/qr/{token}.
func (h *DiscloseHandler) Disclose(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	it, err := h.Service.Disclose(r.Context(), token)
	switch {
	case errors.Is(err, item.ErrNotFound):
		jsonError(w, http.StatusNotFound, "item not found")
		return
	case err != nil:
		slog.Error("resolving token", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	owner, err := h.Store.GetUser(r.Context(), it.UserID)
	if err != nil {
		slog.Error("loading item owner", "item_id", it.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if owner == nil {
		jsonError(w, http.StatusNotFound, "owner information not available")
		return
	}

	resp := ownerInfoResponse{
		FullName: owner.FullName,
		Email:    owner.Email,
		Phone:    owner.Phone,
		Item: disclosedItem{
			Name: it.Name,
		},
	}
	if it.Description != "" {
		resp.Item.Description = &it.Description
	}

	slog.Info("item scanned", "item_id", it.ID, "scan_count", it.ScanCount)
	jsonResponse(w, http.StatusOK, resp)
}
