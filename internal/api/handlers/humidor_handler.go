package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/humidor-app/humidor-be/internal/auth"
	"github.com/humidor-app/humidor-be/internal/models"
	"github.com/humidor-app/humidor-be/internal/services"
)

// HumidorHandler handles humidor and humidor-share requests.
type HumidorHandler struct {
	humidors services.HumidorServiceProvider
	shares   services.ShareServiceProvider
	users    services.UserServiceProvider
}

// NewHumidorHandler creates a new HumidorHandler.
func NewHumidorHandler(humidors services.HumidorServiceProvider, shares services.ShareServiceProvider, users services.UserServiceProvider) *HumidorHandler {
	return &HumidorHandler{humidors: humidors, shares: shares, users: users}
}

// requirePermission checks the caller's access to a humidor and writes the
// HTTP error itself when access is denied.
func (h *HumidorHandler) requirePermission(w http.ResponseWriter, r *http.Request, humidorID string, needed models.PermissionLevel) (*auth.Claims, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return nil, false
	}

	level, err := h.humidors.PermissionFor(humidorID, claims.UserID)
	if err != nil {
		http.Error(w, "Humidor not found", http.StatusNotFound)
		return nil, false
	}

	allowed := false
	switch needed {
	case models.PermissionView:
		allowed = true
	case models.PermissionEdit:
		allowed = level.CanEdit()
	case models.PermissionFull:
		allowed = level.CanManage()
	}
	if !allowed {
		http.Error(w, "Insufficient permissions for this humidor", http.StatusForbidden)
		return nil, false
	}
	return claims, true
}

// GetAll returns the humidors the caller owns or has been granted access to.
func (h *HumidorHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	humidors, err := h.humidors.GetHumidorsForUser(claims.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to list humidors")
		http.Error(w, "Failed to list humidors", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(humidors)
}

// Get returns a single humidor.
func (h *HumidorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.requirePermission(w, r, id, models.PermissionView); !ok {
		return
	}

	humidor, err := h.humidors.GetHumidorByID(id)
	if err != nil {
		http.Error(w, "Humidor not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(humidor)
}

// Create adds a new humidor owned by the caller.
func (h *HumidorHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var payload models.Humidor
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Name == "" {
		http.Error(w, "Humidor name is required", http.StatusBadRequest)
		return
	}

	humidor, err := h.humidors.CreateHumidor(claims.UserID, payload)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to create humidor")
		http.Error(w, "Failed to create humidor", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(humidor)
}

// Update modifies a humidor's details.
func (h *HumidorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.requirePermission(w, r, id, models.PermissionEdit); !ok {
		return
	}

	var payload models.Humidor
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	humidor, err := h.humidors.UpdateHumidor(id, payload)
	if err != nil {
		log.Error().Err(err).Str("humidor_id", id).Msg("Failed to update humidor")
		http.Error(w, "Failed to update humidor", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(humidor)
}

// Delete removes a humidor and its cigars.
func (h *HumidorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.requirePermission(w, r, id, models.PermissionFull); !ok {
		return
	}

	if err := h.humidors.DeleteHumidor(id); err != nil {
		log.Error().Err(err).Str("humidor_id", id).Msg("Failed to delete humidor")
		http.Error(w, "Failed to delete humidor", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetShares lists the shares of a humidor.
func (h *HumidorHandler) GetShares(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.requirePermission(w, r, id, models.PermissionFull); !ok {
		return
	}

	shares, err := h.shares.GetSharesForHumidor(id)
	if err != nil {
		log.Error().Err(err).Str("humidor_id", id).Msg("Failed to list shares")
		http.Error(w, "Failed to list shares", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shares)
}

// SharePayload is the body for granting or updating humidor access.
type SharePayload struct {
	Username        string `json:"username"`
	PermissionLevel string `json:"permissionLevel"`
}

// Share grants another user access to a humidor.
func (h *HumidorHandler) Share(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims, ok := h.requirePermission(w, r, id, models.PermissionFull)
	if !ok {
		return
	}

	var payload SharePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	level, err := models.ParsePermissionLevel(payload.PermissionLevel)
	if err != nil {
		http.Error(w, "Invalid permission level", http.StatusBadRequest)
		return
	}

	target, err := h.users.GetUserByUsername(payload.Username)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	share, err := h.shares.ShareHumidor(id, target.ID, claims.UserID, level)
	if err != nil {
		log.Error().Err(err).Str("humidor_id", id).Str("with_user", target.ID).Msg("Failed to share humidor")
		http.Error(w, "Failed to share humidor: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(share)
}

// UpdateShare changes the permission level of an existing share.
func (h *HumidorHandler) UpdateShare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	shareID := chi.URLParam(r, "shareId")
	if _, ok := h.requirePermission(w, r, id, models.PermissionFull); !ok {
		return
	}

	var payload SharePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	level, err := models.ParsePermissionLevel(payload.PermissionLevel)
	if err != nil {
		http.Error(w, "Invalid permission level", http.StatusBadRequest)
		return
	}

	share, err := h.shares.UpdateSharePermission(shareID, level)
	if err != nil {
		log.Error().Err(err).Str("share_id", shareID).Msg("Failed to update share")
		http.Error(w, "Failed to update share", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(share)
}

// RevokeShare removes a share.
func (h *HumidorHandler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	shareID := chi.URLParam(r, "shareId")
	if _, ok := h.requirePermission(w, r, id, models.PermissionFull); !ok {
		return
	}

	if err := h.shares.RevokeShare(shareID); err != nil {
		log.Error().Err(err).Str("share_id", shareID).Msg("Failed to revoke share")
		http.Error(w, "Failed to revoke share", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
