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

// CigarHandler handles cigar, favorite and wish list requests.
type CigarHandler struct {
	cigars   services.CigarServiceProvider
	humidors services.HumidorServiceProvider
}

// NewCigarHandler creates a new CigarHandler.
func NewCigarHandler(cigars services.CigarServiceProvider, humidors services.HumidorServiceProvider) *CigarHandler {
	return &CigarHandler{cigars: cigars, humidors: humidors}
}

func (h *CigarHandler) checkHumidorAccess(w http.ResponseWriter, r *http.Request, humidorID string, needEdit bool) bool {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return false
	}

	level, err := h.humidors.PermissionFor(humidorID, claims.UserID)
	if err != nil {
		http.Error(w, "Humidor not found", http.StatusNotFound)
		return false
	}
	if needEdit && !level.CanEdit() {
		http.Error(w, "Insufficient permissions for this humidor", http.StatusForbidden)
		return false
	}
	return true
}

// GetAllForHumidor lists the cigars in a humidor.
func (h *CigarHandler) GetAllForHumidor(w http.ResponseWriter, r *http.Request) {
	humidorID := chi.URLParam(r, "id")
	if !h.checkHumidorAccess(w, r, humidorID, false) {
		return
	}

	cigars, err := h.cigars.GetCigarsForHumidor(humidorID)
	if err != nil {
		log.Error().Err(err).Str("humidor_id", humidorID).Msg("Failed to list cigars")
		http.Error(w, "Failed to list cigars", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cigars)
}

// Get returns a single cigar.
func (h *CigarHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cigar, err := h.cigars.GetCigarByID(id)
	if err != nil {
		http.Error(w, "Cigar not found", http.StatusNotFound)
		return
	}
	if !h.checkHumidorAccess(w, r, cigar.HumidorID, false) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cigar)
}

// Create adds a cigar to a humidor.
func (h *CigarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload models.Cigar
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Name == "" || payload.HumidorID == "" {
		http.Error(w, "Cigar name and humidor are required", http.StatusBadRequest)
		return
	}
	if !h.checkHumidorAccess(w, r, payload.HumidorID, true) {
		return
	}

	cigar, err := h.cigars.CreateCigar(payload)
	if err != nil {
		log.Error().Err(err).Str("humidor_id", payload.HumidorID).Msg("Failed to create cigar")
		http.Error(w, "Failed to create cigar", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(cigar)
}

// Update modifies a cigar.
func (h *CigarHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.cigars.GetCigarByID(id)
	if err != nil {
		http.Error(w, "Cigar not found", http.StatusNotFound)
		return
	}
	if !h.checkHumidorAccess(w, r, existing.HumidorID, true) {
		return
	}

	var payload models.Cigar
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cigar, err := h.cigars.UpdateCigar(id, payload)
	if err != nil {
		log.Error().Err(err).Str("cigar_id", id).Msg("Failed to update cigar")
		http.Error(w, "Failed to update cigar", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cigar)
}

// AdjustQuantity adds a signed delta to a cigar's quantity, e.g. when a
// cigar is smoked or a box arrives.
func (h *CigarHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.cigars.GetCigarByID(id)
	if err != nil {
		http.Error(w, "Cigar not found", http.StatusNotFound)
		return
	}
	if !h.checkHumidorAccess(w, r, existing.HumidorID, true) {
		return
	}

	var payload struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cigar, err := h.cigars.AdjustQuantity(id, payload.Delta)
	if err != nil {
		log.Error().Err(err).Str("cigar_id", id).Msg("Failed to adjust cigar quantity")
		http.Error(w, "Failed to adjust quantity", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cigar)
}

// Delete removes a cigar from its humidor.
func (h *CigarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.cigars.GetCigarByID(id)
	if err != nil {
		http.Error(w, "Cigar not found", http.StatusNotFound)
		return
	}
	if !h.checkHumidorAccess(w, r, existing.HumidorID, true) {
		return
	}

	if err := h.cigars.DeleteCigar(id); err != nil {
		log.Error().Err(err).Str("cigar_id", id).Msg("Failed to delete cigar")
		http.Error(w, "Failed to delete cigar", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFavorites lists the caller's favorite cigars.
func (h *CigarHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	cigars, err := h.cigars.GetFavorites(claims.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to list favorites")
		http.Error(w, "Failed to list favorites", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cigars)
}

// AddFavorite marks a cigar as one of the caller's favorites.
func (h *CigarHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	cigarID := chi.URLParam(r, "id")
	if err := h.cigars.AddFavorite(claims.UserID, cigarID); err != nil {
		log.Error().Err(err).Str("cigar_id", cigarID).Msg("Failed to add favorite")
		http.Error(w, "Failed to add favorite", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveFavorite removes a cigar from the caller's favorites.
func (h *CigarHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	cigarID := chi.URLParam(r, "id")
	if err := h.cigars.RemoveFavorite(claims.UserID, cigarID); err != nil {
		log.Error().Err(err).Str("cigar_id", cigarID).Msg("Failed to remove favorite")
		http.Error(w, "Failed to remove favorite", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetWishList lists the caller's wish list.
func (h *CigarHandler) GetWishList(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	items, err := h.cigars.GetWishList(claims.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to list wish list")
		http.Error(w, "Failed to list wish list", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// AddWishListItem adds a cigar to the caller's wish list.
func (h *CigarHandler) AddWishListItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	cigarID := chi.URLParam(r, "id")
	var payload struct {
		Notes *string `json:"notes"`
	}
	// The body is optional.
	json.NewDecoder(r.Body).Decode(&payload)

	item, err := h.cigars.AddWishListItem(claims.UserID, cigarID, payload.Notes)
	if err != nil {
		log.Error().Err(err).Str("cigar_id", cigarID).Msg("Failed to add wish list item")
		http.Error(w, "Failed to add wish list item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

// RemoveWishListItem removes a cigar from the caller's wish list.
func (h *CigarHandler) RemoveWishListItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	cigarID := chi.URLParam(r, "id")
	if err := h.cigars.RemoveWishListItem(claims.UserID, cigarID); err != nil {
		log.Error().Err(err).Str("cigar_id", cigarID).Msg("Failed to remove wish list item")
		http.Error(w, "Failed to remove wish list item", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
