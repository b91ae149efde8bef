package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/humidor-app/humidor-be/internal/models"
	"github.com/humidor-app/humidor-be/internal/services"
)

// OrganizerHandler handles requests for the organizer reference tables.
type OrganizerHandler struct {
	service services.OrganizerServiceProvider
}

// NewOrganizerHandler creates a new OrganizerHandler.
func NewOrganizerHandler(service services.OrganizerServiceProvider) *OrganizerHandler {
	return &OrganizerHandler{service: service}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func organizerError(w http.ResponseWriter, entity string, err error) {
	log.Error().Err(err).Str("entity", entity).Msg("Organizer operation failed")
	http.Error(w, "Failed to process "+entity, http.StatusInternalServerError)
}

// Brands

func (h *OrganizerHandler) GetBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.service.GetAllBrands()
	if err != nil {
		organizerError(w, "brands", err)
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

func (h *OrganizerHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var payload models.Brand
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		http.Error(w, "Brand name is required", http.StatusBadRequest)
		return
	}
	brand, err := h.service.CreateBrand(payload)
	if err != nil {
		organizerError(w, "brand", err)
		return
	}
	writeJSON(w, http.StatusCreated, brand)
}

func (h *OrganizerHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	var payload models.Brand
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	brand, err := h.service.UpdateBrand(chi.URLParam(r, "id"), payload)
	if err != nil {
		organizerError(w, "brand", err)
		return
	}
	writeJSON(w, http.StatusOK, brand)
}

func (h *OrganizerHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBrand(chi.URLParam(r, "id")); err != nil {
		organizerError(w, "brand", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sizes

func (h *OrganizerHandler) GetSizes(w http.ResponseWriter, r *http.Request) {
	sizes, err := h.service.GetAllSizes()
	if err != nil {
		organizerError(w, "sizes", err)
		return
	}
	writeJSON(w, http.StatusOK, sizes)
}

func (h *OrganizerHandler) CreateSize(w http.ResponseWriter, r *http.Request) {
	var payload models.Size
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		http.Error(w, "Size name is required", http.StatusBadRequest)
		return
	}
	size, err := h.service.CreateSize(payload)
	if err != nil {
		organizerError(w, "size", err)
		return
	}
	writeJSON(w, http.StatusCreated, size)
}

func (h *OrganizerHandler) UpdateSize(w http.ResponseWriter, r *http.Request) {
	var payload models.Size
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	size, err := h.service.UpdateSize(chi.URLParam(r, "id"), payload)
	if err != nil {
		organizerError(w, "size", err)
		return
	}
	writeJSON(w, http.StatusOK, size)
}

func (h *OrganizerHandler) DeleteSize(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSize(chi.URLParam(r, "id")); err != nil {
		organizerError(w, "size", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Ring gauges

func (h *OrganizerHandler) GetRingGauges(w http.ResponseWriter, r *http.Request) {
	gauges, err := h.service.GetAllRingGauges()
	if err != nil {
		organizerError(w, "ring gauges", err)
		return
	}
	writeJSON(w, http.StatusOK, gauges)
}

func (h *OrganizerHandler) CreateRingGauge(w http.ResponseWriter, r *http.Request) {
	var payload models.RingGauge
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Gauge <= 0 {
		http.Error(w, "A positive gauge is required", http.StatusBadRequest)
		return
	}
	gauge, err := h.service.CreateRingGauge(payload)
	if err != nil {
		organizerError(w, "ring gauge", err)
		return
	}
	writeJSON(w, http.StatusCreated, gauge)
}

func (h *OrganizerHandler) UpdateRingGauge(w http.ResponseWriter, r *http.Request) {
	var payload models.RingGauge
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	gauge, err := h.service.UpdateRingGauge(chi.URLParam(r, "id"), payload)
	if err != nil {
		organizerError(w, "ring gauge", err)
		return
	}
	writeJSON(w, http.StatusOK, gauge)
}

func (h *OrganizerHandler) DeleteRingGauge(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRingGauge(chi.URLParam(r, "id")); err != nil {
		organizerError(w, "ring gauge", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Strengths

func (h *OrganizerHandler) GetStrengths(w http.ResponseWriter, r *http.Request) {
	strengths, err := h.service.GetAllStrengths()
	if err != nil {
		organizerError(w, "strengths", err)
		return
	}
	writeJSON(w, http.StatusOK, strengths)
}

func (h *OrganizerHandler) CreateStrength(w http.ResponseWriter, r *http.Request) {
	var payload models.Strength
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		http.Error(w, "Strength name is required", http.StatusBadRequest)
		return
	}
	strength, err := h.service.CreateStrength(payload)
	if err != nil {
		organizerError(w, "strength", err)
		return
	}
	writeJSON(w, http.StatusCreated, strength)
}

func (h *OrganizerHandler) UpdateStrength(w http.ResponseWriter, r *http.Request) {
	var payload models.Strength
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	strength, err := h.service.UpdateStrength(chi.URLParam(r, "id"), payload)
	if err != nil {
		organizerError(w, "strength", err)
		return
	}
	writeJSON(w, http.StatusOK, strength)
}

func (h *OrganizerHandler) DeleteStrength(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteStrength(chi.URLParam(r, "id")); err != nil {
		organizerError(w, "strength", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Origins

func (h *OrganizerHandler) GetOrigins(w http.ResponseWriter, r *http.Request) {
	origins, err := h.service.GetAllOrigins()
	if err != nil {
		organizerError(w, "origins", err)
		return
	}
	writeJSON(w, http.StatusOK, origins)
}

func (h *OrganizerHandler) CreateOrigin(w http.ResponseWriter, r *http.Request) {
	var payload models.Origin
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		http.Error(w, "Origin name is required", http.StatusBadRequest)
		return
	}
	origin, err := h.service.CreateOrigin(payload)
	if err != nil {
		organizerError(w, "origin", err)
		return
	}
	writeJSON(w, http.StatusCreated, origin)
}

func (h *OrganizerHandler) UpdateOrigin(w http.ResponseWriter, r *http.Request) {
	var payload models.Origin
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	origin, err := h.service.UpdateOrigin(chi.URLParam(r, "id"), payload)
	if err != nil {
		organizerError(w, "origin", err)
		return
	}
	writeJSON(w, http.StatusOK, origin)
}

func (h *OrganizerHandler) DeleteOrigin(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteOrigin(chi.URLParam(r, "id")); err != nil {
		organizerError(w, "origin", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
