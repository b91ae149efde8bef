package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/humidor-app/humidor-be/internal/models"
	"github.com/humidor-app/humidor-be/internal/services"
)

// SetupHandler handles first-run initialization. Its endpoints are open until
// an admin account exists, after which they refuse to run.
type SetupHandler struct {
	users          services.UserServiceProvider
	humidors       services.HumidorServiceProvider
	catalog        BackupCatalog
	maxUploadBytes int64
}

// NewSetupHandler creates a new SetupHandler.
func NewSetupHandler(users services.UserServiceProvider, humidors services.HumidorServiceProvider, catalog BackupCatalog, maxUploadBytes int64) *SetupHandler {
	return &SetupHandler{users: users, humidors: humidors, catalog: catalog, maxUploadBytes: maxUploadBytes}
}

// Status reports whether initial setup is still required.
func (h *SetupHandler) Status(w http.ResponseWriter, r *http.Request) {
	hasAdmin, err := h.users.HasAdmin()
	if err != nil {
		log.Error().Err(err).Msg("Failed to check for admin account")
		http.Error(w, "Failed to check setup status", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"needsSetup": !hasAdmin})
}

// SetupPayload is the body for the initial setup request.
type SetupPayload struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	Password    string `json:"password"`
	HumidorName string `json:"humidorName"`
}

// Run creates the initial admin account and, optionally, a first humidor.
func (h *SetupHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.requireFreshInstall(w) {
		return
	}

	var payload SetupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		http.Error(w, "Username, email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.users.CreateUser(payload.Username, payload.Email, payload.FullName, payload.Password, true)
	if err != nil {
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to create initial admin")
		http.Error(w, "Failed to create admin account", http.StatusInternalServerError)
		return
	}

	if payload.HumidorName != "" {
		if _, err := h.humidors.CreateHumidor(user.ID, models.Humidor{Name: payload.HumidorName}); err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create initial humidor")
			http.Error(w, "Admin created but initial humidor failed", http.StatusInternalServerError)
			return
		}
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("Initial setup completed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// RestoreBackup restores an uploaded backup archive on a fresh install,
// recovering a previous deployment before any account exists.
func (h *SetupHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	if !h.requireFreshInstall(w) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		http.Error(w, "Upload too large or malformed", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("backup")
	if err != nil {
		http.Error(w, "Missing backup file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name, err := h.catalog.Upload(header.Filename, file)
	if err != nil {
		writeCatalogError(w, header.Filename, "setup upload", err)
		return
	}

	if err := h.catalog.Restore(r.Context(), name); err != nil {
		writeCatalogError(w, name, "setup restore", err)
		return
	}

	log.Info().Str("backup", name).Msg("Restored backup during setup")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Backup restored successfully", "filename": name})
}

func (h *SetupHandler) requireFreshInstall(w http.ResponseWriter) bool {
	hasAdmin, err := h.users.HasAdmin()
	if err != nil {
		log.Error().Err(err).Msg("Failed to check for admin account")
		http.Error(w, "Failed to check setup status", http.StatusInternalServerError)
		return false
	}
	if hasAdmin {
		http.Error(w, "Setup has already been completed", http.StatusConflict)
		return false
	}
	return true
}
