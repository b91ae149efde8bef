package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/humidor-app/humidor-be/internal/backup"
	"github.com/humidor-app/humidor-be/internal/models"
)

// BackupCatalog is the part of the backup catalog the HTTP layer needs.
type BackupCatalog interface {
	Create(ctx context.Context) (string, error)
	List() ([]models.BackupInfo, error)
	Delete(name string) error
	Open(name string) (*os.File, os.FileInfo, error)
	Upload(filename string, r io.Reader) (string, error)
	Restore(ctx context.Context, name string) error
}

// BackupHandler handles HTTP requests related to backups.
type BackupHandler struct {
	catalog        BackupCatalog
	maxUploadBytes int64
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(catalog BackupCatalog, maxUploadBytes int64) *BackupHandler {
	return &BackupHandler{catalog: catalog, maxUploadBytes: maxUploadBytes}
}

// List handles the request to list all backups in the catalog.
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.catalog.List()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list backups")
		http.Error(w, "Failed to list backups", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(backups)
}

// Create handles the request to create a new backup. The backup is written
// before the response so the client can download it immediately.
func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	name, err := h.catalog.Create(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to create backup")
		http.Error(w, "Failed to create backup", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"message":  "Backup created successfully",
		"filename": name,
	})
}

// Delete handles the request to delete a backup by filename.
func (h *BackupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if err := h.catalog.Delete(name); err != nil {
		writeCatalogError(w, name, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Download streams a backup archive to the client.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	f, info, err := h.catalog.Open(name)
	if err != nil {
		writeCatalogError(w, name, "download", err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.Name()))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	io.Copy(w, f)
}

// Upload accepts a backup archive produced by a previous export and adds it
// to the catalog.
func (h *BackupHandler) Upload(w http.ResponseWriter, r *http.Request) {
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
		writeCatalogError(w, header.Filename, "upload", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"message":  "Backup uploaded successfully",
		"filename": name,
	})
}

// Restore replaces the database and media files with the contents of the
// named backup. The operation is synchronous: the client learns whether the
// restore succeeded from the status code.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if err := h.catalog.Restore(r.Context(), name); err != nil {
		writeCatalogError(w, name, "restore", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Backup restored successfully"})
}

func writeCatalogError(w http.ResponseWriter, name, op string, err error) {
	switch {
	case errors.Is(err, backup.ErrNotFound):
		http.Error(w, "Backup not found", http.StatusNotFound)
	case errors.Is(err, backup.ErrUnsafePath):
		http.Error(w, "Invalid backup filename", http.StatusBadRequest)
	case errors.Is(err, backup.ErrBadArchive):
		http.Error(w, "Invalid backup archive", http.StatusBadRequest)
	default:
		log.Error().Err(err).Str("backup", name).Str("op", op).Msg("Backup operation failed")
		http.Error(w, "Backup operation failed", http.StatusInternalServerError)
	}
}
