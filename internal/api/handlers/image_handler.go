package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxImageBytes = 5 << 20 // 5 MiB

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageHandler stores uploaded images under the media root that the backup
// engine archives alongside the database.
type ImageHandler struct {
	mediaRoot string
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(mediaRoot string) *ImageHandler {
	return &ImageHandler{mediaRoot: mediaRoot}
}

// Upload stores an image and returns the URL it will be served from.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		http.Error(w, "Image too large or malformed", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Missing image file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Sniff the actual content type instead of trusting the filename.
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		http.Error(w, "Failed to read image", http.StatusBadRequest)
		return
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := imageExtensions[contentType]
	if !ok {
		http.Error(w, "Unsupported image type", http.StatusBadRequest)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		http.Error(w, "Failed to read image", http.StatusInternalServerError)
		return
	}

	if err := os.MkdirAll(h.mediaRoot, 0755); err != nil {
		log.Error().Err(err).Msg("Failed to create media directory")
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(h.mediaRoot, name))
	if err != nil {
		log.Error().Err(err).Msg("Failed to create image file")
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		log.Error().Err(err).Msg("Failed to write image file")
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"url": "/uploads/" + name})
}
