package handlers

import (
	"net/http"
	"strings"

	"github.com/vibehub/backend/internal/apperrors"
	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/services"
)

// maxUploadSize caps a multipart upload body
const maxUploadSize = 50 << 20

// MediaHandler accepts file uploads for messages and stories.
type MediaHandler struct {
	media *services.MediaService
}

// NewMediaHandler creates a new MediaHandler instance.
func NewMediaHandler(media *services.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// Upload handles POST /api/media
// Expects a multipart form with a "file" field.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	up, err := uploadFormFile(w, r, h.media, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, up)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// uploadFormFile stores the "file" part of a multipart request.
func uploadFormFile(w http.ResponseWriter, r *http.Request, media *services.MediaService, owner string) (*models.MediaUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, apperrors.InvalidArg("invalid multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, apperrors.InvalidArg("file is required")
	}
	defer file.Close()

	return media.Upload(r.Context(), owner, header.Filename, header.Header.Get("Content-Type"), file)
}
