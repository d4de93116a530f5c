package handlers

import (
	"net/http"
	"strings"

	"github.com/vibehub/backend/internal/apperrors"
	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/services"
)

// StoryHandler contains HTTP handlers for stories.
type StoryHandler struct {
	stories *services.StoryService
	media   *services.MediaService
}

// NewStoryHandler creates a new StoryHandler instance.
func NewStoryHandler(stories *services.StoryService, media *services.MediaService) *StoryHandler {
	return &StoryHandler{stories: stories, media: media}
}

// Create handles POST /api/stories
// Accepts either JSON with an uploaded mediaUrl, or a multipart form with a
// "file" field and optional songTitle, songArtist and songPreviewUrl fields.
func (h *StoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var (
		req models.CreateStoryRequest
		up  *models.MediaUpload
	)
	if isMultipart(r) {
		up, err = uploadFormFile(w, r, h.media, userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if up.Kind != models.MessageImage && up.Kind != models.MessageVideo {
			h.media.Discard(r.Context(), up)
			writeError(w, r, apperrors.InvalidArg("stories must be an image or a video"))
			return
		}
		req.MediaURL = up.URL
		req.MediaType = up.Kind
		if title := r.FormValue("songTitle"); title != "" {
			req.Song = &models.Song{
				Title:      title,
				Artist:     r.FormValue("songArtist"),
				PreviewURL: r.FormValue("songPreviewUrl"),
			}
		}
	} else if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	story, err := h.stories.Create(r.Context(), userID, req)
	if err != nil {
		// nothing references the object once the story is rejected
		h.media.Discard(r.Context(), up)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, story)
}

// List handles GET /api/stories
// Query params:
//   - users: comma-separated owner ids; defaults to the caller and everyone
//     they follow
func (h *StoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var owners []string
	for _, u := range strings.Split(r.URL.Query().Get("users"), ",") {
		if u = strings.TrimSpace(u); u != "" {
			owners = append(owners, u)
		}
	}

	stories, err := h.stories.ListActive(r.Context(), userID, owners)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if stories == nil {
		stories = []models.Story{}
	}
	writeJSON(w, http.StatusOK, stories)
}
