package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vibehub/backend/internal/apperrors"
	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/services"
)

// ConversationHandler contains HTTP handlers for direct conversations.
type ConversationHandler struct {
	conversations *services.ConversationService
}

// NewConversationHandler creates a new ConversationHandler instance.
func NewConversationHandler(conversations *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// Create handles POST /api/conversations
// Returns the conversation between the two participants, creating it on
// first contact. 201 when created, 200 when it already existed.
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.CreateConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ParticipantA == "" || req.ParticipantB == "" {
		writeError(w, r, apperrors.InvalidArg("participantA and participantB are required"))
		return
	}
	if userID != req.ParticipantA && userID != req.ParticipantB {
		writeError(w, r, apperrors.Forbidden("caller must be one of the participants"))
		return
	}

	view, created, err := h.conversations.Open(r.Context(), req.ParticipantA, req.ParticipantB)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, view)
}

// Get handles GET /api/conversations/{id}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.conversations.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListForUser handles GET /api/users/{userId}/conversations
// Users may only list their own conversations.
func (h *ConversationHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if target := chi.URLParam(r, "userId"); target != userID {
		writeError(w, r, apperrors.Forbidden("cannot list another user's conversations"))
		return
	}

	items, err := h.conversations.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
