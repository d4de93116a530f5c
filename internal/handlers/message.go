package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/services"
)

// MessageHandler contains HTTP handlers for message operations.
// Messages sent here are fanned out to sockets like socket sends.
type MessageHandler struct {
	messages *services.MessageService
}

// NewMessageHandler creates a new MessageHandler instance.
func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// SharePost handles POST /api/messages/share-post
// Shares a post with another user, opening the conversation if needed.
func (h *MessageHandler) SharePost(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.SharePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ev, err := h.messages.SharePost(r.Context(), userID, req.ReceiverID, req.PostID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.SendMessageResponse{ConversationID: ev.ConversationID, Message: ev.Message})
}

// Send handles POST /api/conversations/{id}/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ev, err := h.messages.Append(r.Context(), services.AppendInput{
		ConversationID: chi.URLParam(r, "id"),
		SenderID:       userID,
		Request:        req,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.SendMessageResponse{ConversationID: ev.ConversationID, Message: ev.Message})
}
