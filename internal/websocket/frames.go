package websocket

import (
	"encoding/json"

	"github.com/vibehub/backend/internal/apperrors"
	"github.com/vibehub/backend/internal/models"
)

// Frame types exchanged over the socket.
const (
	FrameJoinUser          = "join_user"
	FrameJoinConversation  = "join_conversation"
	FrameLeaveConversation = "leave_conversation"
	FrameSendMessage       = "send_message"
	FrameReceiveMessage    = "receive_message"
	FrameError             = "error"
)

// Frame is the envelope of every socket message
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type JoinUserPayload struct {
	UserID string `json:"userId"`
}

type ConversationPayload struct {
	ConversationID string `json:"conversationId"`
}

// SendMessagePayload is a send_message request. TempID correlates the echo
// and any error with the client's optimistic entry.
type SendMessagePayload struct {
	ConversationID string `json:"conversationId"`
	Sender         string `json:"sender"`
	TempID         string `json:"tempId,omitempty"`
	models.SendMessageRequest
}

// ErrorPayload is sent only to the connection whose frame failed
type ErrorPayload struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
	TempID  string         `json:"tempId,omitempty"`
}

func encodeFrame(frameType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Type: frameType, Payload: raw})
}

func conversationChannel(id string) string { return "conversation:" + id }
func userChannel(id string) string         { return "user:" + id }
