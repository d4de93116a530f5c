package models

// MessageEvent is the payload of a receive_message frame. TempID echoes the
// sender's correlation id so the sending client can confirm its optimistic
// entry; it is never stored.
type MessageEvent struct {
	ConversationID string      `json:"conversationId"`
	Message        MessageView `json:"message"`
	TempID         string      `json:"tempId,omitempty"`
}
