package models

import (
	"strings"
	"time"
)

// MessageType is the kind of a chat message.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageVideo MessageType = "video"
	MessageFile  MessageType = "file"
	MessageGif   MessageType = "gif"
	MessagePost  MessageType = "post"
)

// Valid reports whether t is one of the known message types.
func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageVideo, MessageFile, MessageGif, MessagePost:
		return true
	}
	return false
}

// KindFromMIME maps an upload content type to the message type it produces.
func KindFromMIME(mime string) MessageType {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return MessageImage
	case strings.HasPrefix(mime, "video/"):
		return MessageVideo
	default:
		return MessageFile
	}
}

// Message is a single entry in a conversation log, as persisted.
// Messages are immutable once appended.
type Message struct {
	// ID is the unique identifier for this message
	ID string `json:"id" bson:"id"`

	// Sender is the user id of the author
	Sender string `json:"sender" bson:"sender"`

	Type MessageType `json:"type" bson:"type"`

	// Text holds the body for text messages and the URL for gifs.
	// Always empty for shared posts.
	Text string `json:"text,omitempty" bson:"text,omitempty"`

	FileURL  string `json:"fileUrl,omitempty" bson:"fileUrl,omitempty"`
	FileType string `json:"fileType,omitempty" bson:"fileType,omitempty"`
	FileName string `json:"fileName,omitempty" bson:"fileName,omitempty"`

	// PostID references a shared post; set only when Type is post
	PostID string `json:"postId,omitempty" bson:"postId,omitempty"`

	// CreatedAt is assigned by the server when the message is persisted
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// SendMessageRequest is the client payload for appending a message.
type SendMessageRequest struct {
	Type     MessageType `json:"type,omitempty"`
	Text     string      `json:"text,omitempty"`
	FileURL  string      `json:"fileUrl,omitempty"`
	FileType string      `json:"fileType,omitempty"`
	FileName string      `json:"fileName,omitempty"`
	PostID   string      `json:"postId,omitempty"`
}

// MessageView is a message as returned to clients, with the sender and any
// shared post resolved.
type MessageView struct {
	ID        string       `json:"id"`
	Sender    UserSummary  `json:"sender"`
	Type      MessageType  `json:"type"`
	Text      string       `json:"text,omitempty"`
	FileURL   string       `json:"fileUrl,omitempty"`
	FileType  string       `json:"fileType,omitempty"`
	FileName  string       `json:"fileName,omitempty"`

	// PostID survives even when the shared post is gone and Post is nil
	PostID    string       `json:"postId,omitempty"`
	Post      *PostSummary `json:"post,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// SendMessageResponse is returned by the HTTP append endpoints.
type SendMessageResponse struct {
	ConversationID string      `json:"conversationId"`
	Message        MessageView `json:"message"`
}

// SharePostRequest is the request body for sharing a post in a direct message.
type SharePostRequest struct {
	ReceiverID string `json:"receiverId"`
	PostID     string `json:"postId"`
}
