package models

import (
	"errors"
	"time"
)

// Content is the typed body of a message. The set of implementations is
// closed: TextContent, MediaContent, FileContent, GifContent and
// PostShareContent.
type Content interface {
	messageType() MessageType
}

type TextContent struct {
	Text string
}

// MediaContent is an uploaded image or video.
type MediaContent struct {
	Kind     MessageType
	URL      string
	MimeType string
	FileName string
}

type FileContent struct {
	URL      string
	MimeType string
	FileName string
}

type GifContent struct {
	URL string
}

type PostShareContent struct {
	PostID string
}

func (TextContent) messageType() MessageType      { return MessageText }
func (c MediaContent) messageType() MessageType   { return c.Kind }
func (FileContent) messageType() MessageType      { return MessageFile }
func (GifContent) messageType() MessageType       { return MessageGif }
func (PostShareContent) messageType() MessageType { return MessagePost }

// Validation failures returned by ContentFromRequest.
var (
	ErrEmptyMessage = errors.New("message text or file is required")
	ErrMissingText  = errors.New("text is required for this message type")
	ErrMissingFile  = errors.New("fileUrl is required for this message type")
	ErrUnknownType  = errors.New("unknown message type")
)

// ContentFromRequest normalises a client payload into a Content value.
//
// A postId always wins and yields a post share with no text. Without a type
// the message is text, or the kind implied by fileType when a file is
// attached.
func ContentFromRequest(req SendMessageRequest) (Content, error) {
	if req.PostID != "" {
		return PostShareContent{PostID: req.PostID}, nil
	}

	typ := req.Type
	if typ == "" {
		switch {
		case req.FileURL != "":
			typ = KindFromMIME(req.FileType)
		case req.Text != "":
			typ = MessageText
		default:
			return nil, ErrEmptyMessage
		}
	}

	if !typ.Valid() {
		return nil, ErrUnknownType
	}

	switch typ {
	case MessageText:
		if req.Text == "" {
			return nil, ErrMissingText
		}
		return TextContent{Text: req.Text}, nil
	case MessageGif:
		if req.Text == "" {
			return nil, ErrMissingText
		}
		return GifContent{URL: req.Text}, nil
	case MessageImage, MessageVideo:
		if req.FileURL == "" {
			return nil, ErrMissingFile
		}
		return MediaContent{Kind: typ, URL: req.FileURL, MimeType: req.FileType, FileName: req.FileName}, nil
	case MessagePost:
		// a post share without a postId
		return nil, ErrEmptyMessage
	}

	if req.FileURL == "" {
		return nil, ErrMissingFile
	}
	return FileContent{URL: req.FileURL, MimeType: req.FileType, FileName: req.FileName}, nil
}

// NewMessage builds the stored form of a message with content c.
func NewMessage(id, sender string, c Content, createdAt time.Time) Message {
	m := Message{ID: id, Sender: sender, Type: c.messageType(), CreatedAt: createdAt}
	switch c := c.(type) {
	case TextContent:
		m.Text = c.Text
	case GifContent:
		m.Text = c.URL
	case MediaContent:
		m.FileURL, m.FileType, m.FileName = c.URL, c.MimeType, c.FileName
	case FileContent:
		m.FileURL, m.FileType, m.FileName = c.URL, c.MimeType, c.FileName
	case PostShareContent:
		m.PostID = c.PostID
	}
	return m
}

// Content returns the typed body of a stored message.
func (m Message) Content() Content {
	switch m.Type {
	case MessageGif:
		return GifContent{URL: m.Text}
	case MessageImage, MessageVideo:
		return MediaContent{Kind: m.Type, URL: m.FileURL, MimeType: m.FileType, FileName: m.FileName}
	case MessageFile:
		return FileContent{URL: m.FileURL, MimeType: m.FileType, FileName: m.FileName}
	case MessagePost:
		return PostShareContent{PostID: m.PostID}
	default:
		return TextContent{Text: m.Text}
	}
}
