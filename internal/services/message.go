package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vibehub/backend/internal/apperrors"
	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/observability"
	"github.com/vibehub/backend/internal/store"
)

// Notifier receives every appended message for real-time delivery.
// Delivery is best effort; a failure never fails the append.
type Notifier interface {
	MessageAppended(ctx context.Context, participants []string, event models.MessageEvent)
}

// AppendInput is one message send.
type AppendInput struct {
	ConversationID string
	SenderID       string
	Request        models.SendMessageRequest

	// TempID is the client correlation id echoed in the broadcast
	TempID string
}

// MessageService appends messages to conversations.
type MessageService struct {
	conversations store.ConversationStore
	directory     store.Directory
	resolver      *ConversationService
	notifier      Notifier
	now           func() time.Time
	newID         func() string
}

// NewMessageService creates a new MessageService instance.
func NewMessageService(conversations store.ConversationStore, directory store.Directory, resolver *ConversationService) *MessageService {
	return &MessageService{
		conversations: conversations,
		directory:     directory,
		resolver:      resolver,
		now:           clock,
		newID:         func() string { return uuid.New().String() },
	}
}

// SetNotifier wires the real-time fan-out. It must be called before the
// service handles traffic.
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Append validates and stores a message, then hands it to the notifier.
// The returned event carries the canonical message with the sender and any
// shared post resolved.
func (s *MessageService) Append(ctx context.Context, in AppendInput) (*models.MessageEvent, error) {
	if in.SenderID == "" {
		return nil, apperrors.InvalidArg("sender is required")
	}

	conv, err := s.resolver.load(ctx, in.ConversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(in.SenderID) {
		return nil, apperrors.Forbidden("sender is not a participant of this conversation")
	}

	content, err := models.ContentFromRequest(in.Request)
	if err != nil {
		return nil, apperrors.InvalidArg(err.Error())
	}
	if share, ok := content.(models.PostShareContent); ok {
		if err := s.requirePost(ctx, share.PostID); err != nil {
			return nil, err
		}
	}

	msg := models.NewMessage(s.newID(), in.SenderID, content, s.now())

	// resolve the view first so a directory failure leaves nothing stored
	l, err := loadLookup(ctx, s.directory, nil, []models.Message{msg})
	if err != nil {
		return nil, err
	}

	if err := s.conversations.AppendMessage(ctx, conv.ID, msg); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Conversation not found")
		}
		return nil, apperrors.Internal("failed to append message", err)
	}
	event := &models.MessageEvent{
		ConversationID: conv.ID,
		Message:        l.message(msg),
		TempID:         in.TempID,
	}

	observability.LoggerFromContext(ctx).Info("message appended",
		"conversation_id", conv.ID, "message_id", msg.ID, "sender", msg.Sender, "type", msg.Type)

	if s.notifier != nil {
		s.notifier.MessageAppended(ctx, conv.Participants, *event)
	}
	return event, nil
}

// SharePost sends postID from senderID to receiverID, opening their
// conversation if needed. A missing post fails before anything is written.
func (s *MessageService) SharePost(ctx context.Context, senderID, receiverID, postID string) (*models.MessageEvent, error) {
	if receiverID == "" || postID == "" {
		return nil, apperrors.InvalidArg("receiverId and postId are required")
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	conv, _, err := s.resolver.Resolve(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	return s.Append(ctx, AppendInput{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Request:        models.SendMessageRequest{Type: models.MessagePost, PostID: postID},
	})
}

func (s *MessageService) requirePost(ctx context.Context, postID string) error {
	_, err := s.directory.GetPost(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound("Post not found")
	}
	if err != nil {
		return apperrors.Internal("failed to load post", err)
	}
	return nil
}
