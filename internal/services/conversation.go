package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/vibehub/backend/internal/apperrors"
	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/observability"
	"github.com/vibehub/backend/internal/store"
)

// ConversationService resolves and reads direct-message conversations.
type ConversationService struct {
	conversations store.ConversationStore
	directory     store.Directory
	now           func() time.Time
}

// NewConversationService creates a new ConversationService instance.
func NewConversationService(conversations store.ConversationStore, directory store.Directory) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		directory:     directory,
		now:           clock,
	}
}

// Resolve returns the single conversation between a and b, creating it on
// first contact. Argument order does not matter.
func (s *ConversationService) Resolve(ctx context.Context, a, b string) (*models.Conversation, bool, error) {
	if a == "" || b == "" {
		return nil, false, apperrors.InvalidArg("participantA and participantB are required")
	}
	if a == b {
		return nil, false, apperrors.InvalidArg("cannot open a conversation with yourself")
	}

	conv, created, err := s.conversations.FindOrCreate(ctx, a, b, s.now())
	if err != nil {
		return nil, false, apperrors.Internal("failed to resolve conversation", err)
	}
	if created {
		observability.LoggerFromContext(ctx).Info("conversation created",
			"conversation_id", conv.ID, "participants", conv.Participants)
	}
	return conv, created, nil
}

// Open resolves the conversation between a and b and returns it resolved
// for display.
func (s *ConversationService) Open(ctx context.Context, a, b string) (*models.ConversationView, bool, error) {
	conv, created, err := s.Resolve(ctx, a, b)
	if err != nil {
		return nil, false, err
	}
	view, err := s.view(ctx, conv)
	if err != nil {
		return nil, false, err
	}
	return view, created, nil
}

// Get returns a conversation with its messages in ascending createdAt order.
// viewerID must be a participant.
func (s *ConversationService) Get(ctx context.Context, id, viewerID string) (*models.ConversationView, error) {
	conv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(viewerID) {
		return nil, apperrors.Forbidden("not a participant of this conversation")
	}
	return s.view(ctx, conv)
}

// CheckParticipant fails unless the conversation exists and userID is one of
// its participants. An empty userID only checks existence.
func (s *ConversationService) CheckParticipant(ctx context.Context, conversationID, userID string) error {
	conv, err := s.load(ctx, conversationID)
	if err != nil {
		return err
	}
	if userID != "" && !conv.HasParticipant(userID) {
		return apperrors.Forbidden("not a participant of this conversation")
	}
	return nil
}

// ListForUser returns the user's conversations, most recently active first,
// each with its latest message. A user with no conversations gets an empty
// slice.
func (s *ConversationService) ListForUser(ctx context.Context, userID string) ([]models.ConversationListItem, error) {
	if userID == "" {
		return nil, apperrors.InvalidArg("user ID is required")
	}

	convs, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list conversations", err)
	}

	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})

	var participants []string
	lasts := make([]*models.Message, len(convs))
	var lastMsgs []models.Message
	for i := range convs {
		participants = append(participants, convs[i].Participants...)
		if m, ok := convs[i].LastMessage(); ok {
			lasts[i] = &m
			lastMsgs = append(lastMsgs, m)
		}
	}

	l, err := loadLookup(ctx, s.directory, participants, lastMsgs)
	if err != nil {
		return nil, err
	}

	out := make([]models.ConversationListItem, 0, len(convs))
	for i, c := range convs {
		item := models.ConversationListItem{
			ID:           c.ID,
			Participants: l.participants(c.Participants),
			UpdatedAt:    c.UpdatedAt,
		}
		if lasts[i] != nil {
			v := l.message(*lasts[i])
			item.LastMessage = &v
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *ConversationService) load(ctx context.Context, id string) (*models.Conversation, error) {
	if id == "" {
		return nil, apperrors.InvalidArg("conversation ID is required")
	}
	conv, err := s.conversations.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("Conversation not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load conversation", err)
	}
	return conv, nil
}

func (s *ConversationService) view(ctx context.Context, conv *models.Conversation) (*models.ConversationView, error) {
	msgs := conv.SortedMessages()
	l, err := loadLookup(ctx, s.directory, conv.Participants, msgs)
	if err != nil {
		return nil, err
	}
	return &models.ConversationView{
		ID:           conv.ID,
		Participants: l.participants(conv.Participants),
		Messages:     l.messages(msgs),
		CreatedAt:    conv.CreatedAt,
		UpdatedAt:    conv.UpdatedAt,
	}, nil
}
