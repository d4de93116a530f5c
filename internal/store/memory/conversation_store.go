package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/store"
)

// ConversationStore keeps conversations in process memory.
type ConversationStore struct {
	mu     sync.RWMutex
	byID   map[string]*models.Conversation
	byPair map[string]string
}

var _ store.ConversationStore = (*ConversationStore)(nil)

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		byID:   make(map[string]*models.Conversation),
		byPair: make(map[string]string),
	}
}

func (s *ConversationStore) FindOrCreate(_ context.Context, a, b string, now time.Time) (*models.Conversation, bool, error) {
	key := models.PairKey(a, b)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byPair[key]; ok {
		return clone(s.byID[id]), false, nil
	}

	conv := &models.Conversation{
		ID:           uuid.New().String(),
		PairKey:      key,
		Participants: []string{a, b},
		Messages:     []models.Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byID[conv.ID] = conv
	s.byPair[key] = conv.ID
	return clone(conv), true, nil
}

func (s *ConversationStore) Get(_ context.Context, id string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(conv), nil
}

func (s *ConversationStore) AppendMessage(_ context.Context, conversationID string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.byID[conversationID]
	if !ok {
		return store.ErrNotFound
	}
	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = msg.CreatedAt
	return nil
}

func (s *ConversationStore) ListForUser(_ context.Context, userID string) ([]models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Conversation{}
	for _, conv := range s.byID {
		if conv.HasParticipant(userID) {
			out = append(out, *clone(conv))
		}
	}
	return out, nil
}

// clone copies a conversation so callers never alias the stored slices.
func clone(c *models.Conversation) *models.Conversation {
	cp := *c
	cp.Participants = append([]string(nil), c.Participants...)
	cp.Messages = append([]models.Message{}, c.Messages...)
	return &cp
}
