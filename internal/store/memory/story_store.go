package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/store"
)

// StoryStore keeps stories in process memory. Expired stories stay until
// DeleteExpired runs but are never returned by ListActive.
type StoryStore struct {
	mu      sync.RWMutex
	stories map[string]models.Story
}

var _ store.StoryStore = (*StoryStore)(nil)

func NewStoryStore() *StoryStore {
	return &StoryStore{stories: make(map[string]models.Story)}
}

func (s *StoryStore) Create(_ context.Context, story *models.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stories[story.ID] = *story
	return nil
}

func (s *StoryStore) ListActive(_ context.Context, owners []string, now time.Time) ([]models.Story, error) {
	wanted := make(map[string]bool, len(owners))
	for _, o := range owners {
		wanted[o] = true
	}

	s.mu.RLock()
	out := []models.Story{}
	for _, st := range s.stories {
		if wanted[st.Owner] && st.ActiveAt(now) {
			out = append(out, st)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *StoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, st := range s.stories {
		if !st.ActiveAt(now) {
			delete(s.stories, id)
			n++
		}
	}
	return n, nil
}
