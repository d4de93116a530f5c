package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/vibehub/backend/internal/observability"
	"github.com/vibehub/backend/internal/store"
)

// CleanupService purges expired stories.
// It runs as a background goroutine next to the store's own TTL expiry, so
// backends without one (the memory store) still shed old stories.
type CleanupService struct {
	stories  store.StoryStore
	interval time.Duration
	now      func() time.Time
	log      *slog.Logger
	stopChan chan struct{}
}

// NewCleanupService creates a new cleanup service.
// - interval: how often to sweep for expired stories (e.g., 1 minute)
func NewCleanupService(stories store.StoryStore, interval time.Duration) *CleanupService {
	return &CleanupService{
		stories:  stories,
		interval: interval,
		now:      clock,
		log:      observability.WithFields("component", "cleanup"),
		stopChan: make(chan struct{}),
	}
}

// Start begins the background cleanup worker.
// This method runs in its own goroutine and should be called with 'go'.
func (s *CleanupService) Start() {
	s.log.Info("story sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			s.log.Info("story sweeper stopped")
			return
		}
	}
}

// Stop gracefully shuts down the cleanup service.
func (s *CleanupService) Stop() {
	close(s.stopChan)
}

// cleanup deletes every story past its expiry.
func (s *CleanupService) cleanup() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	n, err := s.stories.DeleteExpired(ctx, s.now())
	if err != nil {
		s.log.Error("failed to delete expired stories", "error", err)
		return 0
	}
	if n > 0 {
		s.log.Info("deleted expired stories", "count", n)
	}
	return n
}
