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

// StoryService posts and lists ephemeral stories.
type StoryService struct {
	stories   store.StoryStore
	directory store.Directory
	now       func() time.Time
}

// NewStoryService creates a new StoryService instance.
func NewStoryService(stories store.StoryStore, directory store.Directory) *StoryService {
	return &StoryService{stories: stories, directory: directory, now: clock}
}

// Create posts a story for owner. It expires StoryLifetime after creation.
func (s *StoryService) Create(ctx context.Context, owner string, req models.CreateStoryRequest) (*models.Story, error) {
	if owner == "" {
		return nil, apperrors.InvalidArg("owner is required")
	}
	if req.MediaURL == "" {
		return nil, apperrors.InvalidArg("mediaUrl is required")
	}
	if req.MediaType != models.MessageImage && req.MediaType != models.MessageVideo {
		return nil, apperrors.InvalidArg("mediaType must be image or video")
	}
	if req.Song != nil && req.Song.Title == "" {
		return nil, apperrors.InvalidArg("song title is required")
	}

	now := s.now()
	story := &models.Story{
		ID:        uuid.New().String(),
		Owner:     owner,
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
		Song:      req.Song,
		CreatedAt: now,
		ExpireAt:  now.Add(models.StoryLifetime),
	}
	if err := s.stories.Create(ctx, story); err != nil {
		return nil, apperrors.Internal("failed to create story", err)
	}

	observability.LoggerFromContext(ctx).Info("story created", "story_id", story.ID, "owner", owner)
	return story, nil
}

// ListActive returns the visible stories of owners, newest first. With no
// owners it lists the viewer's own stories and those of everyone they follow.
func (s *StoryService) ListActive(ctx context.Context, viewerID string, owners []string) ([]models.Story, error) {
	if len(owners) == 0 {
		if viewerID == "" {
			return nil, apperrors.InvalidArg("users are required")
		}
		owners = []string{viewerID}
		viewer, err := s.directory.GetUser(ctx, viewerID)
		switch {
		case err == nil:
			owners = append(owners, viewer.Following...)
		case !errors.Is(err, store.ErrNotFound):
			return nil, apperrors.Internal("failed to load viewer", err)
		}
	}

	stories, err := s.stories.ListActive(ctx, owners, s.now())
	if err != nil {
		return nil, apperrors.Internal("failed to list stories", err)
	}
	return stories, nil
}
