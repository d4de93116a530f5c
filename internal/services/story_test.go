package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibehub/backend/internal/apperrors"
	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/store/memory"
)

func newStoryService(t *testing.T, now *time.Time) (*StoryService, *memory.StoryStore) {
	t.Helper()
	dir := memory.NewDirectory()
	dir.PutUser(models.User{ID: "alice", Following: []string{"bob"}})

	stories := memory.NewStoryStore()
	svc := NewStoryService(stories, dir)
	svc.now = func() time.Time { return *now }
	return svc, stories
}

func TestStoryLifetime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newStoryService(t, &now)
	ctx := context.Background()

	created, err := svc.Create(ctx, "bob", models.CreateStoryRequest{
		MediaURL:  "https://cdn/s.jpg",
		MediaType: models.MessageImage,
		Song:      &models.Song{Title: "Song", Artist: "Band", PreviewURL: "https://cdn/s.mp3"},
	})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), created.ExpireAt)

	start := now
	now = start.Add(3599 * time.Second)
	list, err := svc.ListActive(ctx, "alice", nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	now = start.Add(3601 * time.Second)
	list, err = svc.ListActive(ctx, "alice", nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStoryListOwners(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newStoryService(t, &now)
	ctx := context.Background()

	for _, owner := range []string{"alice", "bob", "carol"} {
		_, err := svc.Create(ctx, owner, models.CreateStoryRequest{MediaURL: "u", MediaType: models.MessageVideo})
		require.NoError(t, err)
	}

	list, err := svc.ListActive(ctx, "alice", nil)
	require.NoError(t, err)
	assert.Len(t, list, 2, "own stories and followed users")

	list, err = svc.ListActive(ctx, "alice", []string{"carol"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "carol", list[0].Owner)

	list, err = svc.ListActive(ctx, "stranger", nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStoryValidation(t *testing.T) {
	now := time.Now()
	svc, _ := newStoryService(t, &now)
	ctx := context.Background()

	cases := []models.CreateStoryRequest{
		{MediaType: models.MessageImage},
		{MediaURL: "u", MediaType: models.MessageFile},
		{MediaURL: "u", MediaType: models.MessageImage, Song: &models.Song{Artist: "x"}},
	}
	for _, req := range cases {
		_, err := svc.Create(ctx, "alice", req)
		assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
	}
}

func TestCleanupSweepsExpiredStories(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, stories := newStoryService(t, &now)
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", models.CreateStoryRequest{MediaURL: "u", MediaType: models.MessageImage})
	require.NoError(t, err)

	sweeper := NewCleanupService(stories, time.Minute)
	sweeper.now = func() time.Time { return now.Add(30 * time.Minute) }
	assert.EqualValues(t, 0, sweeper.cleanup())

	sweeper.now = func() time.Time { return now.Add(61 * time.Minute) }
	assert.EqualValues(t, 1, sweeper.cleanup())
}

func TestCleanupStartStop(t *testing.T) {
	sweeper := NewCleanupService(memory.NewStoryStore(), 10*time.Millisecond)
	done := make(chan struct{})
	go func() {
		sweeper.Start()
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	sweeper.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
