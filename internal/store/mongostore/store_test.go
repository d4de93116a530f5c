package mongostore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	s, err := Connect(ctx, uri, "vibehub_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestMongoConversations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	t0 := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("resolve converges under concurrency", func(t *testing.T) {
		const n = 16
		ids := make([]string, n)
		created := make([]bool, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				a, b := "alice", "bob"
				if i%2 == 0 {
					a, b = b, a
				}
				conv, c, err := s.FindOrCreate(ctx, a, b, t0)
				assert.NoError(t, err)
				if conv != nil {
					ids[i] = conv.ID
				}
				created[i] = c
			}(i)
		}
		wg.Wait()

		inserts := 0
		for i := range ids {
			assert.Equal(t, ids[0], ids[i])
			if created[i] {
				inserts++
			}
		}
		assert.Equal(t, 1, inserts)
	})

	t.Run("append and list", func(t *testing.T) {
		conv, _, err := s.FindOrCreate(ctx, "alice", "bob", t0)
		require.NoError(t, err)

		m1 := models.Message{ID: "m1", Sender: "alice", Type: models.MessageText, Text: "hi", CreatedAt: t0.Add(time.Second)}
		m2 := models.Message{ID: "m2", Sender: "bob", Type: models.MessagePost, PostID: "p1", CreatedAt: t0.Add(2 * time.Second)}
		require.NoError(t, s.AppendMessage(ctx, conv.ID, m1))
		require.NoError(t, s.AppendMessage(ctx, conv.ID, m2))

		got, err := s.Get(ctx, conv.ID)
		require.NoError(t, err)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, m2.CreatedAt, got.UpdatedAt.UTC())
		assert.Equal(t, "p1", got.Messages[1].PostID)

		list, err := s.ListForUser(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Len(t, list[0].Messages, 1)
		assert.Equal(t, "m2", list[0].Messages[0].ID)

		assert.ErrorIs(t, s.AppendMessage(ctx, "missing", m1), store.ErrNotFound)
		_, err = s.Get(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("empty list", func(t *testing.T) {
		list, err := s.ListForUser(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestMongoStories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	t0 := time.Now().UTC().Truncate(time.Millisecond)

	story := &models.Story{ID: "s1", Owner: "alice", MediaURL: "u", MediaType: models.MessageImage, CreatedAt: t0, ExpireAt: t0.Add(models.StoryLifetime)}
	require.NoError(t, s.Create(ctx, story))

	active, err := s.ListActive(ctx, []string{"alice"}, t0.Add(3599*time.Second))
	require.NoError(t, err)
	assert.Len(t, active, 1)

	active, err = s.ListActive(ctx, []string{"alice"}, t0.Add(3601*time.Second))
	require.NoError(t, err)
	assert.Empty(t, active)

	n, err := s.DeleteExpired(ctx, t0.Add(3601*time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMongoDirectory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.users.InsertOne(ctx, models.User{ID: "alice", Username: "alice", ProfilePic: "a.png"})
	require.NoError(t, err)
	_, err = s.posts.InsertOne(ctx, models.Post{ID: "p1", Author: "alice", Caption: "sunset"})
	require.NoError(t, err)

	users, err := s.GetUsers(ctx, []string{"alice", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, "a.png", users["alice"].ProfilePic)
	assert.Len(t, users, 1)

	p, err := s.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "sunset", p.Caption)

	_, err = s.GetPost(ctx, "p2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
