package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibehub/backend/internal/apperrors"
	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/store/memory"
)

func TestAppendText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conv, _, err := f.convs.Resolve(ctx, "alice", "bob")
	require.NoError(t, err)

	ev, err := f.messages.Append(ctx, AppendInput{
		ConversationID: conv.ID,
		SenderID:       "alice",
		Request:        models.SendMessageRequest{Text: "hi"},
		TempID:         "tmp-1",
	})
	require.NoError(t, err)

	assert.Equal(t, conv.ID, ev.ConversationID)
	assert.Equal(t, "tmp-1", ev.TempID)
	assert.NotEmpty(t, ev.Message.ID)
	assert.Equal(t, models.MessageText, ev.Message.Type)
	assert.Equal(t, "hi", ev.Message.Text)
	assert.Equal(t, models.UserSummary{ID: "alice", Username: "alice", ProfilePic: "https://cdn/alice.png"}, ev.Message.Sender)
	assert.False(t, ev.Message.CreatedAt.IsZero())

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, *ev, f.notifier.events[0])
	assert.ElementsMatch(t, []string{"alice", "bob"}, f.notifier.to[0])

	stored, err := f.conversations.Get(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, stored.Messages, 1)
	assert.Equal(t, ev.Message.CreatedAt, stored.UpdatedAt)
}

func TestAppendRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conv, _, err := f.convs.Resolve(ctx, "alice", "bob")
	require.NoError(t, err)

	cases := []struct {
		name string
		in   AppendInput
		code apperrors.Code
	}{
		{"unknown conversation", AppendInput{ConversationID: "nope", SenderID: "alice", Request: models.SendMessageRequest{Text: "x"}}, apperrors.CodeNotFound},
		{"non participant", AppendInput{ConversationID: conv.ID, SenderID: "carol", Request: models.SendMessageRequest{Text: "x"}}, apperrors.CodePermissionDenied},
		{"missing post", AppendInput{ConversationID: conv.ID, SenderID: "alice", Request: models.SendMessageRequest{PostID: "ghost"}}, apperrors.CodeNotFound},
		{"empty message", AppendInput{ConversationID: conv.ID, SenderID: "alice"}, apperrors.CodeInvalidArgument},
		{"image without url", AppendInput{ConversationID: conv.ID, SenderID: "alice", Request: models.SendMessageRequest{Type: models.MessageImage}}, apperrors.CodeInvalidArgument},
		{"no sender", AppendInput{ConversationID: conv.ID, Request: models.SendMessageRequest{Text: "x"}}, apperrors.CodeInvalidArgument},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.messages.Append(ctx, tc.in)
			require.Error(t, err)
			assert.Equal(t, tc.code, apperrors.CodeOf(err))
		})
	}

	stored, err := f.conversations.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Messages, "rejected appends leave the log untouched")
	assert.Empty(t, f.notifier.events)
}

func TestAppendMissingPostMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conv, _, _ := f.convs.Resolve(ctx, "alice", "bob")

	_, err := f.messages.Append(ctx, AppendInput{ConversationID: conv.ID, SenderID: "alice", Request: models.SendMessageRequest{PostID: "ghost"}})
	assert.EqualError(t, err, "Post not found")
}

func TestAppendPostShareForcesTypeAndClearsText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conv, _, _ := f.convs.Resolve(ctx, "alice", "bob")

	ev, err := f.messages.Append(ctx, AppendInput{
		ConversationID: conv.ID,
		SenderID:       "bob",
		Request:        models.SendMessageRequest{Type: models.MessageText, Text: "look at this", PostID: "p1"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.MessagePost, ev.Message.Type)
	assert.Empty(t, ev.Message.Text)
	require.NotNil(t, ev.Message.Post)
	assert.Equal(t, &models.PostSummary{
		ID:      "p1",
		Media:   []string{"https://cdn/p1.jpg"},
		Caption: "sunset",
		Author:  models.UserSummary{ID: "carol", Username: "carol"},
	}, ev.Message.Post)
}

func TestSharePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("missing post creates nothing", func(t *testing.T) {
		_, err := f.messages.SharePost(ctx, "alice", "bob", "ghost")
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

		list, err := f.convs.ListForUser(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("opens the conversation on first contact", func(t *testing.T) {
		ev, err := f.messages.SharePost(ctx, "alice", "bob", "p1")
		require.NoError(t, err)
		assert.Equal(t, models.MessagePost, ev.Message.Type)

		conv, created, err := f.convs.Resolve(ctx, "bob", "alice")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, conv.ID, ev.ConversationID)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := f.messages.SharePost(ctx, "alice", "", "p1")
		assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
	})
}

// Alice opens a thread with Bob, sends text, Bob shares Carol's post and
// the conversation reads back in order with everything resolved.
func TestConversationWalkthrough(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, created, err := f.convs.Open(ctx, "alice", "bob")
	require.NoError(t, err)
	require.True(t, created)

	_, err = f.messages.Append(ctx, AppendInput{ConversationID: view.ID, SenderID: "alice", Request: models.SendMessageRequest{Text: "hi"}, TempID: "t1"})
	require.NoError(t, err)
	_, err = f.messages.SharePost(ctx, "bob", "alice", "p1")
	require.NoError(t, err)

	got, err := f.convs.Get(ctx, view.ID, "alice")
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "hi", got.Messages[0].Text)
	assert.Equal(t, models.MessagePost, got.Messages[1].Type)
	assert.Equal(t, "bob", got.Messages[1].Sender.Username)
	assert.Equal(t, "carol", got.Messages[1].Post.Author.Username)
	assert.True(t, got.Messages[0].CreatedAt.Before(got.Messages[1].CreatedAt))

	require.Len(t, f.notifier.events, 2)
	assert.Equal(t, "t1", f.notifier.events[0].TempID)
	assert.Empty(t, f.notifier.events[1].TempID)
}

// unavailableUsers fails every batch user lookup.
type unavailableUsers struct {
	*memory.Directory
}

func (unavailableUsers) GetUsers(context.Context, []string) (map[string]models.User, error) {
	return nil, errors.New("users collection unavailable")
}

func TestAppendDirectoryFailureStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conv, _, err := f.convs.Resolve(ctx, "alice", "bob")
	require.NoError(t, err)

	messages := NewMessageService(f.conversations, unavailableUsers{f.directory}, f.convs)
	messages.SetNotifier(f.notifier)

	_, err = messages.Append(ctx, AppendInput{
		ConversationID: conv.ID,
		SenderID:       "alice",
		Request:        models.SendMessageRequest{Text: "hi"},
		TempID:         "tmp-1",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))

	stored, err := f.conversations.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Messages)
	assert.Empty(t, f.notifier.events)
}

func TestSharedPostKeepsIDWhenPostIsGone(t *testing.T) {
	l := &lookup{posts: map[string]models.Post{}}
	msg := models.NewMessage("m1", "alice", models.PostShareContent{PostID: "gone"}, time.Now())

	v := l.message(msg)
	assert.Equal(t, models.MessagePost, v.Type)
	assert.Equal(t, "gone", v.PostID)
	assert.Nil(t, v.Post)
}
