package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentFromRequest(t *testing.T) {
	cases := []struct {
		name    string
		req     SendMessageRequest
		want    Content
		wantErr error
	}{
		{"plain text", SendMessageRequest{Text: "hi"}, TextContent{Text: "hi"}, nil},
		{"explicit gif", SendMessageRequest{Type: MessageGif, Text: "https://g/x.gif"}, GifContent{URL: "https://g/x.gif"}, nil},
		{
			"image implied by file type",
			SendMessageRequest{FileURL: "https://cdn/a.png", FileType: "image/png", FileName: "a.png"},
			MediaContent{Kind: MessageImage, URL: "https://cdn/a.png", MimeType: "image/png", FileName: "a.png"},
			nil,
		},
		{
			"video implied by file type",
			SendMessageRequest{FileURL: "https://cdn/v.mp4", FileType: "video/mp4"},
			MediaContent{Kind: MessageVideo, URL: "https://cdn/v.mp4", MimeType: "video/mp4"},
			nil,
		},
		{
			"generic file",
			SendMessageRequest{FileURL: "https://cdn/doc.pdf", FileType: "application/pdf", FileName: "doc.pdf"},
			FileContent{URL: "https://cdn/doc.pdf", MimeType: "application/pdf", FileName: "doc.pdf"},
			nil,
		},
		{"post forces type and drops text", SendMessageRequest{Type: MessageText, Text: "look", PostID: "p1"}, PostShareContent{PostID: "p1"}, nil},
		{"empty", SendMessageRequest{}, nil, ErrEmptyMessage},
		{"text without text", SendMessageRequest{Type: MessageText, FileURL: "x"}, nil, ErrMissingText},
		{"image without url", SendMessageRequest{Type: MessageImage}, nil, ErrMissingFile},
		{"post without id", SendMessageRequest{Type: MessagePost}, nil, ErrEmptyMessage},
		{"unknown", SendMessageRequest{Type: "sticker", Text: "x"}, nil, ErrUnknownType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ContentFromRequest(tc.req)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewMessageRoundTripsContent(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	contents := []Content{
		TextContent{Text: "hello"},
		GifContent{URL: "https://g/1.gif"},
		MediaContent{Kind: MessageVideo, URL: "u", MimeType: "video/mp4", FileName: "v.mp4"},
		FileContent{URL: "u", MimeType: "application/zip", FileName: "a.zip"},
		PostShareContent{PostID: "p9"},
	}

	for _, c := range contents {
		m := NewMessage("m1", "alice", c, at)
		assert.Equal(t, c, m.Content())
		assert.Equal(t, at, m.CreatedAt)
	}
}

func TestSharedPostHasNoText(t *testing.T) {
	c, err := ContentFromRequest(SendMessageRequest{Text: "caption", PostID: "p1"})
	require.NoError(t, err)

	m := NewMessage("m1", "alice", c, time.Now())
	assert.Equal(t, MessagePost, m.Type)
	assert.Empty(t, m.Text)
	assert.Equal(t, "p1", m.PostID)
}

func TestPairKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, PairKey("alice", "bob"), PairKey("bob", "alice"))
	assert.Equal(t, "alice:bob", PairKey("bob", "alice"))
}

func TestSortedMessages(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	c := Conversation{Messages: []Message{
		{ID: "b", CreatedAt: t0.Add(2 * time.Second)},
		{ID: "a", CreatedAt: t0},
		{ID: "c", CreatedAt: t0.Add(2 * time.Second)},
	}}

	got := c.SortedMessages()
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, "b", c.Messages[0].ID, "stored order untouched")

	last, ok := c.LastMessage()
	require.True(t, ok)
	assert.Equal(t, "c", last.ID)
}

func TestStoryActiveAt(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s := Story{CreatedAt: t0, ExpireAt: t0.Add(StoryLifetime)}

	assert.True(t, s.ActiveAt(t0.Add(3599*time.Second)))
	assert.False(t, s.ActiveAt(t0.Add(3601*time.Second)))
}
