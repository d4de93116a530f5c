package services

import (
	"context"
	"errors"
	"time"

	"github.com/vibehub/backend/internal/apperrors"
	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/store"
)

// clock returns the server time at the precision the document store keeps.
func clock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// lookup holds the users and posts referenced by a batch of messages.
type lookup struct {
	users map[string]models.User
	posts map[string]models.Post
}

// loadLookup fetches every user and post referenced by participants and msgs
// in as few directory calls as possible. Deleted posts are skipped.
func loadLookup(ctx context.Context, dir store.Directory, participants []string, msgs []models.Message) (*lookup, error) {
	l := &lookup{posts: make(map[string]models.Post)}

	seen := make(map[string]bool)
	var userIDs []string
	addUser := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			userIDs = append(userIDs, id)
		}
	}
	for _, p := range participants {
		addUser(p)
	}

	for _, m := range msgs {
		addUser(m.Sender)
		share, ok := m.Content().(models.PostShareContent)
		if !ok {
			continue
		}
		if _, done := l.posts[share.PostID]; done {
			continue
		}
		post, err := dir.GetPost(ctx, share.PostID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperrors.Internal("failed to resolve shared post", err)
		}
		l.posts[post.ID] = *post
		addUser(post.Author)
	}

	users, err := dir.GetUsers(ctx, userIDs)
	if err != nil {
		return nil, apperrors.Internal("failed to resolve users", err)
	}
	l.users = users
	return l, nil
}

func (l *lookup) user(id string) models.UserSummary {
	if u, ok := l.users[id]; ok {
		return u.Summary()
	}
	return models.UserSummary{ID: id}
}

func (l *lookup) participants(ids []string) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.user(id))
	}
	return out
}

func (l *lookup) message(m models.Message) models.MessageView {
	v := models.MessageView{
		ID:        m.ID,
		Sender:    l.user(m.Sender),
		Type:      m.Type,
		CreatedAt: m.CreatedAt,
	}
	switch c := m.Content().(type) {
	case models.TextContent:
		v.Text = c.Text
	case models.GifContent:
		v.Text = c.URL
	case models.MediaContent:
		v.FileURL, v.FileType, v.FileName = c.URL, c.MimeType, c.FileName
	case models.FileContent:
		v.FileURL, v.FileType, v.FileName = c.URL, c.MimeType, c.FileName
	case models.PostShareContent:
		v.PostID = c.PostID
		if p, ok := l.posts[c.PostID]; ok {
			v.Post = &models.PostSummary{
				ID:      p.ID,
				Media:   p.Media,
				Caption: p.Caption,
				Author:  l.user(p.Author),
			}
		}
	}
	return v
}

func (l *lookup) messages(msgs []models.Message) []models.MessageView {
	out := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, l.message(m))
	}
	return out
}
