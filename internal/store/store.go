// Package store declares the persistence ports used by the services.
// Implementations live in store/memory and store/mongo.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/vibehub/backend/internal/models"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("store: not found")

// ConversationStore persists conversations and their message logs.
type ConversationStore interface {
	// FindOrCreate returns the conversation for the unordered pair {a, b},
	// inserting an empty one if none exists. created is true only for the
	// call that inserted it. Concurrent calls for the same pair converge on
	// one document.
	FindOrCreate(ctx context.Context, a, b string, now time.Time) (conv *models.Conversation, created bool, err error)

	Get(ctx context.Context, id string) (*models.Conversation, error)

	// AppendMessage atomically adds msg to the end of the log and sets
	// updatedAt to the message time.
	AppendMessage(ctx context.Context, conversationID string, msg models.Message) error

	// ListForUser returns every conversation userID participates in.
	ListForUser(ctx context.Context, userID string) ([]models.Conversation, error)
}

// StoryStore persists ephemeral stories.
type StoryStore interface {
	Create(ctx context.Context, story *models.Story) error

	// ListActive returns stories of the given owners still visible at now,
	// newest first.
	ListActive(ctx context.Context, owners []string, now time.Time) ([]models.Story, error)

	// DeleteExpired removes stories whose expiry is not after now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Directory is read access to users and posts owned by other parts of the
// application.
type Directory interface {
	GetUser(ctx context.Context, id string) (*models.User, error)

	// GetUsers returns the users found among ids, keyed by id. Unknown ids
	// are skipped.
	GetUsers(ctx context.Context, ids []string) (map[string]models.User, error)

	GetPost(ctx context.Context, id string) (*models.Post, error)
}
