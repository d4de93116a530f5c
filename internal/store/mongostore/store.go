// Package mongostore implements the store ports on MongoDB.
package mongostore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/vibehub/backend/internal/observability"
)

const (
	conversationsCollection = "conversations"
	storiesCollection       = "stories"
	usersCollection         = "users"
	postsCollection         = "posts"
)

// Store is a MongoDB-backed implementation of store.ConversationStore,
// store.StoryStore and store.Directory.
type Store struct {
	client        *mongo.Client
	conversations *mongo.Collection
	stories       *mongo.Collection
	users         *mongo.Collection
	posts         *mongo.Collection
}

// Connect dials uri, verifies the connection and ensures indexes exist.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "mongo ping")
	}

	db := client.Database(database)
	s := &Store{
		client:        client,
		conversations: db.Collection(conversationsCollection),
		stories:       db.Collection(storiesCollection),
		users:         db.Collection(usersCollection),
		posts:         db.Collection(postsCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	observability.Logger().Info("mongo store ready", "database", database)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.conversations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pairKey", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("pair_key_unique"),
		},
		{
			Keys: bson.D{{Key: "participants", Value: 1}, {Key: "updatedAt", Value: -1}},
		},
	})
	if err != nil {
		return errors.Wrap(err, "create conversation indexes")
	}

	_, err = s.stories.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// the TTL monitor purges a story once expireAt passes
			Keys:    bson.D{{Key: "expireAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("story_ttl"),
		},
		{
			Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	})
	if err != nil {
		return errors.Wrap(err, "create story indexes")
	}
	return nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping checks connectivity for the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}
