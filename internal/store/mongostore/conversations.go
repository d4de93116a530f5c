package mongostore

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/store"
)

var _ store.ConversationStore = (*Store)(nil)

// FindOrCreate upserts on the unique pairKey so two first messages racing
// for the same pair end up in one document. The loser of an insert race
// sees a duplicate-key error and retries as a plain match.
func (s *Store) FindOrCreate(ctx context.Context, a, b string, now time.Time) (*models.Conversation, bool, error) {
	filter := bson.M{"pairKey": models.PairKey(a, b)}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":          uuid.New().String(),
		"participants": []string{a, b},
		"messages":     bson.A{},
		"createdAt":    now,
		"updatedAt":    now,
	}}

	created := false
	for attempt := 0; attempt < 2; attempt++ {
		res, err := s.conversations.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return nil, false, errors.Wrap(err, "upsert conversation")
		}
		created = res.UpsertedCount == 1
		break
	}

	var conv models.Conversation
	if err := s.conversations.FindOne(ctx, filter).Decode(&conv); err != nil {
		return nil, false, errors.Wrap(err, "load conversation")
	}
	return &conv, created, nil
}

func (s *Store) Get(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.conversations.FindOne(ctx, bson.M{"_id": id}).Decode(&conv)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get conversation %s", id)
	}
	return &conv, nil
}

// AppendMessage pushes msg and bumps updatedAt in a single document update.
func (s *Store) AppendMessage(ctx context.Context, conversationID string, msg models.Message) error {
	res, err := s.conversations.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$set":  bson.M{"updatedAt": msg.CreatedAt},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "append message to %s", conversationID)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListForUser loads each conversation with only its newest message.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetProjection(bson.M{"messages": bson.M{"$slice": -1}})

	cur, err := s.conversations.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "list conversations for %s", userID)
	}

	out := []models.Conversation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode conversations")
	}
	return out, nil
}
