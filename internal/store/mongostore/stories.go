package mongostore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/store"
)

var _ store.StoryStore = (*Store)(nil)

func (s *Store) Create(ctx context.Context, story *models.Story) error {
	if _, err := s.stories.InsertOne(ctx, story); err != nil {
		return errors.Wrap(err, "insert story")
	}
	return nil
}

// ListActive filters on expireAt as well because the TTL monitor only runs
// about once a minute.
func (s *Store) ListActive(ctx context.Context, owners []string, now time.Time) ([]models.Story, error) {
	filter := bson.M{
		"owner":    bson.M{"$in": owners},
		"expireAt": bson.M{"$gt": now},
	}
	cur, err := s.stories.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list stories")
	}

	out := []models.Story{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode stories")
	}
	return out, nil
}

func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.stories.DeleteMany(ctx, bson.M{"expireAt": bson.M{"$lte": now}})
	if err != nil {
		return 0, errors.Wrap(err, "delete expired stories")
	}
	return res.DeletedCount, nil
}
