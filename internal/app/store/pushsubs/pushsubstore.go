// internal/app/store/pushsubs/pushsubstore.go
package pushsubstore

import (
	"context"
	"time"

	"github.com/dalemusser/agendapro/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxPerProfile caps how many endpoints a single fan-out considers.
const MaxPerProfile = 100

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("push_subscriptions")}
}

// ListActiveByProfile returns the active, enabled endpoints of a profile.
func (s *Store) ListActiveByProfile(ctx context.Context, profileID primitive.ObjectID) ([]models.PushSubscription, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"profile_id": profileID, "is_active": true, "enabled": true},
		options.Find().SetLimit(MaxPerProfile),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.PushSubscription
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Deactivate marks an endpoint inactive after a permanent delivery failure.
func (s *Store) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"is_active":  false,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// TouchLastUsed stamps last_used_at after a successful send.
func (s *Store) TouchLastUsed(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"last_used_at": at,
		"updated_at":   at,
	}})
	return err
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.PushSubscription, error) {
	var sub models.PushSubscription
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		return models.PushSubscription{}, err
	}
	return sub, nil
}
