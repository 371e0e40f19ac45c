// internal/app/store/userroles/userrolestore.go
package userrolestore

import (
	"context"
	"time"

	"github.com/dalemusser/agendapro/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_roles")}
}

// Assign gives profileID the role inside the group. Assigning the same role
// twice returns the existing assignment.
func (s *Store) Assign(ctx context.Context, groupID, profileID, roleID primitive.ObjectID) (models.UserRole, error) {
	now := time.Now().UTC()
	filter := bson.M{"group_id": groupID, "profile_id": profileID, "role_id": roleID}
	_, err := s.c.UpdateOne(ctx, filter,
		bson.M{
			"$setOnInsert": bson.M{
				"_id":         primitive.NewObjectID(),
				"group_id":    groupID,
				"profile_id":  profileID,
				"role_id":     roleID,
				"assigned_at": now,
				"created_at":  now,
			},
			"$set": bson.M{"enabled": true},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return models.UserRole{}, err
	}
	var ur models.UserRole
	if err := s.c.FindOne(ctx, filter).Decode(&ur); err != nil {
		return models.UserRole{}, err
	}
	return ur, nil
}

// ListEnabled returns up to limit enabled role assignments for a profile in a group.
func (s *Store) ListEnabled(ctx context.Context, groupID, profileID primitive.ObjectID, limit int64) ([]models.UserRole, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"group_id": groupID, "profile_id": profileID, "enabled": true},
		options.Find().SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.UserRole
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
