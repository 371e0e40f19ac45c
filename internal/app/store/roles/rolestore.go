// internal/app/store/roles/rolestore.go
package rolestore

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
	return &Store{c: db.Collection("roles")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Role, error) {
	var r models.Role
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return models.Role{}, err
	}
	return r, nil
}

// FindByName returns the enabled role with the given name in a group.
func (s *Store) FindByName(ctx context.Context, groupID primitive.ObjectID, name string) (models.Role, error) {
	var r models.Role
	err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "name": name, "enabled": true}).Decode(&r)
	if err != nil {
		return models.Role{}, err
	}
	return r, nil
}

// Ensure returns the role named name in the group, creating it if missing.
// Keyed on (group_id, name) so a re-run after a partial failure converges.
// created reports whether this call inserted the document.
func (s *Store) Ensure(ctx context.Context, groupID primitive.ObjectID, name, description string, isSystem bool) (role models.Role, created bool, err error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"group_id": groupID, "name": name},
		bson.M{"$setOnInsert": bson.M{
			"_id":         primitive.NewObjectID(),
			"group_id":    groupID,
			"name":        name,
			"description": description,
			"is_system":   isSystem,
			"enabled":     true,
			"created_at":  now,
			"updated_at":  now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return models.Role{}, false, err
	}
	if err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "name": name}).Decode(&role); err != nil {
		return models.Role{}, false, err
	}
	return role, res.UpsertedCount > 0, nil
}
