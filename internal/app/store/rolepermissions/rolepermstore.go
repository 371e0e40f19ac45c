// internal/app/store/rolepermissions/rolepermstore.go
package rolepermstore

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
	return &Store{c: db.Collection("role_permissions")}
}

// Ensure links a role to a permission inside a group. Keyed on
// (role_id, permission_id); created reports whether this call inserted it.
func (s *Store) Ensure(ctx context.Context, groupID, roleID, permissionID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"role_id": roleID, "permission_id": permissionID},
		bson.M{"$setOnInsert": bson.M{
			"_id":           primitive.NewObjectID(),
			"group_id":      groupID,
			"role_id":       roleID,
			"permission_id": permissionID,
			"enabled":       true,
			"created_at":    time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// ListEnabledByPermission returns up to limit enabled links for a permission in a group.
func (s *Store) ListEnabledByPermission(ctx context.Context, groupID, permissionID primitive.ObjectID, limit int64) ([]models.RolePermission, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"group_id": groupID, "permission_id": permissionID, "enabled": true},
		options.Find().SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.RolePermission
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
