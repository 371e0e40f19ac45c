// internal/app/store/permissions/permissionstore.go
package permissionstore

import (
	"context"
	"time"

	"github.com/dalemusser/agendapro/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Entry describes one permission of the global catalog.
type Entry struct {
	Key         string
	Description string
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("permissions")}
}

// GetByKey returns the enabled permission with the given key or mongo.ErrNoDocuments.
func (s *Store) GetByKey(ctx context.Context, key string) (models.Permission, error) {
	var p models.Permission
	if err := s.c.FindOne(ctx, bson.M{"key": key, "enabled": true}).Decode(&p); err != nil {
		return models.Permission{}, err
	}
	return p, nil
}

// ListByKeys returns the permissions whose key is in keys, indexed by key.
func (s *Store) ListByKeys(ctx context.Context, keys []string) (map[string]models.Permission, error) {
	out := make(map[string]models.Permission, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"key": bson.M{"$in": keys}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var p models.Permission
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out[p.Key] = p
	}
	return out, cur.Err()
}

// EnsureCatalog makes sure every entry exists: list existing, diff, and
// insert the missing ones. Inserts are upserts keyed on the unique key, so two
// callers racing on an empty catalog both converge on one document per key.
// Returns the number of documents this call created and the full catalog by key.
func (s *Store) EnsureCatalog(ctx context.Context, entries []Entry) (int, map[string]models.Permission, error) {
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}

	existing, err := s.ListByKeys(ctx, keys)
	if err != nil {
		return 0, nil, err
	}

	created := 0
	now := time.Now().UTC()
	for _, e := range entries {
		if _, ok := existing[e.Key]; ok {
			continue
		}
		res, err := s.c.UpdateOne(ctx,
			bson.M{"key": e.Key},
			bson.M{"$setOnInsert": bson.M{
				"_id":         primitive.NewObjectID(),
				"key":         e.Key,
				"description": e.Description,
				"enabled":     true,
				"created_at":  now,
				"updated_at":  now,
			}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			// A concurrent upsert on the same key loses with E11000; the
			// document exists either way.
			if wafflemongo.IsDup(err) {
				continue
			}
			return created, nil, err
		}
		if res.UpsertedCount > 0 {
			created++
		}
	}

	all, err := s.ListByKeys(ctx, keys)
	if err != nil {
		return created, nil, err
	}
	return created, all, nil
}

// Count returns the number of permission documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
