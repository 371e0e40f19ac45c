// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/agendapro/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrDuplicateProfile = errors.New("a profile with this email already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

// Create inserts an enabled profile for an identity.
func (s *Store) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.Email = strings.TrimSpace(p.Email)
	p.EmailCI = text.Fold(p.Email)
	p.Enabled = true
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Profile{}, ErrDuplicateProfile
		}
		return models.Profile{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// FindByEmail looks up an enabled profile by case-folded email.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.Profile, error) {
	var p models.Profile
	err := s.c.FindOne(ctx, bson.M{
		"email_ci": text.Fold(strings.TrimSpace(email)),
		"enabled":  true,
	}).Decode(&p)
	if err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// SplitName turns "Ada Lovelace King" into ("Ada", "Lovelace King").
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
