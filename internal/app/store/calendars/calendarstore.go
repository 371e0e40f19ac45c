// internal/app/store/calendars/calendarstore.go
package calendarstore

import (
	"context"
	"time"

	"github.com/dalemusser/agendapro/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Defaults applied to calendars created by the provisioning workflows.
const (
	DefaultColor = "#3B82F6"
	DefaultIcon  = "calendar"
	TeamColor    = "#10B981"
	TeamIcon     = "users"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("calendars")}
}

// Create inserts an enabled calendar, filling in color, icon and visibility
// when empty.
func (s *Store) Create(ctx context.Context, cal models.Calendar) (models.Calendar, error) {
	now := time.Now().UTC()
	cal.ID = primitive.NewObjectID()
	if cal.Color == "" {
		cal.Color = DefaultColor
	}
	if cal.Icon == "" {
		cal.Icon = DefaultIcon
	}
	if cal.Visibility == "" {
		cal.Visibility = models.VisibilityPrivate
	}
	cal.Enabled = true
	cal.CreatedAt = now
	cal.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, cal); err != nil {
		return models.Calendar{}, err
	}
	return cal, nil
}
