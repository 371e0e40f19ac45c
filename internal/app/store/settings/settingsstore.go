// internal/app/store/settings/settingsstore.go
package settingsstore

import (
	"context"
	"time"

	"github.com/dalemusser/agendapro/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Defaults for newly created settings documents.
const (
	DefaultTheme           = "system"
	DefaultWeekStartsOn    = 1
	DefaultReminderMinutes = 15
)

// Store provides access to the user_settings collection.
// Each profile has exactly one settings document (one document per profile_id).
type Store struct {
	c *mongo.Collection
}

// New creates a new settings store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_settings")}
}

// Defaults builds the settings a new profile starts with.
func Defaults(profileID primitive.ObjectID, timezone, language string) models.UserSettings {
	return models.UserSettings{
		ProfileID:           profileID,
		TimeZone:            timezone,
		Language:            language,
		Theme:               DefaultTheme,
		WeekStartsOn:        DefaultWeekStartsOn,
		EmailNotifications:  true,
		PushNotifications:   true,
		DefaultReminderMins: DefaultReminderMinutes,
		Enabled:             true,
	}
}

// EnsureDefaults creates the settings document for a profile if it does not
// exist yet and returns whatever is stored. Existing preferences are never
// overwritten.
func (s *Store) EnsureDefaults(ctx context.Context, def models.UserSettings) (models.UserSettings, error) {
	now := time.Now().UTC()
	filter := bson.M{"profile_id": def.ProfileID}
	_, err := s.c.UpdateOne(ctx, filter,
		bson.M{"$setOnInsert": bson.M{
			"_id":                      primitive.NewObjectID(),
			"profile_id":               def.ProfileID,
			"timezone":                 def.TimeZone,
			"language":                 def.Language,
			"theme":                    def.Theme,
			"week_starts_on":           def.WeekStartsOn,
			"email_notifications":      def.EmailNotifications,
			"push_notifications":       def.PushNotifications,
			"default_reminder_minutes": def.DefaultReminderMins,
			"enabled":                  true,
			"created_at":               now,
			"updated_at":               now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return models.UserSettings{}, err
	}
	return s.Get(ctx, def.ProfileID)
}

// Get returns the settings for a profile.
func (s *Store) Get(ctx context.Context, profileID primitive.ObjectID) (models.UserSettings, error) {
	var out models.UserSettings
	if err := s.c.FindOne(ctx, bson.M{"profile_id": profileID}).Decode(&out); err != nil {
		return models.UserSettings{}, err
	}
	return out, nil
}
