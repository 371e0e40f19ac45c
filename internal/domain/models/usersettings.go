// internal/domain/models/usersettings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserSettings holds per-profile preferences. One document per profile.
type UserSettings struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProfileID           primitive.ObjectID `bson:"profile_id" json:"profileId"`
	TimeZone            string             `bson:"timezone" json:"timezone"`
	Language            string             `bson:"language" json:"language"`
	Theme               string             `bson:"theme" json:"theme"`
	WeekStartsOn        int                `bson:"week_starts_on" json:"weekStartsOn"` // 0=Sunday, 1=Monday
	EmailNotifications  bool               `bson:"email_notifications" json:"emailNotifications"`
	PushNotifications   bool               `bson:"push_notifications" json:"pushNotifications"`
	DefaultReminderMins int                `bson:"default_reminder_minutes" json:"defaultReminderMinutes"`
	Enabled             bool               `bson:"enabled" json:"enabled"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
