// internal/domain/models/calendar.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Calendar visibility values.
const (
	VisibilityPrivate = "PRIVATE"
	VisibilityGroup   = "GROUP"
)

// Calendar belongs to a group (or to a profile's personal scope when GroupID is nil)
// and is owned by one profile.
type Calendar struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	GroupID        *primitive.ObjectID `bson:"group_id,omitempty" json:"groupId,omitempty"`
	OwnerProfileID primitive.ObjectID  `bson:"owner_profile_id" json:"ownerProfileId"`
	Name           string              `bson:"name" json:"name"`
	Color          string              `bson:"color" json:"color"`
	Icon           string              `bson:"icon" json:"icon"`
	Visibility     string              `bson:"visibility" json:"visibility"`
	IsDefault      bool                `bson:"is_default" json:"isDefault"`
	Enabled        bool                `bson:"enabled" json:"enabled"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
