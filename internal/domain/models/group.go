// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a tenant/workspace that owns members, roles and calendars.
//
// NOTE:
//   - Membership lives in the group_members collection, not on the group.
//   - Enabled is a soft flag; disabled groups are hidden and refuse invitations.
type Group struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Name           string             `bson:"name" json:"name"`
	NameCI         string             `bson:"name_ci" json:"-"`
	Description    string             `bson:"description" json:"description"`
	LogoFileID     string             `bson:"logo_file_id,omitempty" json:"logoFileId,omitempty"`
	OwnerProfileID primitive.ObjectID `bson:"owner_profile_id" json:"ownerProfileId"`
	TimeZone       string             `bson:"timezone" json:"timezone"`
	Enabled        bool               `bson:"enabled" json:"enabled"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
