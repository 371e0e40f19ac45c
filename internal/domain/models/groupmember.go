// internal/domain/models/groupmember.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coarse membership roles carried on GroupMember.
const (
	MembershipOwner  = "OWNER"
	MembershipMember = "MEMBER"
)

// GroupMember is the join between a profile and a group.
// At most one enabled document per (group_id, profile_id); the store enforces
// this with a partial unique index.
type GroupMember struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID        primitive.ObjectID `bson:"group_id" json:"groupId"`
	ProfileID      primitive.ObjectID `bson:"profile_id" json:"profileId"`
	MembershipRole string             `bson:"membership_role" json:"membershipRole"` // OWNER | MEMBER
	Enabled        bool               `bson:"enabled" json:"enabled"`
	JoinedAt       time.Time          `bson:"joined_at" json:"joinedAt"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
