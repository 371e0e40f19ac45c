// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification kinds produced by the provisioning workflows.
const (
	NotificationGroupInvitation    = "GROUP_INVITATION"
	NotificationInvitationAccepted = "INVITATION_ACCEPTED"
	NotificationInvitationRejected = "INVITATION_REJECTED"
)

// Notification is an in-app message addressed to one profile.
type Notification struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	GroupID    *primitive.ObjectID `bson:"group_id,omitempty" json:"groupId,omitempty"`
	ProfileID  primitive.ObjectID  `bson:"profile_id" json:"profileId"`
	Kind       string              `bson:"kind" json:"kind"`
	Title      string              `bson:"title" json:"title"`
	Body       string              `bson:"body" json:"body"`
	EntityType string              `bson:"entity_type" json:"entityType"`
	EntityID   string              `bson:"entity_id" json:"entityId"`
	Metadata   map[string]string   `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Read       bool                `bson:"read" json:"read"`
	Enabled    bool                `bson:"enabled" json:"enabled"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// FCMMarker is stored in PushSubscription.P256dh for endpoints registered
// through Firebase Cloud Messaging rather than Web Push.
const FCMMarker = "fcm"

// PushSubscription is a registered device endpoint for one profile.
type PushSubscription struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProfileID  primitive.ObjectID `bson:"profile_id" json:"profileId"`
	Endpoint   string             `bson:"endpoint" json:"endpoint"`
	P256dh     string             `bson:"p256dh" json:"p256dh"`
	Auth       string             `bson:"auth,omitempty" json:"auth,omitempty"`
	IsActive   bool               `bson:"is_active" json:"isActive"`
	Enabled    bool               `bson:"enabled" json:"enabled"`
	LastUsedAt *time.Time         `bson:"last_used_at,omitempty" json:"lastUsedAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsFCM reports whether the endpoint field holds an FCM registration token.
func (s PushSubscription) IsFCM() bool {
	return s.P256dh == FCMMarker
}
