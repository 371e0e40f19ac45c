// internal/domain/models/invitation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invitation statuses. PENDING is the only actionable state; every other
// status is terminal.
const (
	InvitationPending   = "PENDING"
	InvitationAccepted  = "ACCEPTED"
	InvitationRejected  = "REJECTED"
	InvitationCancelled = "CANCELLED"
	InvitationExpired   = "EXPIRED"
)

// GroupInvitation is a token-bearing offer for an email address to join a group.
type GroupInvitation struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	GroupID            primitive.ObjectID  `bson:"group_id" json:"groupId"`
	InvitedEmail       string              `bson:"invited_email" json:"invitedEmail"`
	InvitedEmailCI     string              `bson:"invited_email_ci" json:"-"`
	InvitedProfileID   *primitive.ObjectID `bson:"invited_profile_id,omitempty" json:"invitedProfileId,omitempty"`
	InvitedByProfileID primitive.ObjectID  `bson:"invited_by_profile_id" json:"invitedByProfileId"`
	InvitedRoleID      primitive.ObjectID  `bson:"invited_role_id" json:"invitedRoleId"`
	MembershipRole     string              `bson:"membership_role" json:"membershipRole"`
	Token              string              `bson:"token" json:"token"`
	Status             string              `bson:"status" json:"status"`
	Message            string              `bson:"message,omitempty" json:"message,omitempty"`
	ExpiresAt          time.Time           `bson:"expires_at" json:"expiresAt"`
	RespondedAt        *time.Time          `bson:"responded_at,omitempty" json:"respondedAt,omitempty"`
	Enabled            bool                `bson:"enabled" json:"enabled"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsTerminal reports whether the invitation has left PENDING.
func (inv GroupInvitation) IsTerminal() bool {
	return inv.Status != InvitationPending
}
