// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/agendapro/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_members")}
}

var errBadRole = errors.New(`membership role must be "OWNER" or "MEMBER"`)

// ErrDuplicateMembership is returned when the profile already holds an
// enabled membership in the group. The partial unique index on
// (group_id, profile_id) where enabled=true closes the check-then-insert race.
var ErrDuplicateMembership = errors.New("profile is already a member of this group")

// Add creates an enabled membership.
func (s *Store) Add(ctx context.Context, groupID, profileID primitive.ObjectID, role string) (models.GroupMember, error) {
	if role != models.MembershipOwner && role != models.MembershipMember {
		return models.GroupMember{}, errBadRole
	}
	now := time.Now().UTC()
	m := models.GroupMember{
		ID:             primitive.NewObjectID(),
		GroupID:        groupID,
		ProfileID:      profileID,
		MembershipRole: role,
		Enabled:        true,
		JoinedAt:       now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.GroupMember{}, ErrDuplicateMembership
		}
		return models.GroupMember{}, err
	}
	return m, nil
}

// FindEnabled returns the enabled membership for (groupID, profileID) or
// mongo.ErrNoDocuments.
func (s *Store) FindEnabled(ctx context.Context, groupID, profileID primitive.ObjectID) (models.GroupMember, error) {
	var m models.GroupMember
	err := s.c.FindOne(ctx, bson.M{
		"group_id":   groupID,
		"profile_id": profileID,
		"enabled":    true,
	}).Decode(&m)
	if err != nil {
		return models.GroupMember{}, err
	}
	return m, nil
}

// IsEnabledMember checks if an enabled membership exists for the group and profile.
func (s *Store) IsEnabledMember(ctx context.Context, groupID, profileID primitive.ObjectID) (bool, error) {
	_, err := s.FindEnabled(ctx, groupID, profileID)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
