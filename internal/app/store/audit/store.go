// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Actions recorded by the provisioning workflows.
const (
	ActionUserCreated         = "user.created"
	ActionGroupCreated        = "group.created"
	ActionGroupCreateFailed   = "group.create_failed"
	ActionInvitationCreated   = "invitation.created"
	ActionInvitationAccepted  = "invitation.accepted"
	ActionInvitationRejected  = "invitation.rejected"
	ActionInvitationCancelled = "invitation.cancelled"
	ActionInvitationExpired   = "invitation.expired"
	ActionInvitationRefused   = "invitation.accept_refused"
	ActionPushDispatched      = "notification.push_dispatched"
)

// Entity types referenced by audit entries.
const (
	EntityUser         = "user"
	EntityGroup        = "group"
	EntityInvitation   = "group_invitation"
	EntityNotification = "notification"
)

// Entry is one append-only audit record. Details is the JSON-serialized
// payload so arbitrary shapes can be stored without schema churn.
type Entry struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty"`
	GroupID    *primitive.ObjectID `bson:"group_id,omitempty"`
	ProfileID  *primitive.ObjectID `bson:"profile_id,omitempty"`
	Action     string              `bson:"action"`
	EntityType string              `bson:"entity_type"`
	EntityID   string              `bson:"entity_id"`
	Details    string              `bson:"details,omitempty"`
	CreatedAt  time.Time           `bson:"created_at"`
}

// QueryFilter defines filters for querying audit entries.
type QueryFilter struct {
	GroupID    *primitive.ObjectID
	ProfileID  *primitive.ObjectID
	Action     string
	EntityType string
	EntityID   string
	Limit      int64
}

// Store manages audit records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_logs")}
}

// Log appends an entry.
func (s *Store) Log(ctx context.Context, e Entry) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// Query returns entries matching filter, newest first.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]Entry, error) {
	q := bson.M{}
	if f.GroupID != nil {
		q["group_id"] = *f.GroupID
	}
	if f.ProfileID != nil {
		q["profile_id"] = *f.ProfileID
	}
	if f.Action != "" {
		q["action"] = f.Action
	}
	if f.EntityType != "" {
		q["entity_type"] = f.EntityType
	}
	if f.EntityID != "" {
		q["entity_id"] = f.EntityID
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	cur, err := s.c.Find(ctx, q, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Entry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
