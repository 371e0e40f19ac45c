package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/agendapro/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data directly in the
// database, bypassing the workflows under test.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateProfile inserts an enabled profile with the given email.
func (f *Fixtures) CreateProfile(ctx context.Context, email, first, last string) models.Profile {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Profile{
		ID:            primitive.NewObjectID(),
		UserID:        primitive.NewObjectID(),
		Email:         email,
		EmailCI:       text.Fold(email),
		FirstName:     first,
		LastName:      last,
		EmailVerified: true,
		Enabled:       true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("profiles").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}

// CreateDisabledProfile inserts a profile with enabled=false.
func (f *Fixtures) CreateDisabledProfile(ctx context.Context, email string) models.Profile {
	f.t.Helper()

	p := f.CreateProfile(ctx, email, "Disabled", "Profile")
	if _, err := f.db.Collection("profiles").UpdateByID(ctx, p.ID,
		map[string]any{"$set": map[string]any{"enabled": false}}); err != nil {
		f.t.Fatalf("failed to disable test profile: %v", err)
	}
	p.Enabled = false
	return p
}

// CreateBareGroup inserts a group without members, roles or calendars.
func (f *Fixtures) CreateBareGroup(ctx context.Context, name string, owner primitive.ObjectID, enabled bool) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:             primitive.NewObjectID(),
		Name:           name,
		NameCI:         text.Fold(name),
		OwnerProfileID: owner,
		TimeZone:       "America/Mexico_City",
		Enabled:        enabled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// CreatePushSubscription inserts an active subscription. Pass
// models.FCMMarker as p256dh for an FCM device token.
func (f *Fixtures) CreatePushSubscription(ctx context.Context, profileID primitive.ObjectID, endpoint, p256dh string) models.PushSubscription {
	f.t.Helper()

	now := time.Now().UTC()
	s := models.PushSubscription{
		ID:        primitive.NewObjectID(),
		ProfileID: profileID,
		Endpoint:  endpoint,
		P256dh:    p256dh,
		Auth:      "auth",
		IsActive:  true,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("push_subscriptions").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to create test push subscription: %v", err)
	}
	return s
}

// CreateInvitation inserts an invitation as-is, for states the workflows
// never produce directly (already expired, disabled, terminal).
func (f *Fixtures) CreateInvitation(ctx context.Context, inv models.GroupInvitation) models.GroupInvitation {
	f.t.Helper()

	now := time.Now().UTC()
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	if inv.InvitedEmailCI == "" {
		inv.InvitedEmailCI = text.Fold(inv.InvitedEmail)
	}
	if inv.MembershipRole == "" {
		inv.MembershipRole = models.MembershipMember
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
	if _, err := f.db.Collection("group_invitations").InsertOne(ctx, inv); err != nil {
		f.t.Fatalf("failed to create test invitation: %v", err)
	}
	return inv
}

// Count returns the number of documents in coll matching filter.
func (f *Fixtures) Count(ctx context.Context, coll string, filter any) int64 {
	f.t.Helper()

	n, err := f.db.Collection(coll).CountDocuments(ctx, filter)
	if err != nil {
		f.t.Fatalf("count %s: %v", coll, err)
	}
	return n
}

// RejectWrites installs a validator on coll that no document satisfies, so
// every insert and upsert into it fails. Used to stop a workflow midway.
func (f *Fixtures) RejectWrites(ctx context.Context, coll string) {
	f.t.Helper()

	// the collection usually exists already because of its indexes
	_ = f.db.CreateCollection(ctx, coll)
	err := f.db.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: coll},
		{Key: "validator", Value: bson.M{"$jsonSchema": bson.M{
			"required": bson.A{"never_written"},
		}}},
		{Key: "validationLevel", Value: "strict"},
		{Key: "validationAction", Value: "error"},
	}).Err()
	if err != nil {
		f.t.Fatalf("reject writes on %s: %v", coll, err)
	}
}
