package membershipstore_test

import (
	"errors"
	"testing"

	membershipstore "github.com/dalemusser/agendapro/internal/app/store/memberships"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"github.com/dalemusser/agendapro/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAdd_OneEnabledMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gid, pid := primitive.NewObjectID(), primitive.NewObjectID()
	if _, err := store.Add(ctx, gid, pid, models.MembershipMember); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := store.Add(ctx, gid, pid, models.MembershipOwner); !errors.Is(err, membershipstore.ErrDuplicateMembership) {
		t.Fatalf("second Add err = %v, want ErrDuplicateMembership", err)
	}

	members := db.Collection("group_members")
	if _, err := members.UpdateOne(ctx,
		bson.M{"group_id": gid, "profile_id": pid},
		bson.M{"$set": bson.M{"enabled": false}}); err != nil {
		t.Fatalf("disable membership: %v", err)
	}
	ok, err := store.IsEnabledMember(ctx, gid, pid)
	if err != nil || ok {
		t.Fatalf("IsEnabledMember after disable = %v, %v", ok, err)
	}
	if _, err := store.Add(ctx, gid, pid, models.MembershipMember); err != nil {
		t.Errorf("re-join after disable: %v", err)
	}
	if n, err := members.CountDocuments(ctx, bson.M{"group_id": gid, "enabled": true}); err != nil || n != 1 {
		t.Errorf("enabled memberships = %d, %v; want 1", n, err)
	}
}

func TestAdd_RejectsUnknownRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := membershipstore.New(db).Add(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "GUEST"); err == nil {
		t.Error("expected error for unknown membership role")
	}
}
