package invitationstore_test

import (
	"errors"
	"testing"
	"time"

	invitationstore "github.com/dalemusser/agendapro/internal/app/store/invitations"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"github.com/dalemusser/agendapro/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newInvitation(groupID primitive.ObjectID, email, token string, expires time.Time) models.GroupInvitation {
	return models.GroupInvitation{
		GroupID:            groupID,
		InvitedEmail:       email,
		InvitedByProfileID: primitive.NewObjectID(),
		InvitedRoleID:      primitive.NewObjectID(),
		Token:              token,
		ExpiresAt:          expires,
	}
}

func TestCreate_Uniqueness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gid := primitive.NewObjectID()
	exp := time.Now().Add(time.Hour)
	first, err := store.Create(ctx, newInvitation(gid, "A@Example.com", "tok00000000000000000000000000001", exp))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Status != models.InvitationPending || !first.Enabled || first.InvitedEmailCI != "a@example.com" {
		t.Errorf("created = %+v", first)
	}

	_, err = store.Create(ctx, newInvitation(gid, "a@example.com", "tok00000000000000000000000000002", exp))
	if !errors.Is(err, invitationstore.ErrDuplicatePending) {
		t.Errorf("second pending err = %v, want ErrDuplicatePending", err)
	}

	_, err = store.Create(ctx, newInvitation(primitive.NewObjectID(), "b@example.com", first.Token, exp))
	if !errors.Is(err, invitationstore.ErrDuplicateToken) {
		t.Errorf("token reuse err = %v, want ErrDuplicateToken", err)
	}

	// a terminal invitation frees the (group, email) slot
	if ok, err := store.Transition(ctx, first.ID, models.InvitationRejected, nil); err != nil || !ok {
		t.Fatalf("Transition = %v, %v", ok, err)
	}
	if _, err := store.Create(ctx, newInvitation(gid, "a@example.com", "tok00000000000000000000000000003", exp)); err != nil {
		t.Errorf("re-invite after reject: %v", err)
	}
}

func TestTransition_OnlyFromPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inv, err := store.Create(ctx, newInvitation(primitive.NewObjectID(), "a@example.com", "tok00000000000000000000000000001", time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	now := time.Now().UTC()
	ok, err := store.Transition(ctx, inv.ID, models.InvitationAccepted, bson.M{"responded_at": now})
	if err != nil || !ok {
		t.Fatalf("first Transition = %v, %v", ok, err)
	}
	ok, err = store.Transition(ctx, inv.ID, models.InvitationExpired, nil)
	if err != nil || ok {
		t.Fatalf("second Transition = %v, %v; want no-op", ok, err)
	}
	got, err := store.GetByID(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.InvitationAccepted || got.RespondedAt == nil {
		t.Errorf("stored = %s responded=%v", got.Status, got.RespondedAt)
	}
}

func TestListExpiredPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	gid := primitive.NewObjectID()
	for i, off := range []time.Duration{-3 * time.Hour, -time.Hour, time.Hour} {
		email := string(rune('a'+i)) + "@example.com"
		tok := "tok0000000000000000000000000000" + string(rune('a'+i))
		if _, err := store.Create(ctx, newInvitation(gid, email, tok, now.Add(off))); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	due, err := store.ListExpiredPending(ctx, now, 10)
	if err != nil {
		t.Fatalf("ListExpiredPending: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("due = %d, want 2", len(due))
	}
	if !due[0].ExpiresAt.Before(due[1].ExpiresAt) {
		t.Error("results should be oldest first")
	}

	limited, err := store.ListExpiredPending(ctx, now, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("limit 1 = %d, %v", len(limited), err)
	}
}

func TestCreate_DisabledPendingDoesNotBlock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := invitationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gid := primitive.NewObjectID()
	exp := time.Now().Add(time.Hour)
	disabled := newInvitation(gid, "c@example.com", "tok00000000000000000000000000004", exp)
	disabled.Status = models.InvitationPending
	disabled.Enabled = false
	fx.CreateInvitation(ctx, disabled)

	if has, err := store.HasPending(ctx, gid, "C@example.com"); err != nil || has {
		t.Fatalf("HasPending = %v, %v; want false for a disabled invitation", has, err)
	}
	if _, err := store.Create(ctx, newInvitation(gid, "c@example.com", "tok00000000000000000000000000005", exp)); err != nil {
		t.Errorf("Create next to a disabled pending invitation: %v", err)
	}
	if has, err := store.HasPending(ctx, gid, "c@example.com"); err != nil || !has {
		t.Errorf("HasPending = %v, %v; want true", has, err)
	}
}
