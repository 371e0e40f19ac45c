package push_test

import (
	"errors"
	"strings"
	"testing"

	pushsubstore "github.com/dalemusser/agendapro/internal/app/store/pushsubs"
	"github.com/dalemusser/agendapro/internal/app/system/push"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"github.com/dalemusser/agendapro/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestDispatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, "p@example.com", "Pia", "Push")
	good := fx.CreatePushSubscription(ctx, p.ID, "token-good", models.FCMMarker)
	stale := fx.CreatePushSubscription(ctx, p.ID, "token-stale", models.FCMMarker)
	flaky := fx.CreatePushSubscription(ctx, p.ID, "token-flaky", models.FCMMarker)
	fx.CreatePushSubscription(ctx, p.ID, "https://web.push/endpoint", "BNc-webpush-key")

	sender := &testutil.FakePush{
		Invalid: map[string]bool{"token-stale": true},
		Fail:    map[string]error{"token-flaky": errors.New("unavailable")},
	}
	subs := pushsubstore.New(db)
	d := push.NewDispatcher(subs, sender, zap.NewNop())

	gid := primitive.NewObjectID()
	res, err := d.Dispatch(ctx, models.Notification{
		ID:         primitive.NewObjectID(),
		GroupID:    &gid,
		ProfileID:  p.ID,
		Kind:       models.NotificationGroupInvitation,
		Title:      "Hola",
		Body:       "Te invitaron",
		EntityType: "group_invitation",
		EntityID:   "abc",
		Metadata:   map[string]string{"token": "T", "kind": "ignored"},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if res.Sent != 1 || res.Failed != 2 || res.Skipped != 1 {
		t.Errorf("result = %+v, want sent 1 failed 2 skipped 1", res)
	}
	if len(res.FailedTokens) != 1 || res.FailedTokens[0] != "token-stale" {
		t.Errorf("failedTokens = %v", res.FailedTokens)
	}

	msgs := sender.Messages()
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs))
	}
	data := msgs[0].Data
	if data["kind"] != models.NotificationGroupInvitation || data["groupId"] != gid.Hex() || data["token"] != "T" {
		t.Errorf("message data = %v", data)
	}

	if s, _ := subs.GetByID(ctx, good.ID); s.LastUsedAt == nil || !s.IsActive {
		t.Errorf("good subscription = %+v, want active with last_used_at", s)
	}
	if s, _ := subs.GetByID(ctx, stale.ID); s.IsActive {
		t.Error("stale subscription should be deactivated")
	}
	if s, _ := subs.GetByID(ctx, flaky.ID); !s.IsActive {
		t.Error("transient failure must not deactivate")
	}

	// deactivated tokens are not tried again
	res, err = d.Dispatch(ctx, models.Notification{ID: primitive.NewObjectID(), ProfileID: p.ID, Title: "x"})
	if err != nil {
		t.Fatalf("second Dispatch: %v", err)
	}
	if len(res.FailedTokens) != 0 {
		t.Errorf("second failedTokens = %v", res.FailedTokens)
	}
}

func TestDispatch_DisabledSender(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, "p@example.com", "Pia", "Push")
	fx.CreatePushSubscription(ctx, p.ID, "token-1", models.FCMMarker)

	res, err := push.NewDispatcher(pushsubstore.New(db), nil, zap.NewNop()).
		Dispatch(ctx, models.Notification{ID: primitive.NewObjectID(), ProfileID: p.ID})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if res.Sent != 0 || res.Failed != 0 || res.Skipped != 1 {
		t.Errorf("result = %+v, want one skipped", res)
	}
}

func TestIsInvalidToken(t *testing.T) {
	if !push.IsInvalidToken(push.ErrInvalidToken) {
		t.Error("ErrInvalidToken should be invalid")
	}
	if push.IsInvalidToken(errors.New("timeout")) {
		t.Error("generic errors are not invalid tokens")
	}
}

func TestDispatch_ReservedMetadataKeysAreDropped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, "r@example.com", "Rita", "Reserved")
	a := fx.CreatePushSubscription(ctx, p.ID, "token-a", models.FCMMarker)
	b := fx.CreatePushSubscription(ctx, p.ID, "token-b", models.FCMMarker)

	sender := &testutil.FakePush{RejectReservedData: true}
	subs := pushsubstore.New(db)
	d := push.NewDispatcher(subs, sender, zap.NewNop())

	res, err := d.Dispatch(ctx, models.Notification{
		ID:        primitive.NewObjectID(),
		ProfileID: p.ID,
		Kind:      models.NotificationGroupInvitation,
		Title:     "Hola",
		Metadata: map[string]string{
			"from":             "x",
			"message_type":     "y",
			"google.c.a.e":     "1",
			"gcm.notification": "z",
			"Notification":     "n",
			"eventId":          "e1",
		},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if res.Sent != 2 || res.Failed != 0 || len(res.FailedTokens) != 0 {
		t.Errorf("result = %+v, want both sent", res)
	}

	for _, m := range sender.Messages() {
		for k := range m.Data {
			if push.ReservedDataKey(k) {
				t.Errorf("reserved key %q forwarded", k)
			}
		}
		if m.Data["eventId"] != "e1" {
			t.Errorf("eventId missing from %v", m.Data)
		}
	}
	for _, id := range []primitive.ObjectID{a.ID, b.ID} {
		if s, _ := subs.GetByID(ctx, id); !s.IsActive {
			t.Errorf("subscription %s deactivated", id.Hex())
		}
	}
}

func TestDispatch_OversizedMetadataIsTrimmed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, "big@example.com", "Bea", "Big")
	fx.CreatePushSubscription(ctx, p.ID, "token-big", models.FCMMarker)

	sender := &testutil.FakePush{}
	d := push.NewDispatcher(pushsubstore.New(db), sender, zap.NewNop())

	huge := strings.Repeat("x", 5000)
	res, err := d.Dispatch(ctx, models.Notification{
		ID:        primitive.NewObjectID(),
		ProfileID: p.ID,
		Metadata:  map[string]string{"blob": huge, "small": "ok"},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if res.Sent != 1 {
		t.Fatalf("result = %+v, want sent 1", res)
	}
	data := sender.Messages()[0].Data
	if _, ok := data["blob"]; ok {
		t.Error("oversized value should be dropped")
	}
	if data["small"] != "ok" || !push.ValidData(data) {
		t.Errorf("data = %v", data)
	}
}

func TestReservedDataKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"from", true},
		{"message_type", true},
		{"google.sent_time", true},
		{"GCM.n.e", true},
		{"collapse_key", true},
		{"", true},
		{"groupId", false},
		{"fromDate", false},
	}
	for _, tt := range tests {
		if got := push.ReservedDataKey(tt.key); got != tt.want {
			t.Errorf("ReservedDataKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
