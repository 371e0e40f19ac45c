package notifications_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/agendapro/internal/app/features/notifications"
	notificationstore "github.com/dalemusser/agendapro/internal/app/store/notifications"
	pushsubstore "github.com/dalemusser/agendapro/internal/app/store/pushsubs"
	"github.com/dalemusser/agendapro/internal/app/system/push"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"github.com/dalemusser/agendapro/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type env struct {
	notifier *notifications.Notifier
	router   http.Handler
	fx       *testutil.Fixtures
	push     *testutil.FakePush
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fp := &testutil.FakePush{Invalid: map[string]bool{"dead": true}}
	n := notifications.NewNotifier(
		notificationstore.New(db),
		push.NewDispatcher(pushsubstore.New(db), fp, zap.NewNop()),
		nil,
		zap.NewNop(),
	)
	return &env{
		notifier: n,
		router:   notifications.Routes(notifications.NewHandler(n, zap.NewNop())),
		fx:       testutil.NewFixtures(t, db),
		push:     fp,
	}
}

func (e *env) post(t *testing.T, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, testutil.JSONRequest(t, http.MethodPost, "/push", body))
	return rec, testutil.DecodeBody(t, rec)
}

func TestHandlePush_ByID(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := e.fx.CreateProfile(ctx, "p@example.com", "Pia", "Push")
	e.fx.CreatePushSubscription(ctx, p.ID, "live", models.FCMMarker)
	e.fx.CreatePushSubscription(ctx, p.ID, "dead", models.FCMMarker)

	// Notify already fans out once; the handler re-sends on demand.
	note, err := e.notifier.Notify(ctx, models.Notification{
		ProfileID: p.ID,
		Kind:      models.NotificationGroupInvitation,
		Title:     "Hola",
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	rec, body := e.post(t, map[string]any{"notificationId": note.ID.Hex()})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", rec.Code, body)
	}
	if body["ok"] != true || body["sent"] != float64(1) {
		t.Errorf("body = %v", body)
	}
	if tokens, _ := body["failedTokens"].([]any); len(tokens) != 0 {
		t.Errorf("dead token was deactivated by the first fan-out, got %v", tokens)
	}
	if got := len(e.push.Messages()); got != 2 {
		t.Errorf("messages = %d, want 2", got)
	}
}

func TestHandlePush_InlineNotification(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := e.fx.CreateProfile(ctx, "p@example.com", "Pia", "Push")
	e.fx.CreatePushSubscription(ctx, p.ID, "dead", models.FCMMarker)

	rec, body := e.post(t, map[string]any{"notification": map[string]any{
		"id":        primitive.NewObjectID().Hex(),
		"profileId": p.ID.Hex(),
		"kind":      models.NotificationInvitationAccepted,
		"title":     "Listo",
	}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", rec.Code, body)
	}
	tokens, _ := body["failedTokens"].([]any)
	if body["failed"] != float64(1) || len(tokens) != 1 || tokens[0] != "dead" {
		t.Errorf("body = %v", body)
	}
}

func TestHandlePush_Errors(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"empty", map[string]any{}, http.StatusBadRequest},
		{"bad id", map[string]any{"notificationId": "zzz"}, http.StatusBadRequest},
		{"unknown id", map[string]any{"notificationId": primitive.NewObjectID().Hex()}, http.StatusNotFound},
		{"inline missing title", map[string]any{"notification": map[string]any{
			"id": primitive.NewObjectID().Hex(), "profileId": primitive.NewObjectID().Hex(), "kind": "X",
		}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := e.post(t, tt.body)
			if rec.Code != tt.wantStatus || body["ok"] != false {
				t.Errorf("got %d %v, want %d", rec.Code, body, tt.wantStatus)
			}
		})
	}
}
