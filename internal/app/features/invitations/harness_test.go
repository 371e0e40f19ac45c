package invitations_test

import (
	"context"
	"testing"

	"github.com/dalemusser/agendapro/internal/app/features/groups"
	"github.com/dalemusser/agendapro/internal/app/features/invitations"
	"github.com/dalemusser/agendapro/internal/app/features/notifications"
	auditstore "github.com/dalemusser/agendapro/internal/app/store/audit"
	notificationstore "github.com/dalemusser/agendapro/internal/app/store/notifications"
	pushsubstore "github.com/dalemusser/agendapro/internal/app/store/pushsubs"
	"github.com/dalemusser/agendapro/internal/app/system/auditlog"
	"github.com/dalemusser/agendapro/internal/app/system/push"
	"github.com/dalemusser/agendapro/internal/app/system/rbac"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"github.com/dalemusser/agendapro/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// harness is a provisioned group with an owner and the collaborators the
// invitation workflows need, backed by fakes.
type harness struct {
	svc    *invitations.Service
	fx     *testutil.Fixtures
	mail   *testutil.FakeMailer
	push   *testutil.FakePush
	owner  models.Profile
	group  models.Group
	roles  map[string]models.Role
	ctx    context.Context
	cancel context.CancelFunc
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)

	log := zap.NewNop()
	audit := auditlog.New(auditstore.New(db), log, auditlog.ModeDB)
	fp := &testutil.FakePush{}
	dispatcher := push.NewDispatcher(pushsubstore.New(db), fp, log)
	notifier := notifications.NewNotifier(notificationstore.New(db), dispatcher, audit, log)
	fm := &testutil.FakeMailer{}

	svc := invitations.NewService(db, notifier, fm, audit, log, invitations.Config{
		BaseURL:         "https://agenda.example.com",
		ExpiryDays:      7,
		BatchSize:       50,
		DefaultTimezone: "UTC",
		DefaultLanguage: "es",
	})

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateProfile(ctx, "owner@example.com", "Olga", "Owner")
	prov := groups.NewProvisioner(db, audit, log, "America/Mexico_City")
	res, err := prov.CreateWithDefaults(ctx, groups.Input{OwnerProfileID: owner.ID, Name: "Familia"})
	if err != nil {
		t.Fatalf("provision group: %v", err)
	}
	roles := map[string]models.Role{}
	for _, r := range res.Roles {
		roles[r.Name] = r
	}

	return &harness{
		svc: svc, fx: fx, mail: fm, push: fp,
		owner: owner, group: res.Group, roles: roles,
		ctx: ctx, cancel: cancel,
	}
}

func (h *harness) invite(t *testing.T, email string, mutate func(*invitations.InviteInput)) invitations.InviteResult {
	t.Helper()
	in := invitations.InviteInput{
		GroupID:            h.group.ID,
		InvitedByProfileID: h.owner.ID,
		InvitedEmail:       email,
		InvitedRoleID:      h.roles[rbac.RoleEditor].ID,
	}
	if mutate != nil {
		mutate(&in)
	}
	res, err := h.svc.Invite(h.ctx, in)
	if err != nil {
		t.Fatalf("Invite(%s): %v", email, err)
	}
	return res
}

func (h *harness) invitation(t *testing.T, id primitive.ObjectID) models.GroupInvitation {
	t.Helper()
	inv, err := h.svc.Invites.GetByID(h.ctx, id)
	if err != nil {
		t.Fatalf("load invitation: %v", err)
	}
	return inv
}

func (h *harness) memberCount(profileID primitive.ObjectID) int64 {
	return h.fx.Count(h.ctx, "group_members", bson.M{"group_id": h.group.ID, "profile_id": profileID, "enabled": true})
}

func (h *harness) notificationCount(profileID primitive.ObjectID, kind string) int64 {
	return h.fx.Count(h.ctx, "notifications", bson.M{"profile_id": profileID, "kind": kind})
}

func intPtr(v int) *int { return &v }
