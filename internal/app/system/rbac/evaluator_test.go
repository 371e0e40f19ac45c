package rbac_test

import (
	"testing"

	"github.com/dalemusser/agendapro/internal/app/features/groups"
	membershipstore "github.com/dalemusser/agendapro/internal/app/store/memberships"
	userrolestore "github.com/dalemusser/agendapro/internal/app/store/userroles"
	"github.com/dalemusser/agendapro/internal/app/system/rbac"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"github.com/dalemusser/agendapro/internal/testutil"
	"go.uber.org/zap"
)

func TestEvaluator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateProfile(ctx, "owner@example.com", "Olga", "Owner")
	res, err := groups.NewProvisioner(db, nil, zap.NewNop(), "UTC").
		CreateWithDefaults(ctx, groups.Input{OwnerProfileID: owner.ID, Name: "Familia"})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	gid := res.Group.ID
	roles := map[string]models.Role{}
	for _, r := range res.Roles {
		roles[r.Name] = r
	}

	viewer := fx.CreateProfile(ctx, "viewer@example.com", "Vera", "Viewer")
	outsider := fx.CreateProfile(ctx, "out@example.com", "Otto", "Out")
	if _, err := membershipstore.New(db).Add(ctx, gid, viewer.ID, models.MembershipMember); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if _, err := userrolestore.New(db).Assign(ctx, gid, viewer.ID, roles[rbac.RoleViewer].ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	ev := rbac.NewEvaluator(db)
	tests := []struct {
		name    string
		profile models.Profile
		perm    string
		want    bool
	}{
		{"owner via admin role", owner, rbac.PermMembersInvite, true},
		{"viewer can view events", viewer, rbac.PermEventsView, true},
		{"viewer cannot invite", viewer, rbac.PermMembersInvite, false},
		{"unknown permission", viewer, "nope.nothing", false},
		{"outsider", outsider, rbac.PermEventsView, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.HasPermission(ctx, gid, tt.profile.ID, tt.perm)
			if err != nil {
				t.Fatalf("HasPermission: %v", err)
			}
			if got != tt.want {
				t.Errorf("HasPermission = %v, want %v", got, tt.want)
			}
		})
	}

	isOwner, err := ev.IsOwnerOrAdmin(ctx, gid, owner.ID)
	if err != nil || !isOwner {
		t.Errorf("IsOwnerOrAdmin(owner) = %v, %v", isOwner, err)
	}
	isOwner, err = ev.IsOwnerOrAdmin(ctx, gid, viewer.ID)
	if err != nil || isOwner {
		t.Errorf("IsOwnerOrAdmin(viewer) = %v, %v", isOwner, err)
	}

	// owners pass even for keys no role grants
	can, err := ev.Can(ctx, gid, owner.ID, "nope.nothing")
	if err != nil || !can {
		t.Errorf("Can(owner) = %v, %v", can, err)
	}
	can, err = ev.Can(ctx, gid, viewer.ID, rbac.PermMembersInvite)
	if err != nil || can {
		t.Errorf("Can(viewer, invite) = %v, %v", can, err)
	}
}
