package invitations_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/agendapro/internal/app/features/invitations"
	membershipstore "github.com/dalemusser/agendapro/internal/app/store/memberships"
	"github.com/dalemusser/agendapro/internal/app/system/apierr"
	"github.com/dalemusser/agendapro/internal/app/system/rbac"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

func statusDetail(t *testing.T, err error) string {
	t.Helper()
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("error %v is not an apierr.Error", err)
	}
	s, _ := ae.Details["status"].(string)
	return s
}

func TestRespond_AcceptProvisionsMember(t *testing.T) {
	h := newHarness(t)
	guest := h.fx.CreateProfile(h.ctx, "Guest@Example.com", "Gina", "Guest")
	created := h.invite(t, "guest@example.com", nil).Invitation

	res, err := h.svc.Respond(h.ctx, created.Token, guest.ID, "")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if res.Action != invitations.ActionAccept {
		t.Errorf("action = %q, want accept", res.Action)
	}

	if res.Member == nil || res.Member.MembershipRole != models.MembershipMember || !res.Member.Enabled {
		t.Errorf("member = %+v", res.Member)
	}
	if h.memberCount(guest.ID) != 1 {
		t.Error("guest should be an enabled member")
	}
	if res.UserRole == nil || res.UserRole.RoleID != h.roles[rbac.RoleEditor].ID {
		t.Errorf("user role = %+v, want Editor", res.UserRole)
	}
	if res.Calendar == nil || res.Calendar.Name != invitations.PersonalCalendarName ||
		res.Calendar.Visibility != models.VisibilityPrivate || !res.Calendar.IsDefault {
		t.Errorf("calendar = %+v", res.Calendar)
	}
	if res.Calendar != nil && (res.Calendar.GroupID == nil || *res.Calendar.GroupID != h.group.ID) {
		t.Error("calendar should belong to the group")
	}
	if res.Settings == nil || res.Settings.TimeZone != "America/Mexico_City" || res.Settings.Language != "es" {
		t.Errorf("settings = %+v", res.Settings)
	}

	stored := h.invitation(t, created.ID)
	if stored.Status != models.InvitationAccepted {
		t.Errorf("status = %q, want ACCEPTED", stored.Status)
	}
	if stored.RespondedAt == nil {
		t.Error("responded_at should be set")
	}
	if stored.InvitedProfileID == nil || *stored.InvitedProfileID != guest.ID {
		t.Error("invited_profile_id should be the accepting profile")
	}
	if n := h.notificationCount(h.owner.ID, models.NotificationInvitationAccepted); n != 1 {
		t.Errorf("owner accepted notifications = %d, want 1", n)
	}

	_, err = h.svc.Respond(h.ctx, created.Token, guest.ID, invitations.ActionAccept)
	if apierr.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("second accept err = %v, want 400", err)
	}
	if s := statusDetail(t, err); s != models.InvitationAccepted {
		t.Errorf("status detail = %q, want ACCEPTED", s)
	}
	if h.memberCount(guest.ID) != 1 {
		t.Error("second accept must not add a membership")
	}
}

func TestRespond_OwnerMembershipGetsAdmin(t *testing.T) {
	h := newHarness(t)
	guest := h.fx.CreateProfile(h.ctx, "co@example.com", "Cora", "Owner")
	created := h.invite(t, "co@example.com", func(in *invitations.InviteInput) {
		in.MembershipRole = models.MembershipOwner
	}).Invitation

	// a disabled invited role falls back by membership role
	if _, err := h.fx.DB().Collection("roles").UpdateByID(h.ctx, h.roles[rbac.RoleEditor].ID,
		bson.M{"$set": bson.M{"enabled": false}}); err != nil {
		t.Fatalf("disable role: %v", err)
	}

	res, err := h.svc.Respond(h.ctx, created.Token, guest.ID, invitations.ActionAccept)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if res.Member.MembershipRole != models.MembershipOwner {
		t.Errorf("membership role = %q, want OWNER", res.Member.MembershipRole)
	}
	if res.UserRole == nil || res.UserRole.RoleID != h.roles[rbac.RoleAdmin].ID {
		t.Errorf("user role = %+v, want Admin", res.UserRole)
	}
}

func TestRespond_EmailMismatch(t *testing.T) {
	h := newHarness(t)
	intruder := h.fx.CreateProfile(h.ctx, "intruder@example.com", "Ivan", "Intruder")
	created := h.invite(t, "guest@example.com", nil).Invitation

	_, err := h.svc.Respond(h.ctx, created.Token, intruder.ID, invitations.ActionAccept)
	if apierr.StatusOf(err) != http.StatusForbidden {
		t.Fatalf("err = %v, want 403", err)
	}
	if h.memberCount(intruder.ID) != 0 {
		t.Error("no membership should be created")
	}
	if got := h.invitation(t, created.ID).Status; got != models.InvitationPending {
		t.Errorf("status = %q, want PENDING", got)
	}
}

func TestRespond_ExpiredInvitation(t *testing.T) {
	h := newHarness(t)
	guest := h.fx.CreateProfile(h.ctx, "guest@example.com", "Gina", "Guest")
	created := h.invite(t, "guest@example.com", func(in *invitations.InviteInput) {
		in.ExpiryDays = intPtr(0)
	}).Invitation

	h.svc.SetClock(func() time.Time { return time.Now().UTC().Add(time.Hour) })

	_, err := h.svc.Respond(h.ctx, created.Token, guest.ID, invitations.ActionAccept)
	if apierr.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
	if s := statusDetail(t, err); s != models.InvitationExpired {
		t.Errorf("status detail = %q, want EXPIRED", s)
	}
	if got := h.invitation(t, created.ID).Status; got != models.InvitationExpired {
		t.Errorf("stored status = %q, want EXPIRED", got)
	}
	if h.memberCount(guest.ID) != 0 {
		t.Error("expired invitation must not create a membership")
	}
}

func TestRespond_RejectAndCancel(t *testing.T) {
	tests := []struct {
		action      string
		wantStatus  string
		wantNotices int64
	}{
		{invitations.ActionReject, models.InvitationRejected, 1},
		{invitations.ActionCancel, models.InvitationCancelled, 0},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			h := newHarness(t)
			guest := h.fx.CreateProfile(h.ctx, "guest@example.com", "Gina", "Guest")
			created := h.invite(t, "guest@example.com", nil).Invitation

			res, err := h.svc.Respond(h.ctx, created.Token, guest.ID, tt.action)
			if err != nil {
				t.Fatalf("Respond: %v", err)
			}
			if res.Member != nil || res.Calendar != nil {
				t.Error("declining must not provision anything")
			}
			stored := h.invitation(t, created.ID)
			if stored.Status != tt.wantStatus || stored.RespondedAt == nil {
				t.Errorf("stored = %s responded=%v, want %s", stored.Status, stored.RespondedAt, tt.wantStatus)
			}
			if h.memberCount(guest.ID) != 0 {
				t.Error("no membership expected")
			}
			if n := h.notificationCount(h.owner.ID, models.NotificationInvitationRejected); n != tt.wantNotices {
				t.Errorf("rejected notifications = %d, want %d", n, tt.wantNotices)
			}
		})
	}
}

func TestRespond_AlreadyMemberClosesInvitation(t *testing.T) {
	h := newHarness(t)
	guest := h.fx.CreateProfile(h.ctx, "guest@example.com", "Gina", "Guest")
	created := h.invite(t, "guest@example.com", nil).Invitation

	if _, err := membershipstore.New(h.fx.DB()).Add(h.ctx, h.group.ID, guest.ID, models.MembershipMember); err != nil {
		t.Fatalf("add member: %v", err)
	}

	_, err := h.svc.Respond(h.ctx, created.Token, guest.ID, invitations.ActionAccept)
	if apierr.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
	if got := h.invitation(t, created.ID).Status; got != models.InvitationAccepted {
		t.Errorf("status = %q, want ACCEPTED", got)
	}
	if h.memberCount(guest.ID) != 1 {
		t.Error("membership count should stay at 1")
	}
}

func TestRespond_Rejections(t *testing.T) {
	h := newHarness(t)
	guest := h.fx.CreateProfile(h.ctx, "guest@example.com", "Gina", "Guest")
	created := h.invite(t, "guest@example.com", nil).Invitation

	disabled := h.fx.CreateInvitation(h.ctx, models.GroupInvitation{
		GroupID:            h.group.ID,
		InvitedEmail:       "guest@example.com",
		InvitedByProfileID: h.owner.ID,
		InvitedRoleID:      h.roles[rbac.RoleViewer].ID,
		Token:              "DisabledToken000000000000000000A",
		Status:             models.InvitationCancelled,
		ExpiresAt:          time.Now().Add(time.Hour),
		Enabled:            false,
	})

	tests := []struct {
		name       string
		token      string
		action     string
		wantStatus int
	}{
		{"bad action", created.Token, "maybe", http.StatusBadRequest},
		{"unknown token", "NoSuchToken000000000000000000000", "", http.StatusNotFound},
		{"disabled invitation", disabled.Token, "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Respond(h.ctx, tt.token, guest.ID, tt.action)
			if got := apierr.StatusOf(err); err == nil || got != tt.wantStatus {
				t.Errorf("err = %v (status %d), want %d", err, got, tt.wantStatus)
			}
		})
	}
}

func TestRespond_AcceptCalendarFailureReportsPartialMembership(t *testing.T) {
	h := newHarness(t)
	guest := h.fx.CreateProfile(h.ctx, "guest@example.com", "Gina", "Guest")
	created := h.invite(t, "guest@example.com", nil).Invitation
	h.fx.RejectWrites(h.ctx, "calendars")

	_, err := h.svc.Respond(h.ctx, created.Token, guest.ID, invitations.ActionAccept)
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != http.StatusInternalServerError {
		t.Fatalf("err = %v, want 500", err)
	}
	partial, ok := ae.Details["partiallyCreated"].(map[string]any)
	if !ok {
		t.Fatalf("details = %v, want partiallyCreated", ae.Details)
	}
	member, err := h.svc.Members.FindEnabled(h.ctx, h.group.ID, guest.ID)
	if err != nil {
		t.Fatalf("membership should be left in place: %v", err)
	}
	if partial["memberId"] != member.ID.Hex() {
		t.Errorf("memberId = %v, want %s", partial["memberId"], member.ID.Hex())
	}
	if id, _ := partial["userRoleId"].(string); id == "" {
		t.Errorf("userRoleId missing from %v", partial)
	}
	if inv := h.invitation(t, created.ID); inv.Status != models.InvitationPending {
		t.Errorf("status = %s, want PENDING", inv.Status)
	}
}

func TestRespond_AcceptLosingFinalTransitionEchoesStoredStatus(t *testing.T) {
	h := newHarness(t)
	guest := h.fx.CreateProfile(h.ctx, "guest@example.com", "Gina", "Guest")
	created := h.invite(t, "guest@example.com", nil).Invitation

	h.svc.SetBeforeAcceptRecorded(func(inv models.GroupInvitation) {
		if _, err := h.svc.Invites.Transition(h.ctx, inv.ID, models.InvitationCancelled, nil); err != nil {
			t.Errorf("cancel during accept: %v", err)
		}
	})

	res, err := h.svc.Respond(h.ctx, created.Token, guest.ID, invitations.ActionAccept)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if res.Invitation.Status != models.InvitationCancelled {
		t.Errorf("echoed status = %s, want CANCELLED", res.Invitation.Status)
	}
	if res.Invitation.InvitedProfileID != nil {
		t.Error("invited_profile_id should not be reported when acceptance was not recorded")
	}
	if h.memberCount(guest.ID) != 1 {
		t.Error("membership stands after the lost transition")
	}
}
