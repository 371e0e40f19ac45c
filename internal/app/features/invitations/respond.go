package invitations

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/agendapro/internal/app/store/audit"
	membershipstore "github.com/dalemusser/agendapro/internal/app/store/memberships"
	settingsstore "github.com/dalemusser/agendapro/internal/app/store/settings"
	"github.com/dalemusser/agendapro/internal/app/system/apierr"
	"github.com/dalemusser/agendapro/internal/app/system/auditlog"
	"github.com/dalemusser/agendapro/internal/app/system/rbac"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Response actions.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
	ActionCancel = "cancel"
)

// PersonalCalendarName is the default calendar created for a new member.
const PersonalCalendarName = "Personal"

// GroupSummary and ProfileSummary are the slim views echoed to callers.
type GroupSummary struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

type ProfileSummary struct {
	ID          primitive.ObjectID `json:"id"`
	Email       string             `json:"email"`
	DisplayName string             `json:"displayName"`
}

// RespondResult describes the outcome of an accept, reject or cancel.
type RespondResult struct {
	Action     string                 `json:"action"`
	Invitation models.GroupInvitation `json:"invitation"`
	Group      GroupSummary           `json:"group"`
	Profile    ProfileSummary         `json:"profile"`
	Member     *models.GroupMember    `json:"member,omitempty"`
	UserRole   *models.UserRole       `json:"userRole,omitempty"`
	Calendar   *models.Calendar       `json:"calendar,omitempty"`
	Settings   *models.UserSettings   `json:"settings,omitempty"`
}

// Respond answers the invitation identified by token on behalf of profileID.
// An empty action means accept.
func (s *Service) Respond(ctx context.Context, token string, profileID primitive.ObjectID, action string) (RespondResult, error) {
	if action == "" {
		action = ActionAccept
	}
	switch action {
	case ActionAccept, ActionReject, ActionCancel:
	default:
		return RespondResult{}, apierr.BadRequest(`action must be "accept", "reject" or "cancel"`)
	}

	inv, err := s.Invites.GetByToken(ctx, token)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return RespondResult{}, apierr.NotFound("invitation not found")
	}
	if err != nil {
		return RespondResult{}, apierr.Internal("failed to load invitation", err)
	}
	if !inv.Enabled {
		return RespondResult{}, apierr.BadRequest("invitation is disabled")
	}
	if inv.IsTerminal() {
		return RespondResult{}, apierr.BadRequest("invitation is no longer pending").With("status", inv.Status)
	}

	now := s.now()
	if now.After(inv.ExpiresAt) {
		if ok, err := s.Invites.Transition(ctx, inv.ID, models.InvitationExpired, nil); err != nil {
			s.Log.Warn("failed to mark invitation expired", zap.String("invitation_id", inv.ID.Hex()), zap.Error(err))
		} else if ok {
			s.recordTransition(ctx, inv, profileID, audit.ActionInvitationExpired, map[string]any{"trigger": "respond"})
		}
		return RespondResult{}, apierr.BadRequest("invitation has expired").With("status", models.InvitationExpired)
	}

	profile, err := s.Profiles.GetByID(ctx, profileID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return RespondResult{}, apierr.NotFound("profile not found")
	}
	if err != nil {
		return RespondResult{}, apierr.Internal("failed to load profile", err)
	}
	if text.Fold(profile.Email) != inv.InvitedEmailCI {
		return RespondResult{}, apierr.Forbidden("this invitation was sent to a different email address")
	}

	group, err := s.Groups.GetByID(ctx, inv.GroupID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return RespondResult{}, apierr.NotFound("group not found")
	}
	if err != nil {
		return RespondResult{}, apierr.Internal("failed to load group", err)
	}
	if !group.Enabled {
		return RespondResult{}, apierr.BadRequest("group is disabled")
	}

	res := RespondResult{
		Action:  action,
		Group:   GroupSummary{ID: group.ID, Name: group.Name},
		Profile: ProfileSummary{ID: profile.ID, Email: profile.Email, DisplayName: profile.DisplayName()},
	}

	if action != ActionAccept {
		return s.decline(ctx, inv, group, profile, res)
	}
	return s.accept(ctx, inv, group, profile, res)
}

func (s *Service) decline(ctx context.Context, inv models.GroupInvitation, group models.Group, profile models.Profile, res RespondResult) (RespondResult, error) {
	to, auditAction := models.InvitationRejected, audit.ActionInvitationRejected
	if res.Action == ActionCancel {
		to, auditAction = models.InvitationCancelled, audit.ActionInvitationCancelled
	}

	respondedAt := s.now()
	ok, err := s.Invites.Transition(ctx, inv.ID, to, bson.M{"responded_at": respondedAt})
	if err != nil {
		return RespondResult{}, apierr.Internal("failed to update invitation", err)
	}
	if !ok {
		return RespondResult{}, s.lostRace(ctx, inv.ID)
	}
	inv.Status = to
	inv.RespondedAt = &respondedAt
	res.Invitation = inv

	if to == models.InvitationRejected {
		gid := group.ID
		s.Notifier.NotifyBestEffort(ctx, models.Notification{
			GroupID:    &gid,
			ProfileID:  inv.InvitedByProfileID,
			Kind:       models.NotificationInvitationRejected,
			Title:      "Invitation declined",
			Body:       fmt.Sprintf("%s declined your invitation to %s", profile.DisplayName(), group.Name),
			EntityType: audit.EntityInvitation,
			EntityID:   inv.ID.Hex(),
			Metadata:   map[string]string{"profileId": profile.ID.Hex()},
		})
	}

	s.recordTransition(ctx, inv, profile.ID, auditAction, nil)
	return res, nil
}

func (s *Service) accept(ctx context.Context, inv models.GroupInvitation, group models.Group, profile models.Profile, res RespondResult) (RespondResult, error) {
	member, err := s.Members.IsEnabledMember(ctx, group.ID, profile.ID)
	if err != nil {
		return RespondResult{}, apierr.Internal("failed to check membership", err)
	}
	if member {
		return RespondResult{}, s.alreadyMember(ctx, inv, profile)
	}

	role := inv.MembershipRole
	if role == "" {
		role = models.MembershipMember
	}
	m, err := s.Members.Add(ctx, group.ID, profile.ID, role)
	if errors.Is(err, membershipstore.ErrDuplicateMembership) {
		return RespondResult{}, s.alreadyMember(ctx, inv, profile)
	}
	if err != nil {
		return RespondResult{}, apierr.Internal("failed to create membership", err)
	}
	res.Member = &m

	if r, ok := s.resolveRole(ctx, inv, group.ID, role); ok {
		ur, err := s.UserRoles.Assign(ctx, group.ID, profile.ID, r.ID)
		if err != nil {
			s.Log.Warn("role assignment failed", zap.String("invitation_id", inv.ID.Hex()), zap.Error(err))
		} else {
			res.UserRole = &ur
		}
	}

	gid := group.ID
	cal, err := s.Calendars.Create(ctx, models.Calendar{
		GroupID:        &gid,
		OwnerProfileID: profile.ID,
		Name:           PersonalCalendarName,
		Visibility:     models.VisibilityPrivate,
		IsDefault:      true,
	})
	if err != nil {
		partial := map[string]any{"memberId": m.ID.Hex()}
		if res.UserRole != nil {
			partial["userRoleId"] = res.UserRole.ID.Hex()
		}
		s.Log.Error("accept left a partial membership",
			zap.String("invitation_id", inv.ID.Hex()),
			zap.Any("partially_created", partial),
			zap.Error(err))
		return RespondResult{}, apierr.Internal("failed to create calendar", err).
			With("partiallyCreated", partial)
	}
	res.Calendar = &cal

	tz := group.TimeZone
	if tz == "" {
		tz = s.Cfg.DefaultTimezone
	}
	if us, err := s.Settings.EnsureDefaults(ctx, settingsstore.Defaults(profile.ID, tz, s.Cfg.DefaultLanguage)); err != nil {
		s.Log.Warn("user settings not created", zap.String("profile_id", profile.ID.Hex()), zap.Error(err))
	} else {
		res.Settings = &us
	}

	if s.beforeAcceptRecorded != nil {
		s.beforeAcceptRecorded(inv)
	}

	respondedAt := s.now()
	pid := profile.ID
	ok, err := s.Invites.Transition(ctx, inv.ID, models.InvitationAccepted, bson.M{
		"invited_profile_id": pid,
		"responded_at":       respondedAt,
	})
	if err != nil {
		return RespondResult{}, apierr.Internal("failed to mark invitation accepted", err).
			With("partiallyCreated", map[string]any{"memberId": m.ID.Hex(), "calendarId": cal.ID.Hex()})
	}
	if ok {
		inv.Status = models.InvitationAccepted
		inv.InvitedProfileID = &pid
		inv.RespondedAt = &respondedAt
	} else {
		s.Log.Warn("invitation left PENDING before acceptance was recorded",
			zap.String("invitation_id", inv.ID.Hex()))
		cur, err := s.Invites.GetByID(ctx, inv.ID)
		if err != nil {
			return RespondResult{}, apierr.Internal("failed to reload invitation", err).
				With("partiallyCreated", map[string]any{"memberId": m.ID.Hex(), "calendarId": cal.ID.Hex()})
		}
		inv = cur
	}
	res.Invitation = inv

	s.Notifier.NotifyBestEffort(ctx, models.Notification{
		GroupID:    &gid,
		ProfileID:  inv.InvitedByProfileID,
		Kind:       models.NotificationInvitationAccepted,
		Title:      "Invitation accepted",
		Body:       fmt.Sprintf("%s joined %s", profile.DisplayName(), group.Name),
		EntityType: audit.EntityInvitation,
		EntityID:   inv.ID.Hex(),
		Metadata:   map[string]string{"profileId": profile.ID.Hex()},
	})

	details := map[string]any{"member_id": m.ID.Hex(), "membership_role": role}
	if res.UserRole != nil {
		details["role_id"] = res.UserRole.RoleID.Hex()
	}
	s.recordTransition(ctx, inv, profile.ID, audit.ActionInvitationAccepted, details)
	return res, nil
}

// alreadyMember still closes the invitation as ACCEPTED so it cannot be
// answered again, then reports the conflict.
func (s *Service) alreadyMember(ctx context.Context, inv models.GroupInvitation, profile models.Profile) error {
	pid := profile.ID
	if _, err := s.Invites.Transition(ctx, inv.ID, models.InvitationAccepted, bson.M{
		"invited_profile_id": pid,
		"responded_at":       s.now(),
	}); err != nil {
		s.Log.Warn("failed to close invitation for existing member", zap.String("invitation_id", inv.ID.Hex()), zap.Error(err))
	}
	s.recordTransition(ctx, inv, profile.ID, audit.ActionInvitationRefused, map[string]any{"reason": "already_member"})
	return apierr.BadRequest("user is already a member of this group")
}

// resolveRole prefers the invited role when it is an enabled role of the
// group, then falls back by name: Admin for owners, Editor otherwise.
func (s *Service) resolveRole(ctx context.Context, inv models.GroupInvitation, groupID primitive.ObjectID, membershipRole string) (models.Role, bool) {
	if !inv.InvitedRoleID.IsZero() {
		r, err := s.Roles.GetByID(ctx, inv.InvitedRoleID)
		if err == nil && r.GroupID == groupID && r.Enabled {
			return r, true
		}
	}
	name := rbac.RoleEditor
	if membershipRole == models.MembershipOwner {
		name = rbac.RoleAdmin
	}
	r, err := s.Roles.FindByName(ctx, groupID, name)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			s.Log.Warn("role lookup failed", zap.String("role", name), zap.Error(err))
		}
		return models.Role{}, false
	}
	return r, true
}

// lostRace reloads the invitation after a conditional update matched nothing.
func (s *Service) lostRace(ctx context.Context, id primitive.ObjectID) error {
	cur, err := s.Invites.GetByID(ctx, id)
	if err != nil {
		return apierr.BadRequest("invitation is no longer pending")
	}
	return apierr.BadRequest("invitation is no longer pending").With("status", cur.Status)
}

func (s *Service) recordTransition(ctx context.Context, inv models.GroupInvitation, actor primitive.ObjectID, action string, details map[string]any) {
	s.Audit.Record(ctx, auditlog.Event{
		GroupID:    auditlog.IDPtr(inv.GroupID),
		ProfileID:  auditlog.IDPtr(actor),
		Action:     action,
		EntityType: audit.EntityInvitation,
		EntityID:   inv.ID.Hex(),
		Details:    details,
	})
}
