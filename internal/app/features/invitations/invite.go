package invitations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/agendapro/internal/app/store/audit"
	invitationstore "github.com/dalemusser/agendapro/internal/app/store/invitations"
	"github.com/dalemusser/agendapro/internal/app/system/apierr"
	"github.com/dalemusser/agendapro/internal/app/system/auditlog"
	"github.com/dalemusser/agendapro/internal/app/system/htmlsanitize"
	"github.com/dalemusser/agendapro/internal/app/system/mailer"
	"github.com/dalemusser/agendapro/internal/app/system/rbac"
	"github.com/dalemusser/agendapro/internal/app/system/tokens"
	"github.com/dalemusser/agendapro/internal/app/system/validation"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// tokenAttempts bounds retries on a token collision.
const tokenAttempts = 3

// InviteInput describes an invitation. ExpiryDays nil means the configured default.
type InviteInput struct {
	GroupID            primitive.ObjectID
	InvitedByProfileID primitive.ObjectID
	InvitedEmail       string
	InvitedRoleID      primitive.ObjectID
	MembershipRole     string
	Message            string
	ExpiryDays         *int
}

// InviteResult is returned on success. Side-effect outcomes are reported,
// never raised.
type InviteResult struct {
	Invitation    models.GroupInvitation `json:"invitation"`
	InviteeExists bool                   `json:"inviteeExists"`
	EmailSent     bool                   `json:"emailSent"`
	InviteLink    string                 `json:"inviteLink"`
}

// Invite validates the request, stores a PENDING invitation and then runs the
// best-effort side effects: in-app notification, email and audit.
func (s *Service) Invite(ctx context.Context, in InviteInput) (InviteResult, error) {
	group, err := s.Groups.GetByID(ctx, in.GroupID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return InviteResult{}, apierr.NotFound("group not found")
	}
	if err != nil {
		return InviteResult{}, apierr.Internal("failed to load group", err)
	}
	if !group.Enabled {
		return InviteResult{}, apierr.BadRequest("group is disabled")
	}

	role, err := s.Roles.GetByID(ctx, in.InvitedRoleID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return InviteResult{}, apierr.NotFound("role not found")
	}
	if err != nil {
		return InviteResult{}, apierr.Internal("failed to load role", err)
	}
	if role.GroupID != group.ID {
		return InviteResult{}, apierr.BadRequest("role does not belong to this group")
	}
	if !role.Enabled {
		return InviteResult{}, apierr.BadRequest("role is disabled")
	}

	allowed, err := s.Eval.Can(ctx, group.ID, in.InvitedByProfileID, rbac.PermMembersInvite)
	if err != nil {
		return InviteResult{}, apierr.Internal("permission check failed", err)
	}
	if !allowed {
		return InviteResult{}, apierr.Forbidden("you do not have permission to invite members to this group")
	}

	email := strings.TrimSpace(in.InvitedEmail)
	if err := validation.Get().Var(email, "required,email"); err != nil {
		return InviteResult{}, apierr.BadRequest("invalid email address")
	}

	invitee, err := s.Profiles.FindByEmail(ctx, email)
	inviteeExists := err == nil
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return InviteResult{}, apierr.Internal("failed to look up invitee", err)
	}
	if inviteeExists {
		member, err := s.Members.IsEnabledMember(ctx, group.ID, invitee.ID)
		if err != nil {
			return InviteResult{}, apierr.Internal("failed to check membership", err)
		}
		if member {
			return InviteResult{}, apierr.BadRequest("user is already a member of this group")
		}
	}

	pending, err := s.Invites.HasPending(ctx, group.ID, email)
	if err != nil {
		return InviteResult{}, apierr.Internal("failed to check pending invitations", err)
	}
	if pending {
		return InviteResult{}, apierr.BadRequest("a pending invitation already exists for this email")
	}

	days := s.Cfg.ExpiryDays
	if in.ExpiryDays != nil {
		days = *in.ExpiryDays
	}
	if days < 0 {
		return InviteResult{}, apierr.BadRequest("expiryDays must not be negative")
	}

	membershipRole := in.MembershipRole
	if membershipRole == "" {
		membershipRole = models.MembershipMember
	}

	inv := models.GroupInvitation{
		GroupID:            group.ID,
		InvitedEmail:       email,
		InvitedByProfileID: in.InvitedByProfileID,
		InvitedRoleID:      role.ID,
		MembershipRole:     membershipRole,
		Message:            htmlsanitize.PlainText(in.Message),
		ExpiresAt:          s.now().Add(time.Duration(days) * 24 * time.Hour),
	}
	if inviteeExists {
		id := invitee.ID
		inv.InvitedProfileID = &id
	}

	var created models.GroupInvitation
	for attempt := 1; ; attempt++ {
		tok, err := tokens.Invitation()
		if err != nil {
			return InviteResult{}, apierr.Internal("failed to generate token", err)
		}
		inv.Token = tok
		created, err = s.Invites.Create(ctx, inv)
		if errors.Is(err, invitationstore.ErrDuplicateToken) && attempt < tokenAttempts {
			continue
		}
		if errors.Is(err, invitationstore.ErrDuplicatePending) {
			return InviteResult{}, apierr.BadRequest("a pending invitation already exists for this email")
		}
		if err != nil {
			return InviteResult{}, apierr.Internal("failed to create invitation", err)
		}
		break
	}

	res := InviteResult{
		Invitation:    created,
		InviteeExists: inviteeExists,
		InviteLink:    s.InviteLink(created.Token),
	}

	inviterName := "Someone"
	if inviter, err := s.Profiles.GetByID(ctx, in.InvitedByProfileID); err == nil {
		inviterName = inviter.DisplayName()
	}

	if inviteeExists {
		gid := group.ID
		s.Notifier.NotifyBestEffort(ctx, models.Notification{
			GroupID:    &gid,
			ProfileID:  invitee.ID,
			Kind:       models.NotificationGroupInvitation,
			Title:      "New group invitation",
			Body:       fmt.Sprintf("%s invited you to join %s", inviterName, group.Name),
			EntityType: audit.EntityInvitation,
			EntityID:   created.ID.Hex(),
			Metadata: map[string]string{
				"token":     created.Token,
				"groupName": group.Name,
				"inviteUrl": res.InviteLink,
			},
		})
	}

	msg := mailer.BuildInvitationEmail(created.InvitedEmail, mailer.InvitationEmailData{
		SiteName:    s.Cfg.SiteName,
		GroupName:   group.Name,
		InviterName: inviterName,
		Message:     created.Message,
		Link:        res.InviteLink,
		ExpiresIn:   expiresIn(days),
	})
	if err := s.Mailer.Send(ctx, msg); err != nil {
		s.Log.Warn("invitation email not sent",
			zap.String("invitation_id", created.ID.Hex()),
			zap.Error(err))
	} else {
		res.EmailSent = true
	}

	s.Audit.Record(ctx, auditlog.Event{
		GroupID:    auditlog.IDPtr(group.ID),
		ProfileID:  auditlog.IDPtr(in.InvitedByProfileID),
		Action:     audit.ActionInvitationCreated,
		EntityType: audit.EntityInvitation,
		EntityID:   created.ID.Hex(),
		Details: map[string]any{
			"invited_email":  created.InvitedEmail,
			"role_id":        role.ID.Hex(),
			"invitee_exists": inviteeExists,
			"email_sent":     res.EmailSent,
			"expires_at":     created.ExpiresAt,
		},
	})

	s.Log.Info("invitation created",
		zap.String("invitation_id", created.ID.Hex()),
		zap.String("group_id", group.ID.Hex()),
		zap.Bool("invitee_exists", inviteeExists),
		zap.Bool("email_sent", res.EmailSent))
	return res, nil
}

func expiresIn(days int) string {
	switch days {
	case 0:
		return ""
	case 1:
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
