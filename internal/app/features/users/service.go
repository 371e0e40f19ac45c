// Package users creates authentication identities together with their
// application profile and personal defaults.
package users

import (
	"context"
	"errors"

	"github.com/dalemusser/agendapro/internal/app/store/audit"
	calendarstore "github.com/dalemusser/agendapro/internal/app/store/calendars"
	groupstore "github.com/dalemusser/agendapro/internal/app/store/groups"
	membershipstore "github.com/dalemusser/agendapro/internal/app/store/memberships"
	profilestore "github.com/dalemusser/agendapro/internal/app/store/profiles"
	rolestore "github.com/dalemusser/agendapro/internal/app/store/roles"
	settingsstore "github.com/dalemusser/agendapro/internal/app/store/settings"
	userrolestore "github.com/dalemusser/agendapro/internal/app/store/userroles"
	userstore "github.com/dalemusser/agendapro/internal/app/store/users"
	"github.com/dalemusser/agendapro/internal/app/system/apierr"
	"github.com/dalemusser/agendapro/internal/app/system/auditlog"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// PersonalCalendarName is the calendar every new profile starts with.
const PersonalCalendarName = "Personal"

// Config carries defaults from app config.
type Config struct {
	DefaultTimezone string
	DefaultLanguage string
	// DefaultRoleID is assigned when a user joins a group at creation
	// without an explicit role. Zero means no role.
	DefaultRoleID primitive.ObjectID
}

type Service struct {
	Users     *userstore.Store
	Profiles  *profilestore.Store
	Calendars *calendarstore.Store
	Settings  *settingsstore.Store
	Groups    *groupstore.Store
	Members   *membershipstore.Store
	Roles     *rolestore.Store
	UserRoles *userrolestore.Store
	Audit     *auditlog.Logger
	Log       *zap.Logger
	Cfg       Config
}

func NewService(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger, cfg Config) *Service {
	return &Service{
		Users:     userstore.New(db),
		Profiles:  profilestore.New(db),
		Calendars: calendarstore.New(db),
		Settings:  settingsstore.New(db),
		Groups:    groupstore.New(db),
		Members:   membershipstore.New(db),
		Roles:     rolestore.New(db),
		UserRoles: userrolestore.New(db),
		Audit:     audit,
		Log:       logger,
		Cfg:       cfg,
	}
}

// Input describes a new account. GroupID and RoleID are optional.
type Input struct {
	Email    string
	Password string
	Name     string
	GroupID  *primitive.ObjectID
	RoleID   *primitive.ObjectID
}

// Result carries what was created. The optional parts are nil when skipped
// or when their best-effort step failed.
type Result struct {
	User         models.User          `json:"user"`
	Profile      models.Profile       `json:"profile"`
	Calendar     *models.Calendar     `json:"calendar,omitempty"`
	UserSettings *models.UserSettings `json:"userSettings,omitempty"`
	GroupMember  *models.GroupMember  `json:"groupMember,omitempty"`
	UserRole     *models.UserRole     `json:"userRole,omitempty"`
}

// CreateUser registers the identity and its profile. If the profile insert
// fails the identity is deleted again. Everything after the profile is
// best-effort.
func (s *Service) CreateUser(ctx context.Context, in Input) (Result, error) {
	u, err := s.Users.Create(ctx, in.Email, in.Name, in.Password)
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail), errors.Is(err, userstore.ErrWeakPassword):
		return Result{}, apierr.BadRequest(err.Error())
	case err != nil:
		return Result{}, apierr.Internal("failed to create user", err)
	}

	first, last := profilestore.SplitName(in.Name)
	p, err := s.Profiles.Create(ctx, models.Profile{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: first,
		LastName:  last,
	})
	if err != nil {
		if _, derr := s.Users.Delete(ctx, u.ID); derr != nil {
			s.Log.Error("failed to remove identity after profile failure",
				zap.String("user_id", u.ID.Hex()), zap.Error(derr))
		}
		if errors.Is(err, profilestore.ErrDuplicateProfile) {
			return Result{}, apierr.BadRequest(err.Error())
		}
		return Result{}, apierr.Internal("failed to create profile", err)
	}

	res := Result{User: u, Profile: p}
	log := s.Log.With(zap.String("profile_id", p.ID.Hex()))

	if cal, err := s.Calendars.Create(ctx, models.Calendar{
		OwnerProfileID: p.ID,
		Name:           PersonalCalendarName,
		Visibility:     models.VisibilityPrivate,
		IsDefault:      true,
	}); err != nil {
		log.Warn("personal calendar not created", zap.Error(err))
	} else {
		res.Calendar = &cal
	}

	if us, err := s.Settings.EnsureDefaults(ctx, settingsstore.Defaults(p.ID, s.Cfg.DefaultTimezone, s.Cfg.DefaultLanguage)); err != nil {
		log.Warn("user settings not created", zap.Error(err))
	} else {
		res.UserSettings = &us
	}

	if in.GroupID != nil {
		s.joinGroup(ctx, log, *in.GroupID, in.RoleID, &res)
	}

	s.Audit.Record(ctx, auditlog.Event{
		GroupID:    in.GroupID,
		ProfileID:  auditlog.IDPtr(p.ID),
		Action:     audit.ActionUserCreated,
		EntityType: audit.EntityUser,
		EntityID:   u.ID.Hex(),
		Details: map[string]any{
			"email":        u.Email,
			"joined_group": res.GroupMember != nil,
		},
	})
	log.Info("user created", zap.String("user_id", u.ID.Hex()))
	return res, nil
}

// joinGroup adds the new profile as a MEMBER and assigns roleID or the
// configured default. Failures are logged and leave the result fields nil.
func (s *Service) joinGroup(ctx context.Context, log *zap.Logger, groupID primitive.ObjectID, roleID *primitive.ObjectID, res *Result) {
	g, err := s.Groups.GetByID(ctx, groupID)
	if err != nil {
		log.Warn("group not joined: lookup failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		return
	}
	if !g.Enabled {
		log.Warn("group not joined: group disabled", zap.String("group_id", groupID.Hex()))
		return
	}

	m, err := s.Members.Add(ctx, g.ID, res.Profile.ID, models.MembershipMember)
	if err != nil {
		log.Warn("group not joined", zap.String("group_id", groupID.Hex()), zap.Error(err))
		return
	}
	res.GroupMember = &m

	rid := s.Cfg.DefaultRoleID
	if roleID != nil {
		rid = *roleID
	}
	if rid.IsZero() {
		return
	}
	role, err := s.Roles.GetByID(ctx, rid)
	if err != nil || role.GroupID != g.ID || !role.Enabled {
		log.Warn("role not assigned: not an enabled role of the group",
			zap.String("role_id", rid.Hex()), zap.Error(err))
		return
	}
	ur, err := s.UserRoles.Assign(ctx, g.ID, res.Profile.ID, role.ID)
	if err != nil {
		log.Warn("role not assigned", zap.String("role_id", rid.Hex()), zap.Error(err))
		return
	}
	res.UserRole = &ur
}
