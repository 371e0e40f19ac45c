package groups

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/agendapro/internal/app/store/audit"
	calendarstore "github.com/dalemusser/agendapro/internal/app/store/calendars"
	groupstore "github.com/dalemusser/agendapro/internal/app/store/groups"
	membershipstore "github.com/dalemusser/agendapro/internal/app/store/memberships"
	permissionstore "github.com/dalemusser/agendapro/internal/app/store/permissions"
	profilestore "github.com/dalemusser/agendapro/internal/app/store/profiles"
	rolepermstore "github.com/dalemusser/agendapro/internal/app/store/rolepermissions"
	rolestore "github.com/dalemusser/agendapro/internal/app/store/roles"
	userrolestore "github.com/dalemusser/agendapro/internal/app/store/userroles"
	"github.com/dalemusser/agendapro/internal/app/system/apierr"
	"github.com/dalemusser/agendapro/internal/app/system/auditlog"
	"github.com/dalemusser/agendapro/internal/app/system/rbac"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Calendar names created with every group.
const (
	PersonalCalendarName = "Personal"
	TeamCalendarName     = "Equipo"
)

// Input describes a group to provision. Timezone falls back to the
// provisioner default.
type Input struct {
	OwnerProfileID     primitive.ObjectID
	Name               string
	Description        string
	LogoFileID         string
	Timezone           string
	CreateTeamCalendar bool
}

// Result is everything a successful provisioning created or linked.
type Result struct {
	RunID                  string             `json:"runId"`
	Group                  models.Group       `json:"group"`
	Member                 models.GroupMember `json:"member"`
	Roles                  []models.Role      `json:"roles"`
	UserRole               models.UserRole    `json:"userRole"`
	Calendars              []models.Calendar  `json:"calendars"`
	PermissionsCreated     int                `json:"permissionsCreated"`
	RolePermissionsCreated int                `json:"rolePermissionsCreated"`
}

// Manifest lists the ids written before a provisioning run failed. Nothing
// is rolled back; the manifest lets an operator finish or remove the group.
type Manifest struct {
	RunID                  string   `json:"runId"`
	Step                   string   `json:"failedStep"`
	GroupID                string   `json:"groupId,omitempty"`
	MemberID               string   `json:"memberId,omitempty"`
	PermissionsCreated     int      `json:"permissionsCreated"`
	RoleIDs                []string `json:"roleIds,omitempty"`
	RolePermissionsCreated int      `json:"rolePermissionsCreated"`
	UserRoleID             string   `json:"userRoleId,omitempty"`
	CalendarIDs            []string `json:"calendarIds,omitempty"`
}

// Provisioner creates groups with their membership, RBAC defaults and calendars.
type Provisioner struct {
	Groups    *groupstore.Store
	Profiles  *profilestore.Store
	Members   *membershipstore.Store
	Perms     *permissionstore.Store
	Roles     *rolestore.Store
	RolePerms *rolepermstore.Store
	UserRoles *userrolestore.Store
	Calendars *calendarstore.Store
	Audit     *auditlog.Logger
	Log       *zap.Logger

	DefaultTimezone string
}

func NewProvisioner(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger, defaultTZ string) *Provisioner {
	return &Provisioner{
		Groups:          groupstore.New(db),
		Profiles:        profilestore.New(db),
		Members:         membershipstore.New(db),
		Perms:           permissionstore.New(db),
		Roles:           rolestore.New(db),
		RolePerms:       rolepermstore.New(db),
		UserRoles:       userrolestore.New(db),
		Calendars:       calendarstore.New(db),
		Audit:           audit,
		Log:             logger,
		DefaultTimezone: defaultTZ,
	}
}

// CreateWithDefaults provisions a group. Steps run strictly in order and each
// write commits on its own. A failure after the group insert returns a 500
// whose details carry the partial manifest and the run id.
func (p *Provisioner) CreateWithDefaults(ctx context.Context, in Input) (Result, error) {
	runID := uuid.NewString()
	log := p.Log.With(zap.String("run_id", runID), zap.String("owner_profile_id", in.OwnerProfileID.Hex()))

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Result{}, apierr.BadRequest("name is required")
	}
	tz := strings.TrimSpace(in.Timezone)
	if tz == "" {
		tz = p.DefaultTimezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return Result{}, apierr.BadRequest("invalid timezone: " + tz)
	}

	owner, err := p.Profiles.GetByID(ctx, in.OwnerProfileID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Result{}, apierr.NotFound("owner profile not found")
	}
	if err != nil {
		return Result{}, apierr.Internal("failed to load owner profile", err)
	}
	if !owner.Enabled {
		return Result{}, apierr.BadRequest("owner profile is disabled")
	}

	res := Result{RunID: runID}
	man := Manifest{RunID: runID}

	fail := func(step string, err error) (Result, error) {
		man.Step = step
		log.Error("group provisioning failed",
			zap.String("step", step),
			zap.String("group_id", man.GroupID),
			zap.Error(err))
		var gid *primitive.ObjectID
		if !res.Group.ID.IsZero() {
			gid = auditlog.IDPtr(res.Group.ID)
		}
		p.Audit.Record(ctx, auditlog.Event{
			GroupID:    gid,
			ProfileID:  auditlog.IDPtr(in.OwnerProfileID),
			Action:     audit.ActionGroupCreateFailed,
			EntityType: audit.EntityGroup,
			EntityID:   man.GroupID,
			Details:    map[string]any{"run_id": runID, "step": step, "error": err.Error()},
		})
		ae := apierr.Internal("group provisioning failed at "+step, err).With("runId", runID)
		if man.GroupID != "" {
			ae = ae.With("partiallyCreated", man)
		}
		return Result{}, ae
	}

	// 1. group
	g, err := p.Groups.Create(ctx, models.Group{
		Name:           name,
		Description:    strings.TrimSpace(in.Description),
		LogoFileID:     in.LogoFileID,
		OwnerProfileID: in.OwnerProfileID,
		TimeZone:       tz,
	})
	if err != nil {
		return fail("group", err)
	}
	res.Group = g
	man.GroupID = g.ID.Hex()

	// 2. owner membership
	m, err := p.Members.Add(ctx, g.ID, in.OwnerProfileID, models.MembershipOwner)
	if err != nil {
		return fail("owner_membership", err)
	}
	res.Member = m
	man.MemberID = m.ID.Hex()

	// 3. permission catalog (global, shared across groups)
	created, perms, err := p.Perms.EnsureCatalog(ctx, rbac.Catalog)
	man.PermissionsCreated = created
	res.PermissionsCreated = created
	if err != nil {
		return fail("permissions", err)
	}

	// 4. system roles
	roleByName := make(map[string]models.Role, len(rbac.SystemRoles))
	for _, sr := range rbac.SystemRoles {
		role, _, err := p.Roles.Ensure(ctx, g.ID, sr.Name, sr.Description, true)
		if err != nil {
			return fail("roles", err)
		}
		roleByName[sr.Name] = role
		res.Roles = append(res.Roles, role)
		man.RoleIDs = append(man.RoleIDs, role.ID.Hex())
	}

	// 5. role-permission links
	for _, sr := range rbac.SystemRoles {
		role := roleByName[sr.Name]
		for _, key := range sr.Permissions {
			perm, ok := perms[key]
			if !ok {
				return fail("role_permissions", errors.New("permission missing from catalog: "+key))
			}
			linked, err := p.RolePerms.Ensure(ctx, g.ID, role.ID, perm.ID)
			if err != nil {
				return fail("role_permissions", err)
			}
			if linked {
				res.RolePermissionsCreated++
				man.RolePermissionsCreated++
			}
		}
	}

	// 6. owner gets Admin
	ur, err := p.UserRoles.Assign(ctx, g.ID, in.OwnerProfileID, roleByName[rbac.RoleAdmin].ID)
	if err != nil {
		return fail("owner_role", err)
	}
	res.UserRole = ur
	man.UserRoleID = ur.ID.Hex()

	// 7. calendars
	gid := g.ID
	personal, err := p.Calendars.Create(ctx, models.Calendar{
		GroupID:        &gid,
		OwnerProfileID: in.OwnerProfileID,
		Name:           PersonalCalendarName,
		Visibility:     models.VisibilityGroup,
		IsDefault:      true,
	})
	if err != nil {
		return fail("personal_calendar", err)
	}
	res.Calendars = append(res.Calendars, personal)
	man.CalendarIDs = append(man.CalendarIDs, personal.ID.Hex())

	if in.CreateTeamCalendar {
		team, err := p.Calendars.Create(ctx, models.Calendar{
			GroupID:        &gid,
			OwnerProfileID: in.OwnerProfileID,
			Name:           TeamCalendarName,
			Color:          calendarstore.TeamColor,
			Icon:           calendarstore.TeamIcon,
			Visibility:     models.VisibilityGroup,
		})
		if err != nil {
			return fail("team_calendar", err)
		}
		res.Calendars = append(res.Calendars, team)
		man.CalendarIDs = append(man.CalendarIDs, team.ID.Hex())
	}

	log.Info("group provisioned",
		zap.String("group_id", g.ID.Hex()),
		zap.Int("permissions_created", res.PermissionsCreated),
		zap.Int("role_permissions_created", res.RolePermissionsCreated),
		zap.Int("calendars", len(res.Calendars)))

	p.Audit.Record(ctx, auditlog.Event{
		GroupID:    auditlog.IDPtr(g.ID),
		ProfileID:  auditlog.IDPtr(in.OwnerProfileID),
		Action:     audit.ActionGroupCreated,
		EntityType: audit.EntityGroup,
		EntityID:   g.ID.Hex(),
		Details: map[string]any{
			"run_id":                   runID,
			"name":                     g.Name,
			"permissions_created":      res.PermissionsCreated,
			"role_permissions_created": res.RolePermissionsCreated,
			"team_calendar":            in.CreateTeamCalendar,
		},
	})
	return res, nil
}

// SeedCatalog ensures the global permission catalog exists. It runs at
// startup so permission checks work before the first group is provisioned.
func SeedCatalog(ctx context.Context, perms *permissionstore.Store, log *zap.Logger) error {
	created, _, err := perms.EnsureCatalog(ctx, rbac.Catalog)
	if err != nil {
		return err
	}
	log.Info("permission catalog ensured", zap.Int("created", created), zap.Int("total", len(rbac.Catalog)))
	return nil
}
