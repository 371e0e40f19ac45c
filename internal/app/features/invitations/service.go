// Package invitations issues, answers and expires group invitations.
package invitations

import (
	"time"

	"github.com/dalemusser/agendapro/internal/app/features/notifications"
	calendarstore "github.com/dalemusser/agendapro/internal/app/store/calendars"
	groupstore "github.com/dalemusser/agendapro/internal/app/store/groups"
	invitationstore "github.com/dalemusser/agendapro/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/agendapro/internal/app/store/memberships"
	profilestore "github.com/dalemusser/agendapro/internal/app/store/profiles"
	rolestore "github.com/dalemusser/agendapro/internal/app/store/roles"
	settingsstore "github.com/dalemusser/agendapro/internal/app/store/settings"
	userrolestore "github.com/dalemusser/agendapro/internal/app/store/userroles"
	"github.com/dalemusser/agendapro/internal/app/system/auditlog"
	"github.com/dalemusser/agendapro/internal/app/system/mailer"
	"github.com/dalemusser/agendapro/internal/app/system/rbac"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultExpiryDays = 7
	DefaultBatchSize  = 100
	DefaultSiteName   = "Agenda Pro"
)

// Config carries the settings the workflows need from app config.
type Config struct {
	BaseURL         string
	SiteName        string
	ExpiryDays      int
	BatchSize       int
	DefaultTimezone string
	DefaultLanguage string
}

// Service holds the stores and collaborators shared by the invitation workflows.
type Service struct {
	Groups    *groupstore.Store
	Roles     *rolestore.Store
	Members   *membershipstore.Store
	Profiles  *profilestore.Store
	Invites   *invitationstore.Store
	UserRoles *userrolestore.Store
	Calendars *calendarstore.Store
	Settings  *settingsstore.Store

	Eval     *rbac.Evaluator
	Notifier *notifications.Notifier
	Mailer   mailer.Sender
	Audit    *auditlog.Logger
	Log      *zap.Logger
	Cfg      Config

	// now is swapped in tests.
	now func() time.Time
	// beforeAcceptRecorded runs between provisioning the member and the
	// final ACCEPTED write; nil outside tests.
	beforeAcceptRecorded func(models.GroupInvitation)
}

func NewService(db *mongo.Database, notifier *notifications.Notifier, m mailer.Sender, audit *auditlog.Logger, logger *zap.Logger, cfg Config) *Service {
	if cfg.ExpiryDays < 0 {
		cfg.ExpiryDays = DefaultExpiryDays
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.SiteName == "" {
		cfg.SiteName = DefaultSiteName
	}
	if m == nil {
		m = mailer.Disabled{}
	}
	return &Service{
		Groups:    groupstore.New(db),
		Roles:     rolestore.New(db),
		Members:   membershipstore.New(db),
		Profiles:  profilestore.New(db),
		Invites:   invitationstore.New(db),
		UserRoles: userrolestore.New(db),
		Calendars: calendarstore.New(db),
		Settings:  settingsstore.New(db),
		Eval:      rbac.NewEvaluator(db),
		Notifier:  notifier,
		Mailer:    m,
		Audit:     audit,
		Log:       logger,
		Cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// InviteLink is the URL the invitee opens to answer.
func (s *Service) InviteLink(token string) string {
	return s.Cfg.BaseURL + "/invite/" + token
}
