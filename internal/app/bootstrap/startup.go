// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	groupsfeature "github.com/dalemusser/agendapro/internal/app/features/groups"
	invitationsfeature "github.com/dalemusser/agendapro/internal/app/features/invitations"
	notificationsfeature "github.com/dalemusser/agendapro/internal/app/features/notifications"
	usersfeature "github.com/dalemusser/agendapro/internal/app/features/users"
	"github.com/dalemusser/agendapro/internal/app/store/audit"
	notificationstore "github.com/dalemusser/agendapro/internal/app/store/notifications"
	permissionstore "github.com/dalemusser/agendapro/internal/app/store/permissions"
	pushsubstore "github.com/dalemusser/agendapro/internal/app/store/pushsubs"
	"github.com/dalemusser/agendapro/internal/app/system/auditlog"
	"github.com/dalemusser/agendapro/internal/app/system/mailer"
	"github.com/dalemusser/agendapro/internal/app/system/push"
	"github.com/dalemusser/agendapro/internal/app/system/tasks"
	"github.com/dalemusser/agendapro/internal/app/system/timeouts"
	"github.com/dalemusser/agendapro/internal/app/system/validation"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs after DB connection and schema setup, before the HTTP
// handler is built. It seeds the permission catalog, builds the outbound
// clients and workflows, and starts the expiry scheduler.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.AgendaMongoDatabase

	seedCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()
	if err := groupsfeature.SeedCatalog(seedCtx, permissionstore.New(db), logger); err != nil {
		return fmt.Errorf("seed permission catalog: %w", err)
	}

	pushSender, err := push.NewSender(ctx, push.Config{
		ProjectID:       appCfg.FirebaseProjectID,
		CredentialsFile: appCfg.FirebaseCredentialsFile,
		CredentialsJSON: appCfg.FirebaseCredentialsJSON,
	}, logger)
	if err != nil {
		return err
	}
	mail := mailer.New(mailer.Config{
		Host:     appCfg.SMTPHost,
		Port:     appCfg.SMTPPort,
		Secure:   appCfg.SMTPSecure,
		User:     appCfg.SMTPUser,
		Pass:     appCfg.SMTPPass,
		From:     appCfg.SMTPFrom,
		FromName: appCfg.SMTPFromName,
	}, logger)

	svc := buildServices(appCfg, deps, pushSender, mail, logger)

	svc.Scheduler = tasks.NewScheduler(logger)
	if err := svc.Scheduler.Add(svc.Invitations.ExpiryJob(appCfg.ExpirySchedule)); err != nil {
		return err
	}
	svc.Scheduler.Start()

	*deps.Services = *svc
	return nil
}

// buildServices wires stores, workflows and collaborators together. Tests
// call it with fake senders.
func buildServices(appCfg AppConfig, deps DBDeps, pushSender push.Sender, mail mailer.Sender, logger *zap.Logger) *Services {
	db := deps.AgendaMongoDatabase
	auditLog := auditlog.New(audit.New(db), logger, appCfg.AuditLog)

	notifier := notificationsfeature.NewNotifier(
		notificationstore.New(db),
		push.NewDispatcher(pushsubstore.New(db), pushSender, logger),
		auditLog,
		logger,
	)

	usersCfg := usersfeature.Config{
		DefaultTimezone: appCfg.DefaultTimezone,
		DefaultLanguage: appCfg.DefaultLanguage,
	}
	if appCfg.DefaultRoleID != "" {
		usersCfg.DefaultRoleID = validation.ObjectID(appCfg.DefaultRoleID)
	}

	return &Services{
		Audit:       auditLog,
		Notifier:    notifier,
		Provisioner: groupsfeature.NewProvisioner(db, auditLog, logger, appCfg.DefaultTimezone),
		Invitations: invitationsfeature.NewService(db, notifier, mail, auditLog, logger, invitationsfeature.Config{
			BaseURL:         appCfg.BaseURL,
			SiteName:        appCfg.SiteName,
			ExpiryDays:      appCfg.InviteExpiryDays,
			BatchSize:       appCfg.ExpiryBatchSize,
			DefaultTimezone: appCfg.DefaultTimezone,
			DefaultLanguage: appCfg.DefaultLanguage,
		}),
		Users: usersfeature.NewService(db, auditLog, logger, usersCfg),
	}
}
