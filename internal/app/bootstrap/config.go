// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/agendapro/internal/app/system/auditlog"
	"github.com/dalemusser/agendapro/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Agenda Pro.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, smtp_host, etc.
//   - Environment variables: AGENDAPRO_MONGO_URI, AGENDAPRO_SMTP_HOST, etc.
//   - Command-line flags: --mongo_uri, --smtp_host, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "agenda_pro", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},

	{Name: "api_key", Default: "", Desc: "Shared key required in X-Api-Key on /api/* (blank disables)"},
	{Name: "base_url", Default: "http://localhost:5173", Desc: "Base URL for invitation links"},
	{Name: "site_name", Default: "Agenda Pro", Desc: "Product name used in emails"},

	// Email/SMTP configuration
	{Name: "smtp_host", Default: "", Desc: "SMTP server host (blank disables email)"},
	{Name: "smtp_port", Default: 587, Desc: "SMTP server port"},
	{Name: "smtp_secure", Default: false, Desc: "Use implicit TLS (port 465) instead of STARTTLS"},
	{Name: "smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "smtp_from", Default: "no-reply@agendapro.app", Desc: "From email address"},
	{Name: "smtp_from_name", Default: "Agenda Pro", Desc: "From display name"},

	// Firebase Cloud Messaging
	{Name: "firebase_credentials_file", Default: "", Desc: "Path to a Firebase service account JSON file"},
	{Name: "firebase_credentials_json", Default: "", Desc: "Firebase service account JSON (overrides the file)"},
	{Name: "firebase_project_id", Default: "", Desc: "Firebase project id (defaults to the service account's)"},

	// Defaults
	{Name: "default_timezone", Default: "America/Mexico_City", Desc: "IANA zone for new groups and settings"},
	{Name: "default_language", Default: "es", Desc: "Language for new user settings"},
	{Name: "default_role_id", Default: "", Desc: "Role assigned when a user joins a group at signup without one"},

	// Invitations
	{Name: "invite_expiry_days", Default: 7, Desc: "Days until an invitation expires"},
	{Name: "expiry_batch_size", Default: 100, Desc: "Invitations expired per sweep batch"},
	{Name: "expiry_schedule", Default: "@every 15m", Desc: "Cron spec for the expiry sweep (blank disables)"},
	{Name: "rate_limit_per_minute", Default: 30, Desc: "Per-IP limit on invite/respond requests (0 disables)"},

	// Audit logging
	{Name: "audit_log", Default: "all", Desc: "Audit logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: "15s", Desc: "Timeout for invite/respond workflows"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for group provisioning and push fan-out"},
	{Name: "timeout_batch", Default: "2m", Desc: "Timeout for the expiry sweep"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, AGENDAPRO_* for app) and flags,
// merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "AGENDAPRO", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		APIKey:   appValues.String("api_key"),
		BaseURL:  appValues.String("base_url"),
		SiteName: appValues.String("site_name"),

		SMTPHost:     appValues.String("smtp_host"),
		SMTPPort:     appValues.Int("smtp_port"),
		SMTPSecure:   appValues.Bool("smtp_secure"),
		SMTPUser:     appValues.String("smtp_user"),
		SMTPPass:     appValues.String("smtp_pass"),
		SMTPFrom:     appValues.String("smtp_from"),
		SMTPFromName: appValues.String("smtp_from_name"),

		FirebaseCredentialsFile: appValues.String("firebase_credentials_file"),
		FirebaseCredentialsJSON: appValues.String("firebase_credentials_json"),
		FirebaseProjectID:       appValues.String("firebase_project_id"),

		DefaultTimezone: appValues.String("default_timezone"),
		DefaultLanguage: appValues.String("default_language"),
		DefaultRoleID:   appValues.String("default_role_id"),

		InviteExpiryDays:   appValues.Int("invite_expiry_days"),
		ExpiryBatchSize:    appValues.Int("expiry_batch_size"),
		ExpirySchedule:     appValues.String("expiry_schedule"),
		RateLimitPerMinute: appValues.Int("rate_limit_per_minute"),

		AuditLog: appValues.String("audit_log"),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 15*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
		TimeoutBatch:  appValues.Duration("timeout_batch", 2*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateAppConfig(appCfg)
}

// validateAppConfig holds the checks that do not need WAFFLE's core config.
func validateAppConfig(appCfg AppConfig) error {
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must be set")
	}
	if _, err := time.LoadLocation(appCfg.DefaultTimezone); err != nil || appCfg.DefaultTimezone == "" {
		return fmt.Errorf("default_timezone %q is not a valid IANA time zone", appCfg.DefaultTimezone)
	}
	if appCfg.DefaultRoleID != "" && !primitive.IsValidObjectID(appCfg.DefaultRoleID) {
		return fmt.Errorf("default_role_id %q is not a valid id", appCfg.DefaultRoleID)
	}
	if appCfg.InviteExpiryDays < 0 {
		return fmt.Errorf("invite_expiry_days must not be negative (got %d)", appCfg.InviteExpiryDays)
	}
	if appCfg.ExpiryBatchSize <= 0 {
		return fmt.Errorf("expiry_batch_size must be positive (got %d)", appCfg.ExpiryBatchSize)
	}
	if err := tasks.ValidateSchedule(appCfg.ExpirySchedule); err != nil {
		return fmt.Errorf("expiry_schedule: %w", err)
	}
	switch appCfg.AuditLog {
	case auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
	default:
		return fmt.Errorf("audit_log must be one of all, db, log, off (got %q)", appCfg.AuditLog)
	}
	if appCfg.SMTPHost != "" && appCfg.SMTPFrom == "" {
		return fmt.Errorf("smtp_from must be set when smtp_host is configured")
	}
	return nil
}
