// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (AGENDAPRO_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers ports, TLS, logging and CORS; everything specific to Agenda Pro
// lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Shared key required on /api/* when set
	APIKey string

	// Base URL for invitation links (e.g., "https://agenda.example.com")
	BaseURL  string
	SiteName string

	// Email/SMTP configuration; blank host disables email
	SMTPHost     string
	SMTPPort     int
	SMTPSecure   bool // implicit TLS instead of STARTTLS
	SMTPUser     string
	SMTPPass     string
	SMTPFrom     string
	SMTPFromName string

	// Firebase Cloud Messaging; no credentials disables push
	FirebaseCredentialsFile string
	FirebaseCredentialsJSON string
	FirebaseProjectID       string

	// Defaults for new profiles and groups
	DefaultTimezone string
	DefaultLanguage string
	DefaultRoleID   string // hex ObjectID or blank

	// Invitations
	InviteExpiryDays   int
	ExpiryBatchSize    int
	ExpirySchedule     string // cron spec; blank disables the scheduled sweep
	RateLimitPerMinute int    // per client IP on invite/respond; 0 disables

	// Audit logging: "all" (db+log), "db", "log", or "off"
	AuditLog string

	// Per-operation timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
	TimeoutBatch  time.Duration
}
