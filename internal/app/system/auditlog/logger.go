// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"

	"github.com/dalemusser/agendapro/internal/app/store/audit"
	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Logging destinations.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// Event is what workflows hand to the logger; Details is serialized to JSON
// before it is stored.
type Event struct {
	GroupID    *primitive.ObjectID
	ProfileID  *primitive.ObjectID
	Action     string
	EntityType string
	EntityID   string
	Details    map[string]any
}

// Logger writes audit events. Writes are best-effort: failures are logged
// and never returned to the caller.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	mode   string
}

// New creates a new audit Logger. An unknown mode is treated as ModeAll.
func New(store *audit.Store, zapLog *zap.Logger, mode string) *Logger {
	switch mode {
	case ModeAll, ModeDB, ModeLog, ModeOff:
	default:
		mode = ModeAll
	}
	return &Logger{store: store, zapLog: zapLog, mode: mode}
}

// Record stores an audit event according to the configured mode.
// A nil Logger is a no-op so tests can pass nil.
func (l *Logger) Record(ctx context.Context, ev Event) {
	if l == nil || l.mode == ModeOff {
		return
	}

	var details string
	if len(ev.Details) > 0 {
		b, err := json.Marshal(ev.Details)
		if err != nil {
			l.zapLog.Warn("audit details not serializable",
				zap.String("action", ev.Action), zap.Error(err))
		} else {
			details = string(b)
		}
	}

	if l.mode == ModeAll || l.mode == ModeLog {
		fields := []zap.Field{
			zap.Bool("audit", true),
			zap.String("action", ev.Action),
			zap.String("entity_type", ev.EntityType),
			zap.String("entity_id", ev.EntityID),
		}
		if ev.GroupID != nil {
			fields = append(fields, zap.String("group_id", ev.GroupID.Hex()))
		}
		if ev.ProfileID != nil {
			fields = append(fields, zap.String("profile_id", ev.ProfileID.Hex()))
		}
		if details != "" {
			fields = append(fields, zap.String("details", details))
		}
		l.zapLog.Info("audit event", fields...)
	}

	if l.mode == ModeAll || l.mode == ModeDB {
		err := l.store.Log(ctx, audit.Entry{
			GroupID:    ev.GroupID,
			ProfileID:  ev.ProfileID,
			Action:     ev.Action,
			EntityType: ev.EntityType,
			EntityID:   ev.EntityID,
			Details:    details,
		})
		if err != nil {
			l.zapLog.Warn("failed to store audit event",
				zap.Error(err),
				zap.String("action", ev.Action),
			)
		}
	}
}

// IDPtr is a small helper for the optional id fields of Event.
func IDPtr(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}
