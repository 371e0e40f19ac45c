// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	groupsfeature "github.com/dalemusser/agendapro/internal/app/features/groups"
	invitationsfeature "github.com/dalemusser/agendapro/internal/app/features/invitations"
	notificationsfeature "github.com/dalemusser/agendapro/internal/app/features/notifications"
	usersfeature "github.com/dalemusser/agendapro/internal/app/features/users"
	"github.com/dalemusser/agendapro/internal/app/system/auditlog"
	"github.com/dalemusser/agendapro/internal/app/system/tasks"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	AgendaMongoClient   *mongo.Client
	AgendaMongoDatabase *mongo.Database

	// Services is filled in by Startup. It is a pointer because WAFFLE
	// passes DBDeps by value to each hook.
	Services *Services
}

// Services are the workflows, outbound clients and background workers
// built once at startup and shared by the HTTP handlers.
type Services struct {
	Audit       *auditlog.Logger
	Notifier    *notificationsfeature.Notifier
	Provisioner *groupsfeature.Provisioner
	Invitations *invitationsfeature.Service
	Users       *usersfeature.Service
	Scheduler   *tasks.Scheduler
}
