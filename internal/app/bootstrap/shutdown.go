// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops the scheduler and tears down the DB connection.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Services != nil && deps.Services.Scheduler != nil {
		logger.Info("stopping scheduler")
		deps.Services.Scheduler.Stop(ctx)
	}
	if deps.AgendaMongoClient != nil {
		logger.Info("disconnecting Agenda Pro MongoDB client")
		if err := deps.AgendaMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
