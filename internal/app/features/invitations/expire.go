package invitations

import (
	"context"
	"time"

	"github.com/dalemusser/agendapro/internal/app/store/audit"
	"github.com/dalemusser/agendapro/internal/app/system/metrics"
	"github.com/dalemusser/agendapro/internal/app/system/tasks"
	"github.com/dalemusser/agendapro/internal/app/system/timeouts"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"go.uber.org/zap"
)

// ExpireResult summarizes one sweep.
type ExpireResult struct {
	Processed  int   `json:"processed"`
	Expired    int   `json:"expired"`
	Errors     int   `json:"errors"`
	DurationMs int64 `json:"durationMs"`
	HasMore    bool  `json:"hasMore"`
}

// Expire moves up to batchSize overdue PENDING invitations to EXPIRED.
// batchSize <= 0 uses the configured default. Per-item failures are counted
// and the sweep continues; only the initial query can fail the call.
func (s *Service) Expire(ctx context.Context, batchSize int) (ExpireResult, error) {
	if batchSize <= 0 {
		batchSize = s.Cfg.BatchSize
	}
	start := time.Now()

	due, err := s.Invites.ListExpiredPending(ctx, s.now(), int64(batchSize))
	if err != nil {
		return ExpireResult{}, err
	}

	res := ExpireResult{Processed: len(due)}
	for _, inv := range due {
		ok, err := s.Invites.Transition(ctx, inv.ID, models.InvitationExpired, nil)
		if err != nil {
			res.Errors++
			s.Log.Warn("failed to expire invitation",
				zap.String("invitation_id", inv.ID.Hex()),
				zap.Error(err))
			continue
		}
		if !ok {
			// answered or expired by someone else since the query
			continue
		}
		res.Expired++
		s.recordTransition(ctx, inv, inv.InvitedByProfileID, audit.ActionInvitationExpired, map[string]any{
			"trigger":    "sweep",
			"expires_at": inv.ExpiresAt,
		})
	}
	metrics.InvitationsExpiredTotal.Add(float64(res.Expired))

	res.DurationMs = time.Since(start).Milliseconds()
	res.HasMore = res.Processed >= batchSize

	s.Log.Info("invitation expiry sweep",
		zap.Int("processed", res.Processed),
		zap.Int("expired", res.Expired),
		zap.Int("errors", res.Errors),
		zap.Bool("has_more", res.HasMore))
	return res, nil
}

// ExpiryJob runs Expire on schedule, draining full batches until the
// backlog is empty or the job's context ends.
func (s *Service) ExpiryJob(schedule string) tasks.Job {
	return tasks.Job{
		Name:     "invitation-expiry",
		Schedule: schedule,
		Timeout:  timeouts.Batch(),
		Run: func(ctx context.Context) error {
			for {
				res, err := s.Expire(ctx, 0)
				if err != nil {
					return err
				}
				if !res.HasMore || res.Expired == 0 || ctx.Err() != nil {
					return nil
				}
			}
		},
	}
}
