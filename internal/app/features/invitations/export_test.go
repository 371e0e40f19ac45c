package invitations

import (
	"time"

	"github.com/dalemusser/agendapro/internal/domain/models"
)

// SetClock replaces the service clock.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SetBeforeAcceptRecorded installs a hook that runs just before an accept
// writes ACCEPTED.
func (s *Service) SetBeforeAcceptRecorded(f func(models.GroupInvitation)) { s.beforeAcceptRecorded = f }
