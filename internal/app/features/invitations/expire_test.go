package invitations_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/agendapro/internal/app/features/invitations"
	"github.com/dalemusser/agendapro/internal/domain/models"
)

func TestExpire_SweepIsIdempotent(t *testing.T) {
	h := newHarness(t)

	due := h.invite(t, "due@example.com", func(in *invitations.InviteInput) { in.ExpiryDays = intPtr(0) }).Invitation
	live := h.invite(t, "live@example.com", nil).Invitation

	h.svc.SetClock(func() time.Time { return time.Now().UTC().Add(time.Minute) })

	first, err := h.svc.Expire(h.ctx, 0)
	if err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if first.Processed != 1 || first.Expired != 1 || first.Errors != 0 {
		t.Errorf("first sweep = %+v, want 1 processed and expired", first)
	}
	if first.HasMore {
		t.Error("hasMore should be false for a partial batch")
	}
	if got := h.invitation(t, due.ID).Status; got != models.InvitationExpired {
		t.Errorf("due status = %q, want EXPIRED", got)
	}
	if got := h.invitation(t, live.ID).Status; got != models.InvitationPending {
		t.Errorf("live status = %q, want PENDING", got)
	}

	second, err := h.svc.Expire(h.ctx, 0)
	if err != nil {
		t.Fatalf("second Expire: %v", err)
	}
	if second.Expired != 0 || second.Processed != 0 {
		t.Errorf("second sweep = %+v, want nothing to do", second)
	}
}

func TestExpire_BatchReportsHasMore(t *testing.T) {
	h := newHarness(t)
	for _, e := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		h.invite(t, e, func(in *invitations.InviteInput) { in.ExpiryDays = intPtr(0) })
	}
	h.svc.SetClock(func() time.Time { return time.Now().UTC().Add(time.Minute) })

	res, err := h.svc.Expire(h.ctx, 2)
	if err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if res.Expired != 2 || !res.HasMore {
		t.Errorf("result = %+v, want 2 expired with more", res)
	}

	job := h.svc.ExpiryJob("@every 1m")
	if job.Name == "" || job.Schedule != "@every 1m" {
		t.Errorf("job = %+v", job)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("job run: %v", err)
	}
	if n := h.fx.Count(h.ctx, "group_invitations", map[string]any{"status": models.InvitationPending}); n != 0 {
		t.Errorf("pending after job = %d, want 0", n)
	}
}
