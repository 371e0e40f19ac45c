package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/agendapro/internal/app/system/timeouts"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Short: time.Second, Batch: 10 * time.Minute})
	if timeouts.Short() != time.Second || timeouts.Batch() != 10*time.Minute {
		t.Errorf("overrides not applied: %+v", timeouts.Current())
	}
	if timeouts.Medium() != timeouts.DefaultMedium {
		t.Errorf("zero value should keep the default, got %s", timeouts.Medium())
	}

	timeouts.Reset()
	if timeouts.Short() != timeouts.DefaultShort {
		t.Errorf("Reset: short = %s", timeouts.Short())
	}
}

func TestWithTimeout_LogsDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, zap.New(core), "slow op")
	<-ctx.Done()
	cancel()

	if logs.FilterMessage("operation timed out").Len() != 1 {
		t.Errorf("expected one timeout warning, got %d", logs.Len())
	}

	ctx, cancel = timeouts.WithTimeout(context.Background(), time.Minute, zap.New(core), "fast op")
	cancel()
	_ = ctx
	if logs.FilterMessage("operation timed out").Len() != 1 {
		t.Error("a cancelled context must not log a timeout")
	}
}
