package breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/agendapro/internal/app/system/breaker"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

var errProvider = errors.New("provider down")

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	cb := breaker.New(breaker.Config{Name: "test", FailureThreshold: 3, Timeout: time.Hour}, zap.NewNop())

	calls := 0
	fail := func() error { calls++; return errProvider }

	for i := 0; i < 3; i++ {
		if err := breaker.Do(cb, fail); !errors.Is(err, errProvider) {
			t.Fatalf("call %d err = %v", i+1, err)
		}
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("state = %s, want open", cb.State())
	}

	err := breaker.Do(cb, fail)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("err = %v, want ErrOpenState", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestBreaker_IsSuccessfulKeepsCircuitClosed(t *testing.T) {
	errBadToken := errors.New("bad token")
	cb := breaker.New(breaker.Config{
		Name:             "test",
		FailureThreshold: 2,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errBadToken)
		},
	}, nil)

	for i := 0; i < 5; i++ {
		if err := breaker.Do(cb, func() error { return errBadToken }); !errors.Is(err, errBadToken) {
			t.Fatalf("err = %v", err)
		}
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("state = %s, want closed", cb.State())
	}
}
