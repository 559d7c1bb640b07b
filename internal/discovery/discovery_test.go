package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NStrijbosch/pybricksdev/internal/testutil/testlog"
	"github.com/NStrijbosch/pybricksdev/internal/transport"
)

func TestNextBackoffDelayDeterministicNoJitter(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{
		InitialDelay: 250 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
		Jitter:       false,
	}
	if got := NextBackoffDelay(cfg, 1, nil); got != 250*time.Millisecond {
		t.Fatalf("attempt1 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 2, nil); got != 500*time.Millisecond {
		t.Fatalf("attempt2 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 3, nil); got != time.Second {
		t.Fatalf("attempt3 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 6, nil); got != 5*time.Second {
		t.Fatalf("attempt6 got=%v", got)
	}
}

func TestNextBackoffDelayJitterWithoutRngIsHalved(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{InitialDelay: 100 * time.Millisecond, Multiplier: 2.0, Jitter: true}
	if got := NextBackoffDelay(cfg, 2, nil); got != 100*time.Millisecond {
		t.Fatalf("jittered attempt2 got=%v", got)
	}
}

func TestScannerFindsAfterRetries(t *testing.T) {
	testlog.Start(t)
	attempts := 0
	s := &Scanner{
		Scan: func(ctx context.Context, name string) (transport.Address, bool, error) {
			attempts++
			if attempts < 3 {
				return "", false, nil
			}
			return transport.Address("90:84:2b:50:36:43"), true, nil
		},
		Backoff: BackoffConfig{InitialDelay: time.Millisecond, Multiplier: 1.0},
	}

	addr, err := s.Find(context.Background(), "Pybricks Hub")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if addr != transport.Address("90:84:2b:50:36:43") {
		t.Fatalf("unexpected address %q", addr)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 scan attempts, got %d", attempts)
	}
}

func TestScannerNotFoundAtDeadline(t *testing.T) {
	testlog.Start(t)
	s := &Scanner{
		Scan: func(ctx context.Context, name string) (transport.Address, bool, error) {
			return "", false, nil
		},
		Backoff: BackoffConfig{InitialDelay: 10 * time.Millisecond, Multiplier: 1.0},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := s.Find(ctx, "LEGO Bootloader")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestScannerSurfacesScanError(t *testing.T) {
	testlog.Start(t)
	scanErr := errors.New("radio unavailable")
	s := &Scanner{
		Scan: func(ctx context.Context, name string) (transport.Address, bool, error) {
			return "", false, scanErr
		},
	}

	_, err := s.Find(context.Background(), "Pybricks Hub")
	if !errors.Is(err, scanErr) {
		t.Fatalf("expected scan error, got %v", err)
	}
}
