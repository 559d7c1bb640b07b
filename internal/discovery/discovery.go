// Package discovery resolves human-readable device names to
// addresses. The actual radio scan is a collaborator supplied as a
// ScanFunc; this package owns the retry pacing and the overall
// deadline.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/NStrijbosch/pybricksdev/internal/transport"
)

// ErrDeviceNotFound marks a name that no scan attempt resolved before
// the deadline.
var ErrDeviceNotFound = errors.New("discovery: device not found")

// Finder resolves a device name to an address.
type Finder interface {
	Find(ctx context.Context, name string) (transport.Address, error)
}

// ScanFunc performs one scan attempt. found=false with a nil error
// means the name was not seen this attempt.
type ScanFunc func(ctx context.Context, name string) (address transport.Address, found bool, err error)

// Scanner drives repeated scan attempts paced by backoff until the
// name resolves or the caller's context expires.
type Scanner struct {
	Scan    ScanFunc
	Backoff BackoffConfig

	// Rng makes jitter deterministic in tests. Nil uses a fixed
	// mid-range factor.
	Rng *rand.Rand
}

var _ Finder = (*Scanner)(nil)

// Find scans for the name until it resolves. The caller bounds the
// search with a context deadline.
func (s *Scanner) Find(ctx context.Context, name string) (transport.Address, error) {
	for attempt := 1; ; attempt++ {
		address, found, err := s.Scan(ctx, name)
		if err != nil {
			return "", fmt.Errorf("scan for %q: %w", name, err)
		}
		if found {
			return address, nil
		}

		delay := NextBackoffDelay(s.Backoff, attempt, s.Rng)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("%w: %q: %v", ErrDeviceNotFound, name, ctx.Err())
		}
	}
}
