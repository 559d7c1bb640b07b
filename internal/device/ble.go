package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/NStrijbosch/pybricksdev/internal/transport"
)

// ErrBackendUnavailable marks a backend whose transport is not built
// into this binary.
var ErrBackendUnavailable = errors.New("device: backend unavailable")

// Unavailable is a placeholder Connection for backends whose wire
// protocol lives outside this module; every operation fails with the
// recorded reason.
type Unavailable struct {
	Kind   Kind
	Reason string
}

var _ Connection = Unavailable{}

func (u Unavailable) Connect(ctx context.Context, address transport.Address) error {
	return u.err()
}

func (u Unavailable) Run(ctx context.Context, scriptPath string) error {
	return u.err()
}

func (u Unavailable) Disconnect() {}

func (u Unavailable) err() error {
	return fmt.Errorf("%w: %s: %s", ErrBackendUnavailable, u.Kind, u.Reason)
}
