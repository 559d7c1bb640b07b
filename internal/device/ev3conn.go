package device

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/NStrijbosch/pybricksdev/internal/session"
	"github.com/NStrijbosch/pybricksdev/internal/transport"
)

// EV3 is the ev3dev backend: one session over a cached SSH connection,
// each Run deploying the script and draining the runtime's diagnostic
// output to out.
type EV3 struct {
	session *session.Session
	out     io.Writer
	log     zerolog.Logger
}

var _ Connection = (*EV3)(nil)

// NewEV3 binds a backend instance to a session cache and output sink.
// A nil runner uses default polling.
func NewEV3(cache *session.Cache, runner *session.Runner, home string, out io.Writer, log zerolog.Logger) *EV3 {
	return &EV3{
		session: session.NewSession(cache, runner, home, log),
		out:     out,
		log:     log,
	}
}

func (e *EV3) Connect(ctx context.Context, address transport.Address) error {
	return e.session.Connect(ctx, address)
}

// Run deploys the script, launches it, and prints each diagnostic line
// as it arrives until the remote process exits.
func (e *EV3) Run(ctx context.Context, scriptPath string) error {
	remotePath, err := e.session.Deploy(ctx, scriptPath)
	if err != nil {
		return err
	}

	stream, err := e.session.RunDeployed(ctx, remotePath)
	if err != nil {
		return err
	}
	defer stream.Close()

	for line := range stream.Lines() {
		fmt.Fprintln(e.out, line)
	}
	return stream.Err()
}

// Beep sounds the brick speaker.
func (e *EV3) Beep(ctx context.Context) error {
	return e.session.Beep(ctx)
}

func (e *EV3) Disconnect() {
	e.session.Disconnect()
}
