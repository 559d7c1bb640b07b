package session

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/NStrijbosch/pybricksdev/internal/observability"
	"github.com/NStrijbosch/pybricksdev/internal/transport"
)

// DefaultPollInterval bounds how long the executor waits on the
// diagnostic stream before re-checking process liveness. The stream
// may go idle for arbitrary periods while the caller still needs
// timely confirmation of completion.
const DefaultPollInterval = 100 * time.Millisecond

// Runner spawns remote processes and streams their diagnostic output.
type Runner struct {
	// Poll is the liveness re-check interval. Zero means
	// DefaultPollInterval.
	Poll time.Duration

	Log zerolog.Logger
}

// Stream is a cancellable producer of diagnostic output lines from one
// remote process. The channel returned by Lines closes when the
// process exits, the consumer calls Close, or a read error occurs;
// Err distinguishes the error case after the channel has closed.
type Stream struct {
	lines  chan string
	done   chan struct{}
	cancel context.CancelFunc
	proc   transport.Process
	err    error
}

// Lines yields output lines in arrival order. The channel closes on
// termination; check Err afterwards.
func (s *Stream) Lines() <-chan string { return s.lines }

// Err reports the terminal stream error, or nil for a clean exit or
// consumer-initiated stop. Valid once Lines has closed.
func (s *Stream) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Close abandons the stream and releases the remote process and its
// channel. Safe to call at any point and more than once; it returns
// after the release has completed.
func (s *Stream) Close() error {
	s.cancel()
	<-s.done
	return nil
}

// Run spawns remoteCommand on the handle and returns a Stream over its
// diagnostic output. A spawn failure surfaces immediately and no
// stream is produced. The process is released on every exit path:
// normal completion, consumer stop, and read error.
func (r *Runner) Run(ctx context.Context, h transport.Handle, remoteCommand string) (*Stream, error) {
	proc, err := h.Start(ctx, remoteCommand)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProcessSpawn, remoteCommand, err)
	}
	observability.RecordProcessStart()

	poll := r.Poll
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	runCtx, cancel := context.WithCancel(ctx)
	s := &Stream{
		lines:  make(chan string),
		done:   make(chan struct{}),
		cancel: cancel,
		proc:   proc,
	}

	raw := make(chan string, 16)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(proc.Stderr())
		for scanner.Scan() {
			select {
			case raw <- scanner.Text():
			case <-runCtx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			readErr <- err
		}
		close(raw)
	}()

	go r.pump(runCtx, s, raw, readErr, poll)
	return s, nil
}

func (r *Runner) pump(ctx context.Context, s *Stream, raw <-chan string, readErr <-chan error, poll time.Duration) {
	defer close(s.done)
	defer func() {
		if err := s.proc.Close(); err != nil {
			r.Log.Debug().Err(err).Msg("process close")
		}
	}()
	defer close(s.lines)
	defer s.cancel()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case line, ok := <-raw:
			if !ok {
				s.err = terminalReadError(readErr)
				return
			}
			select {
			case s.lines <- line:
			case <-ctx.Done():
				return
			}
		case <-ticker.C:
			if !s.proc.Exited() {
				continue
			}
			// Exit observed. Output bytes can still be in flight
			// between the remote pipe and the reader, and the exited
			// process guarantees the stream reaches EOF, so wait for
			// the reader to hand over everything and close raw rather
			// than bailing on a momentarily empty channel.
			for {
				select {
				case line, ok := <-raw:
					if !ok {
						s.err = terminalReadError(readErr)
						return
					}
					select {
					case s.lines <- line:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func terminalReadError(readErr <-chan error) error {
	select {
	case err := <-readErr:
		return fmt.Errorf("%w: %v", ErrStreamRead, err)
	default:
		return nil
	}
}
