package session

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/NStrijbosch/pybricksdev/internal/observability"
	"github.com/NStrijbosch/pybricksdev/internal/transport"
)

// DefaultHome is the remote directory uploads are mirrored under and
// the file channel is positioned at after connect.
const DefaultHome = "/home/robot"

// State is the lifecycle phase of a Session.
type State int

const (
	StateUnconnected State = iota
	StateConnected
	StateDisconnected
)

// Session binds one external caller to one device connection and
// composes the cache, directory sync, and streaming executor into the
// connect / deploy / run / disconnect lifecycle. Deploy and run may
// repeat on one connection; Disconnect is terminal.
type Session struct {
	cache  *Cache
	runner *Runner
	home   string
	log    zerolog.Logger

	mu      sync.Mutex
	state   State
	address transport.Address
	handle  transport.Handle
}

// NewSession builds an unconnected session over the given cache. Home
// falls back to DefaultHome when empty.
func NewSession(cache *Cache, runner *Runner, home string, log zerolog.Logger) *Session {
	if home == "" {
		home = DefaultHome
	}
	if runner == nil {
		runner = &Runner{Log: log}
	}
	return &Session{
		cache:  cache,
		runner: runner,
		home:   home,
		log:    log,
	}
}

// Connect acquires a live handle for the address, reusing a cached
// connection when possible.
func (s *Session) Connect(ctx context.Context, address transport.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDisconnected {
		return ErrSessionClosed
	}

	h, err := s.cache.Acquire(ctx, address)
	if err != nil {
		return err
	}
	s.address = address
	s.handle = h
	s.state = StateConnected
	return nil
}

// Deploy mirrors localPath's directory structure under the remote home
// and uploads the file, returning the remote path written. An absolute
// localPath (a scratch file outside the project tree) lands at the
// home root by basename instead of mirroring its host directories.
func (s *Session) Deploy(ctx context.Context, localPath string) (string, error) {
	h, err := s.connectedHandle()
	if err != nil {
		return "", err
	}

	files, err := h.Files()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransfer, err)
	}

	mirror := filepath.ToSlash(localPath)
	if filepath.IsAbs(localPath) {
		mirror = path.Base(mirror)
	}

	if err := EnsureRemoteDir(files, s.home, mirror); err != nil {
		return "", err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrTransfer, localPath, err)
	}
	defer f.Close()

	remotePath := path.Join(s.home, mirror)
	if err := files.Put(f, remotePath); err != nil {
		return "", fmt.Errorf("%w: put %s: %v", ErrTransfer, remotePath, err)
	}

	info, err := f.Stat()
	if err == nil {
		observability.RecordUpload(info.Size())
	}
	s.log.Info().Str("local", localPath).Str("remote", remotePath).Msg("deployed")
	return remotePath, nil
}

// RunDeployed launches the deployed artifact and returns a stream of
// the runtime's diagnostic output. The caller drains the stream (and
// closes it on early stop) before disconnecting.
func (s *Session) RunDeployed(ctx context.Context, remotePath string) (*Stream, error) {
	h, err := s.connectedHandle()
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("remote", remotePath).Msg("starting")
	return s.runner.Run(ctx, h, RunScriptCommand(remotePath))
}

// Beep sounds the device speaker, a cheap audible connectivity check.
func (s *Session) Beep(ctx context.Context) error {
	h, err := s.connectedHandle()
	if err != nil {
		return err
	}
	_, err = h.Exec(ctx, beepCommand)
	return err
}

// Disconnect closes the file channel and connection and evicts the
// cache entry. Best-effort: safe after a failed Deploy or Run, close
// errors are logged and never returned. The session must not be
// reused afterward.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected {
		s.state = StateDisconnected
		return
	}

	if files, err := s.handle.Files(); err == nil {
		if err := files.Close(); err != nil {
			s.log.Debug().Err(err).Msg("file channel close")
		}
	}
	if err := s.handle.Close(); err != nil {
		s.log.Debug().Err(err).Msg("connection close")
	}
	s.cache.Evict(s.address)

	s.handle = nil
	s.state = StateDisconnected
	s.log.Info().Str("address", string(s.address)).Msg("disconnected")
}

// State reports the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) connectedHandle() (transport.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateConnected:
		return s.handle, nil
	case StateDisconnected:
		return nil, ErrSessionClosed
	default:
		return nil, ErrNotConnected
	}
}
