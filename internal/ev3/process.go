package ev3

import (
	"io"
	"sync"

	"golang.org/x/crypto/ssh"
)

// process is one spawned remote command. The exit status is observed
// by a background Wait; the ssh session is released exactly once.
type process struct {
	sess    *ssh.Session
	stderr  io.Reader
	done    chan struct{}
	waitErr error

	closeOnce sync.Once
	closeErr  error
}

func (p *process) Stderr() io.Reader { return p.stderr }

func (p *process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *process) Close() error {
	p.closeOnce.Do(func() {
		if err := p.sess.Close(); err != nil && err != io.EOF {
			p.closeErr = err
		}
	})
	return p.closeErr
}
