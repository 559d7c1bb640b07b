package ev3

import (
	"context"
	"sync"

	"golang.org/x/crypto/ssh"

	"github.com/NStrijbosch/pybricksdev/internal/transport"
)

// Handle is an established SSH connection to one brick. It owns the
// ssh client and, once opened, one SFTP channel.
type Handle struct {
	client *ssh.Client

	mu    sync.Mutex
	files *fileChannel
}

var _ transport.Handle = (*Handle)(nil)

// Exec runs a remote command and returns its combined output. The
// session is torn down when ctx expires before completion.
func (h *Handle) Exec(ctx context.Context, cmd string) (string, error) {
	sess, err := h.client.NewSession()
	if err != nil {
		return "", err
	}
	defer sess.Close()

	type result struct {
		out []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		out, err := sess.CombinedOutput(cmd)
		ch <- result{out: out, err: err}
	}()

	select {
	case r := <-ch:
		return string(r.out), r.err
	case <-ctx.Done():
		sess.Close()
		return "", ctx.Err()
	}
}

// Start spawns a remote command with its stderr wired up as the
// diagnostic stream.
func (h *Handle) Start(ctx context.Context, cmd string) (transport.Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess, err := h.client.NewSession()
	if err != nil {
		return nil, err
	}
	stderr, err := sess.StderrPipe()
	if err != nil {
		sess.Close()
		return nil, err
	}
	if err := sess.Start(cmd); err != nil {
		sess.Close()
		return nil, err
	}

	p := &process{sess: sess, stderr: stderr, done: make(chan struct{})}
	go func() {
		p.waitErr = sess.Wait()
		close(p.done)
	}()
	return p, nil
}

// Files returns the SFTP channel, opening it on first use.
func (h *Handle) Files() (transport.FileChannel, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.files != nil && !h.files.closed() {
		return h.files, nil
	}
	files, err := openFileChannel(h.client)
	if err != nil {
		return nil, err
	}
	h.files = files
	return files, nil
}

// Close tears down the SFTP channel (if open) and the SSH connection.
func (h *Handle) Close() error {
	h.mu.Lock()
	files := h.files
	h.files = nil
	h.mu.Unlock()

	if files != nil {
		_ = files.Close()
	}
	return h.client.Close()
}
