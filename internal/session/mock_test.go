package session

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/NStrijbosch/pybricksdev/internal/transport"
)

// mockFiles is an in-memory FileChannel that records every remote
// operation in order.
type mockFiles struct {
	mu    sync.Mutex
	dirs  map[string]bool
	blobs map[string][]byte
	cwd   string
	ops   []string

	statErr  error
	mkdirErr error
	putErr   error
	chdirErr error

	closeCount int
}

func newMockFiles() *mockFiles {
	return &mockFiles{
		dirs:  make(map[string]bool),
		blobs: make(map[string][]byte),
		cwd:   "/",
	}
}

func (f *mockFiles) record(op string) {
	f.ops = append(f.ops, op)
}

func (f *mockFiles) Exists(path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("stat " + path)
	if f.statErr != nil {
		return false, f.statErr
	}
	if f.dirs[path] {
		return true, nil
	}
	_, ok := f.blobs[path]
	return ok, nil
}

func (f *mockFiles) Mkdir(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("mkdir " + path)
	if f.mkdirErr != nil {
		return f.mkdirErr
	}
	f.dirs[path] = true
	return nil
}

func (f *mockFiles) Put(r io.Reader, remotePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("put " + remotePath)
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.blobs[remotePath] = data
	return nil
}

func (f *mockFiles) Getwd() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cwd, nil
}

func (f *mockFiles) Chdir(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("chdir " + path)
	if f.chdirErr != nil {
		return f.chdirErr
	}
	f.cwd = path
	return nil
}

func (f *mockFiles) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCount++
	return nil
}

// mutationCount reports how many remote-state mutations were issued.
func (f *mockFiles) mutationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, op := range f.ops {
		if strings.HasPrefix(op, "mkdir ") || strings.HasPrefix(op, "put ") {
			n++
		}
	}
	return n
}

func (f *mockFiles) opLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.ops))
	copy(out, f.ops)
	return out
}

// mockProcess is a remote process backed by an in-memory pipe so
// tests control when output appears and when the process exits.
type mockProcess struct {
	pr *io.PipeReader
	pw *io.PipeWriter

	exited     atomic.Bool
	closeCount atomic.Int32
}

func newMockProcess() *mockProcess {
	pr, pw := io.Pipe()
	return &mockProcess{pr: pr, pw: pw}
}

func (p *mockProcess) emit(line string) {
	_, _ = p.pw.Write([]byte(line + "\n"))
}

// finish marks the process exited and ends the stream.
func (p *mockProcess) finish() {
	p.exited.Store(true)
	_ = p.pw.Close()
}

func (p *mockProcess) Stderr() io.Reader { return p.pr }
func (p *mockProcess) Exited() bool      { return p.exited.Load() }

func (p *mockProcess) Close() error {
	p.closeCount.Add(1)
	_ = p.pw.Close()
	return nil
}

// mockHandle is a transport handle with scriptable behavior and call
// accounting.
type mockHandle struct {
	execErr   error
	execCalls atomic.Int32

	startProc transport.Process
	startErr  error
	startCmds []string
	startMu   sync.Mutex

	files    *mockFiles
	filesErr error

	closeCount atomic.Int32
}

func newMockHandle() *mockHandle {
	return &mockHandle{files: newMockFiles()}
}

func (h *mockHandle) Exec(ctx context.Context, cmd string) (string, error) {
	h.execCalls.Add(1)
	if h.execErr != nil {
		return "", h.execErr
	}
	return "/home/robot", nil
}

func (h *mockHandle) Start(ctx context.Context, cmd string) (transport.Process, error) {
	h.startMu.Lock()
	h.startCmds = append(h.startCmds, cmd)
	h.startMu.Unlock()
	if h.startErr != nil {
		return nil, h.startErr
	}
	return h.startProc, nil
}

func (h *mockHandle) Files() (transport.FileChannel, error) {
	if h.filesErr != nil {
		return nil, h.filesErr
	}
	return h.files, nil
}

func (h *mockHandle) Close() error {
	h.closeCount.Add(1)
	return nil
}

// mockDialer hands out handles in order and counts handshakes.
type mockDialer struct {
	mu      sync.Mutex
	handles []*mockHandle
	err     error
	dials   int
	delay   func()
}

func (d *mockDialer) Dial(ctx context.Context, address transport.Address) (transport.Handle, error) {
	if d.delay != nil {
		d.delay()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.err != nil {
		return nil, d.err
	}
	if len(d.handles) == 0 {
		h := newMockHandle()
		return h, nil
	}
	h := d.handles[0]
	if len(d.handles) > 1 {
		d.handles = d.handles[1:]
	}
	return h, nil
}

func (d *mockDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}
