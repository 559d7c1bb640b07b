package session

import (
	"errors"
	"testing"

	"github.com/NStrijbosch/pybricksdev/internal/testutil/testlog"
)

func TestEnsureRemoteDirCreatesMissingPrefixes(t *testing.T) {
	testlog.Start(t)
	files := newMockFiles()

	if err := EnsureRemoteDir(files, "/home/robot", "demo/hello.py"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !files.dirs["/home/robot/demo"] {
		t.Fatalf("expected /home/robot/demo to be created, ops=%v", files.opLog())
	}
}

func TestEnsureRemoteDirNestedOrder(t *testing.T) {
	testlog.Start(t)
	files := newMockFiles()

	if err := EnsureRemoteDir(files, "/home/robot", "a/b/c.py"); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	var mkdirs []string
	for _, op := range files.opLog() {
		if len(op) > 6 && op[:6] == "mkdir " {
			mkdirs = append(mkdirs, op[6:])
		}
	}
	want := []string{"/home/robot/a", "/home/robot/a/b"}
	if len(mkdirs) != len(want) {
		t.Fatalf("mkdir count: got %v want %v", mkdirs, want)
	}
	for i := range want {
		if mkdirs[i] != want[i] {
			t.Fatalf("mkdir order: got %v want %v", mkdirs, want)
		}
	}
}

func TestEnsureRemoteDirIdempotent(t *testing.T) {
	testlog.Start(t)
	files := newMockFiles()

	if err := EnsureRemoteDir(files, "/home/robot", "demo/nested/hello.py"); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	before := files.mutationCount()

	if err := EnsureRemoteDir(files, "/home/robot", "demo/nested/hello.py"); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if got := files.mutationCount(); got != before {
		t.Fatalf("second call issued %d extra mutations", got-before)
	}
}

func TestEnsureRemoteDirRootFileIsNoop(t *testing.T) {
	testlog.Start(t)
	files := newMockFiles()

	if err := EnsureRemoteDir(files, "/home/robot", "hello.py"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if ops := files.opLog(); len(ops) != 0 {
		t.Fatalf("expected zero remote calls, got %v", ops)
	}
}

func TestEnsureRemoteDirSurfacesTransportError(t *testing.T) {
	testlog.Start(t)
	files := newMockFiles()
	files.statErr = errors.New("connection reset")

	err := EnsureRemoteDir(files, "/home/robot", "demo/hello.py")
	if !errors.Is(err, ErrRemoteFilesystem) {
		t.Fatalf("expected ErrRemoteFilesystem, got %v", err)
	}
}
