package kernel

import (
	"errors"
	"testing"

	"github.com/NStrijbosch/pybricksdev/internal/testutil/testlog"
)

func TestFindKernelSpecPresent(t *testing.T) {
	testlog.Start(t)
	listing := []byte(`{"kernelspecs": {"pybricks": {"resource_dir": "/home/u/.local/share/jupyter/kernels/pybricks"}}}`)

	spec, err := findKernelSpec(listing, "pybricks")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if spec == "" {
		t.Fatalf("expected kernelspec payload")
	}
}

func TestFindKernelSpecMissing(t *testing.T) {
	testlog.Start(t)
	listing := []byte(`{"kernelspecs": {"python3": {}}}`)

	_, err := findKernelSpec(listing, "pybricks")
	if !errors.Is(err, ErrKernelNotFound) {
		t.Fatalf("expected ErrKernelNotFound, got %v", err)
	}
}

func TestFindKernelSpecMalformed(t *testing.T) {
	testlog.Start(t)
	if _, err := findKernelSpec([]byte("not json"), "pybricks"); err == nil {
		t.Fatalf("expected parse error")
	}
}
