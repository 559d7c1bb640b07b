// Package kernel manages the pybricks IPython kernel registration for
// Jupyter notebooks by shelling out to the local Python installation.
package kernel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
)

const kernelName = "pybricks"

var ErrKernelNotFound = errors.New("kernel: pybricks kernel not installed")

// Manager wraps one local Python installation.
type Manager struct {
	// Python overrides the interpreter. Empty means "python3".
	Python string

	Log zerolog.Logger
}

func (m Manager) python() string {
	if m.Python != "" {
		return m.Python
	}
	return "python3"
}

func (m Manager) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, m.python(), args...)
	cmd.Env = append(os.Environ(), "PYTHONWARNINGS=ignore")
	return cmd
}

// Install registers the pybricks kernel for the current user.
func (m Manager) Install(ctx context.Context) error {
	cmd := m.command(ctx, "-m", "ipykernel", "install", "--user", "--name", kernelName)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("kernel: install: %v: %s", err, out)
	}
	m.Log.Info().Msg("pybricks kernel installed")
	return nil
}

// Remove unregisters the pybricks kernel.
func (m Manager) Remove(ctx context.Context) error {
	cmd := m.command(ctx, "-m", "jupyter_client.kernelspecapp", "remove", kernelName, "-f")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("kernel: remove: %v: %s", err, out)
	}
	m.Log.Info().Msg("pybricks kernel removed")
	return nil
}

// Check reports the installed kernelspec, or ErrKernelNotFound.
func (m Manager) Check(ctx context.Context) (string, error) {
	cmd := m.command(ctx, "-m", "jupyter_client.kernelspecapp", "list", "--json")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("kernel: list: %v", err)
	}
	return findKernelSpec(out, kernelName)
}

func findKernelSpec(listJSON []byte, name string) (string, error) {
	var listing struct {
		Kernelspecs map[string]json.RawMessage `json:"kernelspecs"`
	}
	if err := json.Unmarshal(listJSON, &listing); err != nil {
		return "", fmt.Errorf("kernel: parse kernelspec listing: %v", err)
	}
	spec, ok := listing.Kernelspecs[name]
	if !ok {
		return "", ErrKernelNotFound
	}
	return string(spec), nil
}
