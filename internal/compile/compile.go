// Package compile invokes the external mpy-cross compiler to turn a
// MicroPython script into a bytecode blob. The session layer consumes
// only the resulting bytes.
package compile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// DefaultTool is the cross-compiler binary looked up on PATH.
	DefaultTool = "mpy-cross"

	// DefaultBuildDir receives intermediate .mpy artifacts.
	DefaultBuildDir = "build"

	tmpScriptName = "_tmp.py"
)

var (
	ErrCompile  = errors.New("compile: mpy-cross failed")
	ErrBuildDir = errors.New("compile: build dir unavailable")
)

// Compiler wraps one mpy-cross installation.
type Compiler struct {
	// Tool overrides the mpy-cross binary. Empty means DefaultTool.
	Tool string

	// BuildDir overrides where artifacts are written. Empty means
	// DefaultBuildDir.
	BuildDir string

	Log zerolog.Logger
}

func (c Compiler) tool() string {
	if c.Tool != "" {
		return c.Tool
	}
	return DefaultTool
}

func (c Compiler) buildDir() string {
	if c.BuildDir != "" {
		return c.BuildDir
	}
	return DefaultBuildDir
}

// Version returns the cross-compiler's version banner.
func (c Compiler) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, c.tool(), "--version").Output()
	if err != nil {
		return "", fmt.Errorf("%w: version: %v", ErrCompile, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CompileFile cross-compiles the script at path and returns the
// bytecode blob.
func (c Compiler) CompileFile(ctx context.Context, path string) ([]byte, error) {
	if err := c.ensureBuildDir(); err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mpyPath := filepath.Join(c.buildDir(), stem+".mpy")

	cmd := exec.CommandContext(ctx, c.tool(), path, "-mno-unicode", "-o", mpyPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrCompile, path, err, strings.TrimSpace(string(out)))
	}

	blob, err := os.ReadFile(mpyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read artifact: %v", ErrCompile, err)
	}
	c.Log.Debug().Str("script", path).Int("bytes", len(blob)).Msg("compiled")
	return blob, nil
}

// CompileString writes an inline script to the build dir and compiles
// it as a regular file.
func (c Compiler) CompileString(ctx context.Context, script string) ([]byte, error) {
	if err := c.ensureBuildDir(); err != nil {
		return nil, err
	}
	pyPath := filepath.Join(c.buildDir(), tmpScriptName)
	if err := os.WriteFile(pyPath, []byte(script+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("%w: write temp script: %v", ErrCompile, err)
	}
	return c.CompileFile(ctx, pyPath)
}

func (c Compiler) ensureBuildDir() error {
	dir := c.buildDir()
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return fmt.Errorf("%w: a file named %s already exists", ErrBuildDir, dir)
	case os.IsNotExist(err):
		if err := os.Mkdir(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrBuildDir, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrBuildDir, err)
	}
}

// SaveScript writes a Python one-liner to a temporary .py file and
// returns its path, so inline scripts flow through the same compile
// and deploy path as files.
func SaveScript(script string) (string, error) {
	f, err := os.CreateTemp("", "pybricksdev-*.py")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(script + "\n"); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}
