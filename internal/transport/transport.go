// Package transport defines the capability surface a remote-device
// backend must supply to the session layer: command execution, process
// spawning with a readable diagnostic stream, and a file-transfer
// channel. Backends (SSH, or future short-range wireless) implement
// these interfaces; the session layer never touches a wire protocol.
package transport

import (
	"context"
	"io"
)

// Address identifies one remote device: hostname, network address, or
// hardware identifier. It is the session-cache key.
type Address string

// Handle is an established connection to one device. It owns exactly
// one underlying connection plus at most one open file channel.
type Handle interface {
	// Exec runs a remote command and returns its combined output.
	Exec(ctx context.Context, cmd string) (string, error)

	// Start spawns a remote command and returns a handle to the live
	// process. The caller owns the returned Process and must Close it.
	Start(ctx context.Context, cmd string) (Process, error)

	// Files returns the file-transfer channel, opening it on first use.
	Files() (FileChannel, error)

	// Close tears down the file channel (if open) and the connection.
	Close() error
}

// Process is one spawned remote process.
type Process interface {
	// Stderr is the diagnostic stream. The remote runtime writes its
	// print/log output here by convention.
	Stderr() io.Reader

	// Exited reports whether an exit status has been observed.
	Exited() bool

	// Close releases the process and its channel. Idempotent.
	Close() error
}

// FileChannel is the file-transfer capability of a Handle.
type FileChannel interface {
	// Exists reports whether the remote path exists.
	Exists(path string) (bool, error)

	// Mkdir creates one remote directory. The parent must exist.
	Mkdir(path string) error

	// Put writes the contents of r to the remote path.
	Put(r io.Reader, remotePath string) error

	// Getwd returns the channel's current remote directory.
	Getwd() (string, error)

	// Chdir repositions the channel's current remote directory.
	Chdir(path string) error

	// Close releases the channel.
	Close() error
}

// Dialer builds a new Handle for an address. Implemented by backends,
// injected into the session cache.
type Dialer interface {
	Dial(ctx context.Context, address Address) (Handle, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, address Address) (Handle, error)

func (f DialerFunc) Dial(ctx context.Context, address Address) (Handle, error) {
	return f(ctx, address)
}
