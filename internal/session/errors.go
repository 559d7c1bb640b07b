package session

import "errors"

var (
	// ErrConnection marks a failed handshake, authentication, or
	// network-unreachable condition during connect. Fatal to the
	// Acquire call; never retried internally.
	ErrConnection = errors.New("session: connection failed")

	// ErrStaleHandle marks a cached handle whose liveness probe
	// failed. Recovered locally by reconnect; callers never see it
	// unless the reconnect also fails.
	ErrStaleHandle = errors.New("session: stale handle")

	// ErrRemoteFilesystem marks a failed remote existence check or
	// directory creation. Partial progress is kept; retry completes it.
	ErrRemoteFilesystem = errors.New("session: remote filesystem operation failed")

	// ErrTransfer marks a failed file upload.
	ErrTransfer = errors.New("session: file transfer failed")

	// ErrProcessSpawn marks a failed remote process start. No output
	// stream is produced.
	ErrProcessSpawn = errors.New("session: process spawn failed")

	// ErrStreamRead marks a transport-level read error on the
	// diagnostic stream, distinguishable from normal end-of-stream.
	ErrStreamRead = errors.New("session: stream read failed")

	// ErrSessionClosed marks use of a session after Disconnect.
	ErrSessionClosed = errors.New("session: session is closed")

	// ErrNotConnected marks a Deploy or Run attempt before Connect.
	ErrNotConnected = errors.New("session: not connected")
)
