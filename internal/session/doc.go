// Package session owns the remote-session lifecycle.
//
// Ownership boundary:
// - per-address connection cache with liveness probing
// - idempotent remote directory mirroring
// - cancellable streaming remote execution
// - connect/deploy/run/disconnect facade
package session
