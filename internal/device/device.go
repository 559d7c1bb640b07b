// Package device owns the per-backend connect/run/disconnect
// capability surface and the address-kind classification that selects
// a backend.
//
// Ownership boundary:
// - address kind classification
// - backend capability interface
// - backend registry primitives
package device

import (
	"context"
	"net"

	"github.com/NStrijbosch/pybricksdev/internal/transport"
)

// Kind selects a backend for an address.
type Kind string

const (
	// KindEV3 is a networked ev3dev brick reached over SSH.
	KindEV3 Kind = "ev3"
	// KindBLE is a Powered Up hub reached over short-range wireless.
	KindBLE Kind = "ble"
	// KindName is a human-readable device name that still needs
	// discovery before a backend can be selected.
	KindName Kind = "name"
)

// Connection is the shape every backend shares: bind to an address,
// deploy-and-run a script, tear down.
type Connection interface {
	Connect(ctx context.Context, address transport.Address) error
	Run(ctx context.Context, scriptPath string) error
	Disconnect()
}

// Classify maps an address string to the backend kind that serves it.
// IP addresses belong to ev3dev bricks, hardware addresses to wireless
// hubs, and anything else is a name that needs discovery first.
func Classify(address string) Kind {
	if ip := net.ParseIP(address); ip != nil {
		return KindEV3
	}
	if _, err := net.ParseMAC(address); err == nil {
		return KindBLE
	}
	return KindName
}
