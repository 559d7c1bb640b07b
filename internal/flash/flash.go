// Package flash defines the firmware-flashing collaborator surface.
// The bootloader wire protocol itself lives outside this module; the
// CLI only depends on this interface.
package flash

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"time"

	"github.com/NStrijbosch/pybricksdev/internal/transport"
)

// ErrBootloaderUnavailable marks a flash attempt on a binary built
// without a bootloader transport.
var ErrBootloaderUnavailable = errors.New("flash: bootloader transport unavailable")

// FirmwareMetadata describes one firmware image.
type FirmwareMetadata struct {
	DeviceID    string
	FirmwareVer string
	Checksum    uint32
	MaxSize     int
}

// Bootloader flashes firmware onto a device in bootloader mode.
type Bootloader interface {
	// Connect binds to the device advertising as a bootloader.
	Connect(ctx context.Context, address transport.Address) error

	// Flash erases and writes the firmware image, pacing packets by
	// delay.
	Flash(ctx context.Context, firmware []byte, meta FirmwareMetadata, delay time.Duration) error

	// Disconnect releases the bootloader connection.
	Disconnect()
}

// ReadFirmware loads a firmware image and derives its metadata.
func ReadFirmware(path string) ([]byte, FirmwareMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, FirmwareMetadata{}, fmt.Errorf("flash: read firmware: %w", err)
	}
	meta := FirmwareMetadata{
		Checksum: crc32.ChecksumIEEE(data),
		MaxSize:  len(data),
	}
	return data, meta, nil
}

// Unavailable satisfies Bootloader for binaries that declare the kind
// but do not carry its wire protocol.
type Unavailable struct {
	Reason string
}

var _ Bootloader = Unavailable{}

func (u Unavailable) Connect(context.Context, transport.Address) error {
	return fmt.Errorf("%w: %s", ErrBootloaderUnavailable, u.Reason)
}

func (u Unavailable) Flash(context.Context, []byte, FirmwareMetadata, time.Duration) error {
	return fmt.Errorf("%w: %s", ErrBootloaderUnavailable, u.Reason)
}

func (u Unavailable) Disconnect() {}
