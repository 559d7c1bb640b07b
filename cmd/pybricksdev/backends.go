package main

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/NStrijbosch/pybricksdev/internal/config"
	"github.com/NStrijbosch/pybricksdev/internal/device"
	"github.com/NStrijbosch/pybricksdev/internal/discovery"
	"github.com/NStrijbosch/pybricksdev/internal/ev3"
	"github.com/NStrijbosch/pybricksdev/internal/flash"
	"github.com/NStrijbosch/pybricksdev/internal/session"
	"github.com/NStrijbosch/pybricksdev/internal/transport"
)

func transportAddress(address string) transport.Address {
	return transport.Address(address)
}

func newDialer(cfg config.Config) ev3.Dialer {
	connect, _, _ := cfg.Device.Durations()
	return ev3.Dialer{Config: ev3.Config{
		User:                        cfg.Device.User,
		Password:                    cfg.Device.Password,
		KeyPath:                     cfg.Device.KeyPath,
		KnownHostsPath:              cfg.Device.KnownHostsPath,
		InsecureSkipHostKeyChecking: cfg.Device.InsecureSkipHostKeys,
		Timeout:                     connect,
	}}
}

func newCache(cfg config.Config, log zerolog.Logger) *session.Cache {
	_, probe, _ := cfg.Device.Durations()
	return session.NewCache(newDialer(cfg), session.CacheConfig{
		ProbeTimeout: probe,
		Home:         cfg.Device.Home,
	}, log)
}

func newRunner(cfg config.Config, log zerolog.Logger) *session.Runner {
	_, _, poll := cfg.Device.Durations()
	return &session.Runner{Poll: poll, Log: log}
}

// newBackendRegistry wires the backends this binary ships: ev3dev over
// SSH, with short-range wireless declared but unavailable (its wire
// protocol lives outside this module).
func newBackendRegistry(cfg config.Config, log zerolog.Logger) *device.Registry {
	registry := device.NewRegistry()
	_ = registry.Register(device.KindEV3, func() device.Connection {
		return device.NewEV3(newCache(cfg, log), newRunner(cfg, log), cfg.Device.Home, os.Stdout, log)
	})
	wireless := func() device.Connection {
		return device.Unavailable{
			Kind:   device.KindBLE,
			Reason: "short-range wireless transport is not built into this binary",
		}
	}
	_ = registry.Register(device.KindBLE, wireless)
	_ = registry.Register(device.KindName, wireless)
	return registry
}

// newFinder resolves DNS/mDNS hostnames such as ev3dev.local to
// network addresses, retried with backoff until the brick appears on
// the network.
func newFinder() *discovery.Scanner {
	return &discovery.Scanner{
		Scan: func(ctx context.Context, name string) (transport.Address, bool, error) {
			addrs, err := net.DefaultResolver.LookupHost(ctx, name)
			if err != nil {
				var dnsErr *net.DNSError
				if errors.As(err, &dnsErr) && (dnsErr.IsNotFound || dnsErr.IsTimeout) {
					return "", false, nil
				}
				return "", false, err
			}
			if len(addrs) == 0 {
				return "", false, nil
			}
			return transport.Address(addrs[0]), true, nil
		},
		Backoff: discovery.DefaultBackoff(),
	}
}

// resolveDeviceName searches for a named device for at most timeout.
// Not found is reported as discovery.ErrDeviceNotFound so the caller
// can fall back to other transports.
func resolveDeviceName(ctx context.Context, name string, timeout time.Duration, log zerolog.Logger) (transport.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	address, err := newFinder().Find(ctx, name)
	if err != nil {
		return "", err
	}
	log.Debug().Str("name", name).Str("address", string(address)).Msg("device name resolved")
	return address, nil
}

func newBootloader() flash.Bootloader {
	return flash.Unavailable{
		Reason: "bootloader transport is not built into this binary",
	}
}
