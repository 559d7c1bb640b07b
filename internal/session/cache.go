package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/NStrijbosch/pybricksdev/internal/observability"
	"github.com/NStrijbosch/pybricksdev/internal/transport"
)

const (
	// DefaultProbeTimeout bounds the liveness probe issued before a
	// cached handle is reused.
	DefaultProbeTimeout = 2 * time.Second

	// probeCommand is a trivial, side-effect-free remote command used
	// as the liveness probe.
	probeCommand = "pwd"
)

// CacheConfig tunes cache behavior.
type CacheConfig struct {
	// ProbeTimeout bounds the liveness probe. Zero means
	// DefaultProbeTimeout.
	ProbeTimeout time.Duration

	// Home is the remote directory the file channel is positioned at
	// after a fresh connect.
	Home string
}

// Cache maps a device address to its most recently established handle.
// It validates liveness before reuse and evicts dead entries, so at
// most one live handle exists per address system-wide.
type Cache struct {
	dialer transport.Dialer
	cfg    CacheConfig
	log    zerolog.Logger

	mu      sync.Mutex
	entries map[transport.Address]transport.Handle

	flight singleflight.Group
}

// NewCache builds a cache around the given dialer.
func NewCache(dialer transport.Dialer, cfg CacheConfig, log zerolog.Logger) *Cache {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	return &Cache{
		dialer:  dialer,
		cfg:     cfg,
		log:     log,
		entries: make(map[transport.Address]transport.Handle),
	}
}

// probeResult is the tagged outcome of a liveness probe. The
// heterogeneous failure modes of a dead handle (timeout, closed
// channel, exec error) collapse into one dead-with-reason variant.
type probeResult struct {
	alive  bool
	reason error
}

func (c *Cache) probe(ctx context.Context, h transport.Handle) probeResult {
	probeCtx, cancel := context.WithTimeout(ctx, c.cfg.ProbeTimeout)
	defer cancel()
	if _, err := h.Exec(probeCtx, probeCommand); err != nil {
		return probeResult{reason: fmt.Errorf("%w: %v", ErrStaleHandle, err)}
	}
	return probeResult{alive: true}
}

// Acquire returns a live handle for the address, reusing the cached
// one when its probe succeeds and reconnecting otherwise. Concurrent
// callers for the same address share a single reconnect attempt.
func (c *Cache) Acquire(ctx context.Context, address transport.Address) (transport.Handle, error) {
	c.mu.Lock()
	cached, ok := c.entries[address]
	c.mu.Unlock()

	if ok {
		res := c.probe(ctx, cached)
		if res.alive {
			observability.RecordProbeReuse(string(address))
			c.log.Debug().Str("address", string(address)).Msg("reusing cached connection")
			return cached, nil
		}
		c.log.Debug().Str("address", string(address)).
			Err(res.reason).Msg("cached connection is stale")
		c.evictIfSame(address, cached)
		observability.RecordEviction(string(address))
	}

	v, err, _ := c.flight.Do(string(address), func() (any, error) {
		// A concurrent caller may have finished reconnecting while
		// this one waited on the probe path.
		c.mu.Lock()
		existing, ok := c.entries[address]
		c.mu.Unlock()
		if ok {
			if res := c.probe(ctx, existing); res.alive {
				return existing, nil
			}
			c.evictIfSame(address, existing)
		}
		return c.connect(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	return v.(transport.Handle), nil
}

// connect dials a fresh handle, positions its file channel at the home
// directory, and stores it. Nothing is cached on failure.
func (c *Cache) connect(ctx context.Context, address transport.Address) (transport.Handle, error) {
	c.log.Info().Str("address", string(address)).Msg("connecting")

	h, err := c.dialer.Dial(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnection, address, err)
	}

	files, err := h.Files()
	if err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("%w: open file channel to %s: %v", ErrConnection, address, err)
	}
	if c.cfg.Home != "" {
		if err := files.Chdir(c.cfg.Home); err != nil {
			_ = h.Close()
			return nil, fmt.Errorf("%w: chdir %s on %s: %v", ErrConnection, c.cfg.Home, address, err)
		}
	}

	c.mu.Lock()
	c.entries[address] = h
	c.mu.Unlock()

	observability.RecordHandshake(string(address))
	c.log.Info().Str("address", string(address)).Msg("connected")
	return h, nil
}

// Evict drops the cache entry for the address, if any. It does not
// close the handle; ownership stays with the caller.
func (c *Cache) Evict(address transport.Address) {
	c.mu.Lock()
	delete(c.entries, address)
	c.mu.Unlock()
}

// evictIfSame removes the entry only if it still maps to h, so a
// replacement installed by a concurrent reconnect is never dropped.
func (c *Cache) evictIfSame(address transport.Address, h transport.Handle) {
	c.mu.Lock()
	if cur, ok := c.entries[address]; ok && cur == h {
		delete(c.entries, address)
	}
	c.mu.Unlock()
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
