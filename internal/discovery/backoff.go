package discovery

import (
	"math/rand"
	"time"
)

// BackoffConfig defines scan retry pacing.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// DefaultBackoff paces repeated scan attempts without flooding the
// radio.
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		InitialDelay: 250 * time.Millisecond,
		Multiplier:   1.5,
		MaxDelay:     2 * time.Second,
		Jitter:       true,
	}
}

// NextBackoffDelay returns the scan delay for attempt N (1-based).
// Delays grow geometrically from InitialDelay until MaxDelay; jitter
// spreads concurrent scanners across [0.5x, 1.5x) of the base delay.
func NextBackoffDelay(cfg BackoffConfig, attempt int, rng *rand.Rand) time.Duration {
	if cfg.InitialDelay <= 0 {
		return 0
	}
	if attempt <= 1 {
		return cfg.InitialDelay
	}

	mult := cfg.Multiplier
	if mult < 1.0 {
		mult = 1.0
	}
	delay := cfg.InitialDelay
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * mult)
		if cfg.MaxDelay > 0 && delay >= cfg.MaxDelay {
			delay = cfg.MaxDelay
			break
		}
	}

	if cfg.Jitter {
		factor := 0.5
		if rng != nil {
			factor += rng.Float64()
		}
		delay = time.Duration(float64(delay) * factor)
	}
	return delay
}
