// Package config loads and validates the TOML device-profile
// configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DeviceConfig carries the credentials and session tuning for one
// class of devices.
type DeviceConfig struct {
	User                 string `toml:"user"`
	Password             string `toml:"password"`
	KeyPath              string `toml:"key_path"`
	KnownHostsPath       string `toml:"known_hosts_path"`
	InsecureSkipHostKeys bool   `toml:"insecure_skip_host_keys"`
	Home                 string `toml:"home"`
	ConnectTimeout       string `toml:"connect_timeout"`
	ProbeTimeout         string `toml:"probe_timeout"`
	PollInterval         string `toml:"poll_interval"`
}

// ToolConfig points at the local collaborator binaries.
type ToolConfig struct {
	MpyCross string `toml:"mpy_cross"`
	Python   string `toml:"python"`
	BuildDir string `toml:"build_dir"`
}

// Config is the root of the profile file.
type Config struct {
	Device DeviceConfig `toml:"device"`
	Tools  ToolConfig   `toml:"tools"`
}

// Load reads path, fills defaults, and validates.
func Load(path string) (Config, error) {
	var cfg Config
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	fillDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when no profile file exists:
// ev3dev factory credentials and standard timings.
func Default() Config {
	var cfg Config
	fillDefaults(&cfg)
	return cfg
}

func fillDefaults(cfg *Config) {
	if cfg.Device.User == "" {
		cfg.Device.User = "robot"
	}
	if cfg.Device.Password == "" && cfg.Device.KeyPath == "" {
		cfg.Device.Password = "maker"
	}
	if cfg.Device.Home == "" {
		cfg.Device.Home = "/home/robot"
	}
	if cfg.Device.ConnectTimeout == "" {
		cfg.Device.ConnectTimeout = "10s"
	}
	if cfg.Device.ProbeTimeout == "" {
		cfg.Device.ProbeTimeout = "2s"
	}
	if cfg.Device.PollInterval == "" {
		cfg.Device.PollInterval = "100ms"
	}
	if cfg.Tools.MpyCross == "" {
		cfg.Tools.MpyCross = "mpy-cross"
	}
	if cfg.Tools.Python == "" {
		cfg.Tools.Python = "python3"
	}
	if cfg.Tools.BuildDir == "" {
		cfg.Tools.BuildDir = "build"
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

// Validate rejects profiles the session layer cannot use.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Device.User) == "" {
		return fmt.Errorf("device config missing user")
	}
	if cfg.Device.Password == "" && strings.TrimSpace(cfg.Device.KeyPath) == "" {
		return fmt.Errorf("device config needs a password or key_path")
	}
	if !strings.HasPrefix(cfg.Device.Home, "/") {
		return fmt.Errorf("device home must be absolute: %q", cfg.Device.Home)
	}
	for _, field := range []struct {
		name, value string
	}{
		{"connect_timeout", cfg.Device.ConnectTimeout},
		{"probe_timeout", cfg.Device.ProbeTimeout},
		{"poll_interval", cfg.Device.PollInterval},
	} {
		if _, err := time.ParseDuration(field.value); err != nil {
			return fmt.Errorf("device %s invalid: %w", field.name, err)
		}
	}
	return nil
}

// Durations returns the parsed timing fields. Call after Validate.
func (d DeviceConfig) Durations() (connect, probe, poll time.Duration) {
	connect, _ = time.ParseDuration(d.ConnectTimeout)
	probe, _ = time.ParseDuration(d.ProbeTimeout)
	poll, _ = time.ParseDuration(d.PollInterval)
	return connect, probe, poll
}
