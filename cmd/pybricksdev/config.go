package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/NStrijbosch/pybricksdev/internal/config"
)

const defaultProfilePath = "pybricksdev.toml"

// fileProfile mirrors the profile file shape for partial overlays.
type fileProfile struct {
	Device struct {
		User                 string `toml:"user"`
		Password             string `toml:"password"`
		KeyPath              string `toml:"key_path"`
		KnownHostsPath       string `toml:"known_hosts_path"`
		InsecureSkipHostKeys bool   `toml:"insecure_skip_host_keys"`
		Home                 string `toml:"home"`
		ConnectTimeout       string `toml:"connect_timeout"`
		ProbeTimeout         string `toml:"probe_timeout"`
		PollInterval         string `toml:"poll_interval"`
	} `toml:"device"`
	Tools struct {
		MpyCross string `toml:"mpy_cross"`
		Python   string `toml:"python"`
		BuildDir string `toml:"build_dir"`
	} `toml:"tools"`
}

// loadProfile overlays an optional profile file onto the defaults.
// Only keys present in the file override; absent keys keep their
// defaults.
func loadProfile(path string) (config.Config, error) {
	cfg := config.Default()

	explicit := path != ""
	if path == "" {
		path = defaultProfilePath
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return config.Config{}, fmt.Errorf("load profile: %w", err)
		}
		return cfg, nil
	}

	var raw fileProfile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.Config{}, fmt.Errorf("load profile %s: %w", path, err)
	}

	if meta.IsDefined("device", "user") {
		if v := strings.TrimSpace(raw.Device.User); v != "" {
			cfg.Device.User = v
		}
	}
	if meta.IsDefined("device", "password") {
		cfg.Device.Password = raw.Device.Password
	}
	if meta.IsDefined("device", "key_path") {
		cfg.Device.KeyPath = strings.TrimSpace(raw.Device.KeyPath)
	}
	if meta.IsDefined("device", "known_hosts_path") {
		cfg.Device.KnownHostsPath = strings.TrimSpace(raw.Device.KnownHostsPath)
	}
	if meta.IsDefined("device", "insecure_skip_host_keys") {
		cfg.Device.InsecureSkipHostKeys = raw.Device.InsecureSkipHostKeys
	}
	if meta.IsDefined("device", "home") {
		if v := strings.TrimSpace(raw.Device.Home); v != "" {
			cfg.Device.Home = v
		}
	}
	if meta.IsDefined("device", "connect_timeout") {
		cfg.Device.ConnectTimeout = strings.TrimSpace(raw.Device.ConnectTimeout)
	}
	if meta.IsDefined("device", "probe_timeout") {
		cfg.Device.ProbeTimeout = strings.TrimSpace(raw.Device.ProbeTimeout)
	}
	if meta.IsDefined("device", "poll_interval") {
		cfg.Device.PollInterval = strings.TrimSpace(raw.Device.PollInterval)
	}
	if meta.IsDefined("tools", "mpy_cross") {
		cfg.Tools.MpyCross = strings.TrimSpace(raw.Tools.MpyCross)
	}
	if meta.IsDefined("tools", "python") {
		cfg.Tools.Python = strings.TrimSpace(raw.Tools.Python)
	}
	if meta.IsDefined("tools", "build_dir") {
		cfg.Tools.BuildDir = strings.TrimSpace(raw.Tools.BuildDir)
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return cfg, nil
}
