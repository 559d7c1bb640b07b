package config

import (
	"fmt"
	"os"
)

// Template returns a starter profile file.
func Template() string {
	return deviceTemplate
}

// WriteTemplate writes the starter profile to path, refusing to
// clobber an existing file unless overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(deviceTemplate), 0o600)
}

const deviceTemplate = `[device]
user = "robot"
password = "maker"
home = "/home/robot"
connect_timeout = "10s"
probe_timeout = "2s"
poll_interval = "100ms"

[tools]
mpy_cross = "mpy-cross"
python = "python3"
build_dir = "build"
`
