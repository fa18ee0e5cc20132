package gateway

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// fileConfig is the optional on-disk project configuration, loaded from the
// file named by the serve command's --config flag (codelens.toml, resolved
// against the working directory, by default). This file is the only TOML the
// gateway parses.
type fileConfig struct {
	MountDir         string            `toml:"mount_dir"`
	BindAddr         string            `toml:"bind_addr"`
	AuthEnabled      bool              `toml:"auth_enabled"`
	LanguageBinaries map[string]string `toml:"language_binaries"`
}

// LoadFile overlays the contents of path (a codelens.toml file) onto c. A
// missing file is not an error; a malformed one is.
func LoadFile(c Config, path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c, nil
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return c, fmt.Errorf("gateway: parse %s: %w", path, err)
	}

	if fc.MountDir != "" {
		c.MountDir = fc.MountDir
	}
	if fc.BindAddr != "" {
		c.BindAddr = fc.BindAddr
	}
	if fc.AuthEnabled {
		c.AuthEnabled = true
	}
	for lang, bin := range fc.LanguageBinaries {
		c.LanguageBinaries[lang] = bin
	}
	return c, nil
}
