// Package config loads client settings from an optional TOML file
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
)

// Config holds the client settings
type Config struct {
	// Server is host:port for tcp or a ws:// URL for ws
	Server string `toml:"server"`
	// Network is "tcp" or "ws"
	Network string `toml:"network"`
	// LogFile receives log output; the terminal is owned by the UI
	LogFile string `toml:"log_file"`
}

// Defaults
const (
	DefaultServer  = "127.0.0.1:5000"
	DefaultNetwork = "tcp"
	DefaultLogFile = "netbattle.log"
)

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server:  DefaultServer,
		Network: DefaultNetwork,
		LogFile: DefaultLogFile,
	}
}

// Load reads path over the defaults. A missing file is not an error
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that the settings can be used to connect
func (c Config) Validate() error {
	if c.Server == "" {
		return errors.New("server address is required")
	}
	switch c.Network {
	case "tcp", "ws":
	default:
		return fmt.Errorf("unsupported network %q (want tcp or ws)", c.Network)
	}
	return nil
}
