// Package config loads bridge settings from defaults, an optional YAML
// file, and FORMATBRIDGE_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable of the bridge process.
type Config struct {
	// DataDir is the parent of the four exchange directories.
	DataDir string `mapstructure:"data_dir"`

	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	SettleDelay        time.Duration `mapstructure:"settle_delay"`
	DebounceWindow     time.Duration `mapstructure:"debounce_window"`
	SubscriptionBuffer int           `mapstructure:"subscription_buffer"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("data_dir", "data")
	v.SetDefault("host", "localhost")
	v.SetDefault("port", 8080)
	v.SetDefault("settle_delay", 200*time.Millisecond)
	v.SetDefault("debounce_window", 2*time.Second)
	v.SetDefault("subscription_buffer", 64)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("FORMATBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.SettleDelay <= 0 {
		return fmt.Errorf("settle_delay must be positive")
	}
	if c.DebounceWindow < c.SettleDelay {
		return fmt.Errorf("debounce_window must be at least settle_delay")
	}
	return nil
}

// InputDir is the drop zone feeding the transform pipeline.
func (c *Config) InputDir() string { return filepath.Join(c.DataDir, "input") }

// OutputDir receives converted sibling files.
func (c *Config) OutputDir() string { return filepath.Join(c.DataDir, "output") }

// BridgeDir is the drop zone feeding the file-to-API bridge.
func (c *Config) BridgeDir() string { return filepath.Join(c.DataDir, "api-bridge") }

// ExportDir receives on-demand transaction store exports.
func (c *Config) ExportDir() string { return filepath.Join(c.DataDir, "exports") }

// EnsureDirs creates the four exchange directories if absent.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.InputDir(), c.OutputDir(), c.BridgeDir(), c.ExportDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// Addr is the host:port the HTTP server binds.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
