package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultListenAddr = "127.0.0.1:7545"
	defaultChain      = "ethereum"
	defaultMode       = "mainnet"
	defaultLogLevel   = "info"

	configFile = "config.json"
)

// StatusTimeout bounds CLI calls to the daemon that never prompt. Calls
// that wait on the wallet have no deadline.
const StatusTimeout = 5 * time.Second

// Config holds all w3mask configuration.
type Config struct {
	ListenAddr   string `json:"listen_addr"   env:"W3MASK_LISTEN_ADDR"`
	DaemonURL    string `json:"daemon_url"    env:"W3MASK_DAEMON_URL"`
	DefaultChain string `json:"default_chain" env:"W3MASK_DEFAULT_CHAIN"`
	NetworkMode  string `json:"network_mode"  env:"W3MASK_NETWORK_MODE"` // "mainnet" | "testnet"
	OpenBrowser  bool   `json:"open_browser"  env:"W3MASK_OPEN_BROWSER"`
	LogLevel     string `json:"log_level"     env:"W3MASK_LOG_LEVEL"`

	// internal: config dir path used for Save()
	configDir string
	// file holds the values read from disk, before environment overrides.
	// Set updates it and Save writes it.
	file *Config
}

// Load reads config from dir (or creates defaults), then applies W3MASK_*
// environment overrides. dir defaults to ~/.w3mask.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3mask")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	file := *cfg
	cfg.file = &file

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.configDir = dir
	return cfg, nil
}

// Save writes the file values and everything changed through Set to disk.
// Environment and flag overrides applied after Load are not saved.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	saved := c
	if c.file != nil {
		saved = c.file
	}
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// Daemon returns the base URL the CLI uses to reach the daemon.
func (c *Config) Daemon() string {
	if c.DaemonURL != "" {
		return strings.TrimRight(c.DaemonURL, "/")
	}
	return "http://" + c.ListenAddr
}

// PageURL returns the wallet relay page served by the daemon.
func (c *Config) PageURL() string {
	return c.Daemon() + "/"
}

// Keys lists the settable config keys.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set changes one key from its string form.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := set(c, value); err != nil {
		return err
	}
	if c.file != nil {
		return set(c.file, value)
	}
	return nil
}

// Values returns every key with its current value, in Keys order.
func (c *Config) Values() [][2]string {
	return [][2]string{
		{"daemon_url", c.DaemonURL},
		{"default_chain", c.DefaultChain},
		{"listen_addr", c.ListenAddr},
		{"log_level", c.LogLevel},
		{"network_mode", c.NetworkMode},
		{"open_browser", strconv.FormatBool(c.OpenBrowser)},
	}
}

var setters = map[string]func(*Config, string) error{
	"listen_addr": func(c *Config, v string) error {
		c.ListenAddr = v
		return nil
	},
	"daemon_url": func(c *Config, v string) error {
		c.DaemonURL = v
		return nil
	},
	"default_chain": func(c *Config, v string) error {
		c.DefaultChain = v
		return nil
	},
	"network_mode": func(c *Config, v string) error {
		if v != "mainnet" && v != "testnet" {
			return fmt.Errorf("network_mode must be mainnet or testnet, got %q", v)
		}
		c.NetworkMode = v
		return nil
	},
	"open_browser": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("open_browser: %w", err)
		}
		c.OpenBrowser = b
		return nil
	},
	"log_level": func(c *Config, v string) error {
		c.LogLevel = v
		return nil
	},
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		ListenAddr:   defaultListenAddr,
		DefaultChain: defaultChain,
		NetworkMode:  defaultMode,
		OpenBrowser:  true,
		LogLevel:     defaultLogLevel,
		configDir:    dir,
	}
}
