// Package config resolves the configuration directory and loads client settings.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// ConfigFile is the optional settings filename inside the config directory.
	ConfigFile = "config.yaml"

	// TokenFile is the durable credential slot filename.
	TokenFile = "token"

	// EnvPrefix prefixes environment overrides, e.g. TODO_BASE_URL.
	EnvPrefix = "TODO"

	// DefaultBaseURL is the API root of a locally running service.
	DefaultBaseURL = "http://localhost:8000/api"

	// DefaultAuthScheme is the Authorization header scheme.
	DefaultAuthScheme = "Bearer"

	// DefaultTimeout is the transport timeout for a single request.
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// BaseURL is the remote API root, without a trailing slash.
	BaseURL string

	// AuthScheme is sent before the credential in the Authorization header.
	AuthScheme string

	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
// Settings come from config.yaml in that directory, then TODO_* environment
// variables, then built-in defaults.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("auth_scheme", DefaultAuthScheme)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	path := filepath.Join(dir, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	}

	cfg := &Config{
		Dir:        dir,
		BaseURL:    strings.TrimRight(v.GetString("base_url"), "/"),
		AuthScheme: v.GetString("auth_scheme"),
		Timeout:    v.GetDuration("timeout"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url: %q", c.BaseURL)
	}
	if strings.TrimSpace(c.AuthScheme) == "" {
		return fmt.Errorf("auth_scheme must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %s", c.Timeout)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// TokenPath returns the path to the durable credential slot.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// HasToken checks if a stored credential exists.
func (c *Config) HasToken() bool {
	info, err := os.Stat(c.TokenPath())
	return err == nil && info.Size() > 0
}

// ConfigPath returns the path to the optional settings file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}
