package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gravitrone/keyadmin/internal/api"
)

// ErrMissingToken is returned when a command needs a session but the config
// carries no token.
var ErrMissingToken = errors.New("config missing token")

const (
	defaultLogLevel   = "info"
	defaultSearchRate = 5.0
)

// Config holds CLI configuration stored at ~/.keyadmin/config.
type Config struct {
	Token      string  `yaml:"token"`
	Username   string  `yaml:"username,omitempty"`
	BaseURL    string  `yaml:"base_url,omitempty"`
	LogLevel   string  `yaml:"log_level,omitempty"`
	LogFile    string  `yaml:"log_file,omitempty"`
	SearchRate float64 `yaml:"search_rate,omitempty"`
}

// Dir returns the config directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".keyadmin")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), "config")
}

// DefaultLogFile is where the diagnostic log goes when log_file is unset.
func DefaultLogFile() string {
	return filepath.Join(Dir(), "keyadmin.log")
}

// Default returns a config with every default filled in and no token.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the config file. Returns error if missing or insecure.
// A missing file wraps os.ErrNotExist.
func Load() (*Config, error) {
	path := Path()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.SearchRate < 0 {
		return nil, fmt.Errorf("config search_rate must not be negative")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault is Load, but a missing file yields Default().
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// RequireToken fails with ErrMissingToken when no session is stored.
func (c *Config) RequireToken() error {
	if c == nil || strings.TrimSpace(c.Token) == "" {
		return ErrMissingToken
	}
	return nil
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0600)
}

// SaveToken stores token and persists the file.
func (c *Config) SaveToken(token string) error {
	c.Token = token
	return c.Save()
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = api.DefaultBaseURL
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaultLogLevel
	}
	if strings.TrimSpace(c.LogFile) == "" {
		c.LogFile = DefaultLogFile()
	}
	if c.SearchRate == 0 {
		c.SearchRate = defaultSearchRate
	}
}
