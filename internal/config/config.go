package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by both binaries.
const (
	EnvBackendURL = "BIZDIR_BACKEND_URL"
	EnvTimeout    = "BIZDIR_TIMEOUT"
	EnvDB         = "BIZDIR_DB"
	EnvLogLevel   = "BIZDIR_LOG_LEVEL"
	EnvLogFormat  = "BIZDIR_LOG_FORMAT"
	EnvProfile    = "BIZDIR_PROFILE"
	EnvAddr       = "BIZDIR_ADDR"
	EnvSecure     = "BIZDIR_SECURE_COOKIES"
)

// ClientConfig holds what every front end needs to reach the backend.
type ClientConfig struct {
	BackendURL string        `yaml:"backend_url"` // Base URL of the directory API
	Timeout    time.Duration `yaml:"timeout"`     // Per-request timeout
	DBPath     string        `yaml:"db"`          // SQLite path for cookies and the search snapshot
	LogLevel   string        `yaml:"log_level"`   // debug, info, warn, error
	LogFormat  string        `yaml:"log_format"`  // text, json
	Profile    string        `yaml:"profile"`     // CLI cookie owner key
}

// ServerConfig holds configuration for the web front end.
type ServerConfig struct {
	ClientConfig `yaml:",inline"`

	Addr        string        `yaml:"addr"`         // Listen address
	Secure      bool          `yaml:"secure"`       // Secure flag on the visitor cookie
	VisitorTTL  time.Duration `yaml:"visitor_ttl"`  // Idle time before a visitor is forgotten
	SubmitRate  float64       `yaml:"submit_rate"`  // Form submissions per second per visitor
	SubmitBurst int           `yaml:"submit_burst"` // Burst allowance for form submissions
}

// DefaultClientConfig returns sensible defaults. BackendURL has no default.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:   15 * time.Second,
		LogLevel:  "info",
		LogFormat: "text",
		Profile:   "default",
	}
}

// DefaultServerConfig returns sensible defaults for the web front end.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ClientConfig: DefaultClientConfig(),
		Addr:         ":8090",
		VisitorTTL:   7 * 24 * time.Hour,
		SubmitRate:   2,
		SubmitBurst:  5,
	}
}

// LoadClientConfig layers defaults, the optional YAML file, .env and the
// environment, in that order.
func LoadClientConfig(file string) (ClientConfig, error) {
	cfg := DefaultClientConfig()
	if err := readYAML(file, &cfg); err != nil {
		return cfg, err
	}
	if err := LoadDotEnv(); err != nil {
		return cfg, err
	}
	applyClientEnv(&cfg)
	return cfg, nil
}

// LoadServerConfig is LoadClientConfig for the web front end.
func LoadServerConfig(file string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	if err := readYAML(file, &cfg); err != nil {
		return cfg, err
	}
	if err := LoadDotEnv(); err != nil {
		return cfg, err
	}
	applyClientEnv(&cfg.ClientConfig)
	cfg.Addr = getenv(EnvAddr, cfg.Addr)
	if v := os.Getenv(EnvSecure); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Secure = b
		}
	}
	return cfg, nil
}

// LoadDotEnv loads the given .env files (".env" when none are given) into
// the environment without overriding variables that are already set.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Validate checks that the backend URL is usable.
func (c ClientConfig) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend URL is required (set %s or --backend)", EnvBackendURL)
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("parse backend URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend URL must be http or https, got %q", c.BackendURL)
	}
	if u.Host == "" {
		return fmt.Errorf("backend URL has no host: %q", c.BackendURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// ResolveDBPath returns DBPath, defaulting to ~/.bizdir/bizdir.db and
// creating the parent directory. ":memory:" is returned unchanged.
func (c ClientConfig) ResolveDBPath() (string, error) {
	if c.DBPath == ":memory:" {
		return c.DBPath, nil
	}
	p := c.DBPath
	if p == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("find home directory: %w", err)
		}
		p = filepath.Join(home, ".bizdir", "bizdir.db")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return "", fmt.Errorf("create %s: %w", filepath.Dir(p), err)
	}
	return p, nil
}

func readYAML(file string, out any) error {
	if file == "" {
		return nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read config %s: %w", file, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config %s: %w", file, err)
	}
	return nil
}

func applyClientEnv(cfg *ClientConfig) {
	cfg.BackendURL = strings.TrimSuffix(getenv(EnvBackendURL, cfg.BackendURL), "/")
	cfg.DBPath = getenv(EnvDB, cfg.DBPath)
	cfg.LogLevel = getenv(EnvLogLevel, cfg.LogLevel)
	cfg.LogFormat = getenv(EnvLogFormat, cfg.LogFormat)
	cfg.Profile = getenv(EnvProfile, cfg.Profile)
	if v := os.Getenv(EnvTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
