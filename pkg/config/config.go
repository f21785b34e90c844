// Package config loads client configuration from an optional YAML file with
// environment-variable overrides. Defaults mirror the backend's expectations:
// a local API on :8080, 30s per call, 10s polls bounded at 30 attempts.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that reads from YAML duration strings such as
// "10s" or "1m30s".
type Duration time.Duration

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("config: duration must be a string like \"10s\"")
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config is the full client configuration.
type Config struct {
	// BaseURL is the API root, without the version prefix.
	BaseURL string `yaml:"base_url"`
	// APIPrefix is appended to BaseURL for every call.
	APIPrefix string `yaml:"api_prefix"`
	// TokenDir holds the persisted session token.
	TokenDir string `yaml:"token_dir"`
	// Timeout bounds each outbound call.
	Timeout Duration `yaml:"timeout"`
	// LogoutOnForbidden controls whether a 403 purges the session the way
	// a 401 does.
	LogoutOnForbidden bool `yaml:"logout_on_forbidden"`

	Poll PollConfig `yaml:"poll"`
	Log  LogConfig  `yaml:"log"`

	// OTLPEndpoint enables trace export when non-empty.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// PollConfig bounds pipeline completion polling.
type PollConfig struct {
	Interval    Duration `yaml:"interval"`
	MaxAttempts uint     `yaml:"max_attempts"`
	SkewWindow  Duration `yaml:"skew_window"`
}

// LogConfig tunes structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		BaseURL:           "http://localhost:8080",
		APIPrefix:         "/api/v1",
		TokenDir:          defaultTokenDir(),
		Timeout:           Duration(30 * time.Second),
		LogoutOnForbidden: true,
		Poll: PollConfig{
			Interval:    Duration(10 * time.Second),
			MaxAttempts: 30,
			SkewWindow:  Duration(time.Minute),
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads path when it exists, then applies environment overrides. An
// empty path skips the file stage entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing file is fine; env and defaults carry the day.
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// APIRoot joins the base URL and version prefix.
func (c Config) APIRoot() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.Trim(c.APIPrefix, "/")
}

func (c *Config) applyEnv() {
	if v := os.Getenv("INSK_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("INSK_API_PREFIX"); v != "" {
		c.APIPrefix = v
	}
	if v := os.Getenv("INSK_TOKEN_DIR"); v != "" {
		c.TokenDir = v
	}
	if v := os.Getenv("INSK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = Duration(d)
		}
	}
	if v := os.Getenv("INSK_LOGOUT_ON_FORBIDDEN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.LogoutOnForbidden = b
		}
	}
	if v := os.Getenv("INSK_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Poll.Interval = Duration(d)
		}
	}
	if v := os.Getenv("INSK_POLL_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			c.Poll.MaxAttempts = uint(n)
		}
	}
	if v := os.Getenv("INSK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("INSK_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("INSK_OTLP_ENDPOINT"); v != "" {
		c.OTLPEndpoint = v
	}
}

func (c Config) validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("config: base_url required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive")
	}
	if c.Poll.Interval <= 0 || c.Poll.MaxAttempts == 0 {
		return fmt.Errorf("config: poll interval and max_attempts must be positive")
	}
	return nil
}

func defaultTokenDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".insk"
	}
	return filepath.Join(home, ".insk")
}
