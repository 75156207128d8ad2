package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultPort        = 443
	DefaultThreshold   = 14 * 24 * time.Hour
	DefaultProbeTime   = 10 * time.Second
	DefaultRunDeadline = 60 * time.Second
	DefaultMaxInFlight = 8
)

// Config is the top-level certpatrol configuration.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	// Source says where the raw target list text is fetched from.
	Source SourceConfig `yaml:"source"`

	// Checks holds the per-run check parameters.
	Checks ChecksConfig `yaml:"checks"`

	// Sinks lists where finished reports are delivered.
	Sinks SinksConfig `yaml:"sinks"`

	// Metrics configures the optional Prometheus exposition listener.
	Metrics MetricsConfig `yaml:"metrics"`

	// Interval, when positive, reruns the check on a ticker instead of
	// exiting after one invocation.
	Interval time.Duration `yaml:"interval"`
}

// SourceConfig describes the target-list provider.
type SourceConfig struct {
	// Type is one of: file | http.
	Type string `yaml:"type"`

	// Path is the target list file, used when Type == "file".
	Path string `yaml:"path"`

	// URL is the target list endpoint, used when Type == "http".
	URL string `yaml:"url"`

	// Auth optionally adds a header to HTTP fetches.
	Auth SourceAuth `yaml:"auth"`
}

// SourceAuth adds one authentication header to HTTP source fetches.
type SourceAuth struct {
	// Header is the HTTP header name to send the credential in.
	Header string `yaml:"header"`

	// KeyEnv is the name of the environment variable holding the value.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the credential resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a SourceAuth) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// ChecksConfig holds the tunables for one check run.
type ChecksConfig struct {
	// Port is the default TLS port for targets without an override.
	Port int `yaml:"port"`

	// ExpiryThreshold is the default near-expiry window.
	ExpiryThreshold time.Duration `yaml:"expiry_threshold"`

	// ProbeTimeout bounds a single dial + handshake.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// RunDeadline bounds the whole invocation; targets still unfinished
	// at the deadline are reported as network timeouts.
	RunDeadline time.Duration `yaml:"run_deadline"`

	// MaxInFlight bounds simultaneous outbound connections.
	MaxInFlight int `yaml:"max_in_flight"`

	// RetryNetwork enables one immediate retry after a dial failure.
	RetryNetwork bool `yaml:"retry_network"`
}

// SinksConfig lists report delivery targets.
type SinksConfig struct {
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// MetricsConfig configures the Prometheus exposition listener.
type MetricsConfig struct {
	// Listen is the address to serve /metrics on. Empty disables the
	// listener; it only runs in interval mode either way.
	Listen string `yaml:"listen"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Source: SourceConfig{Type: "file"},
		Checks: ChecksConfig{
			Port:            DefaultPort,
			ExpiryThreshold: DefaultThreshold,
			ProbeTimeout:    DefaultProbeTime,
			RunDeadline:     DefaultRunDeadline,
			MaxInFlight:     DefaultMaxInFlight,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	switch cfg.Source.Type {
	case "file":
		if cfg.Source.Path == "" {
			return fmt.Errorf("source.path is required for a file source")
		}
	case "http":
		if cfg.Source.URL == "" {
			return fmt.Errorf("source.url is required for an http source")
		}
	default:
		return fmt.Errorf("unknown source type %q", cfg.Source.Type)
	}
	if cfg.Source.Auth.Header != "" && cfg.Source.Auth.KeyEnv == "" {
		return fmt.Errorf("source.auth.key_env is required when source.auth.header is set")
	}

	if cfg.Checks.Port < 1 || cfg.Checks.Port > 65535 {
		return fmt.Errorf("checks.port must be in 1..65535")
	}
	if cfg.Checks.ExpiryThreshold <= 0 {
		return fmt.Errorf("checks.expiry_threshold must be positive")
	}
	if cfg.Checks.ProbeTimeout <= 0 {
		return fmt.Errorf("checks.probe_timeout must be positive")
	}
	if cfg.Checks.RunDeadline <= 0 {
		return fmt.Errorf("checks.run_deadline must be positive")
	}
	if cfg.Checks.MaxInFlight <= 0 {
		return fmt.Errorf("checks.max_in_flight must be positive")
	}

	for i, wh := range cfg.Sinks.Webhooks {
		switch wh.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("sinks.webhooks[%d]: unknown type %q", i, wh.Type)
		}
		if wh.URLEnv == "" {
			return fmt.Errorf("sinks.webhooks[%d]: url_env is required", i)
		}
	}

	if cfg.Interval < 0 {
		return fmt.Errorf("interval must not be negative")
	}
	return nil
}
