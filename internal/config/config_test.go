package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// loadFromString writes yaml to a temp file and loads it.
func loadFromString(t *testing.T, yaml string) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return cfg
}

func loadErr(t *testing.T, yaml string) error {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	_, err := Load(path)
	return err
}

func TestLoad_Valid(t *testing.T) {
	yaml := `
source:
  type: http
  url: "https://config.internal/targets.txt"
  auth:
    header: "X-Api-Key"
    key_env: "CONFIG_API_KEY"
checks:
  port: 8443
  expiry_threshold: 720h
  probe_timeout: 5s
  run_deadline: 30s
  max_in_flight: 4
  retry_network: true
sinks:
  webhooks:
    - type: slack
      url_env: SLACK_WEBHOOK_URL
metrics:
  listen: ":9108"
interval: 15m
`
	cfg := loadFromString(t, yaml)

	if cfg.Source.Type != "http" || cfg.Source.URL != "https://config.internal/targets.txt" {
		t.Errorf("source: got %+v", cfg.Source)
	}
	if cfg.Checks.Port != 8443 {
		t.Errorf("port: got %d", cfg.Checks.Port)
	}
	if cfg.Checks.ExpiryThreshold != 720*time.Hour {
		t.Errorf("expiry_threshold: got %v", cfg.Checks.ExpiryThreshold)
	}
	if !cfg.Checks.RetryNetwork {
		t.Error("retry_network: got false")
	}
	if len(cfg.Sinks.Webhooks) != 1 || cfg.Sinks.Webhooks[0].Type != "slack" {
		t.Errorf("webhooks: got %+v", cfg.Sinks.Webhooks)
	}
	if cfg.Metrics.Listen != ":9108" {
		t.Errorf("metrics.listen: got %q", cfg.Metrics.Listen)
	}
	if cfg.Interval != 15*time.Minute {
		t.Errorf("interval: got %v", cfg.Interval)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadFromString(t, `
source:
  type: file
  path: targets.txt
`)
	if cfg.Checks.Port != DefaultPort {
		t.Errorf("default port: got %d, want %d", cfg.Checks.Port, DefaultPort)
	}
	if cfg.Checks.ExpiryThreshold != DefaultThreshold {
		t.Errorf("default threshold: got %v, want %v", cfg.Checks.ExpiryThreshold, DefaultThreshold)
	}
	if cfg.Checks.ProbeTimeout != DefaultProbeTime {
		t.Errorf("default probe_timeout: got %v", cfg.Checks.ProbeTimeout)
	}
	if cfg.Checks.RunDeadline != DefaultRunDeadline {
		t.Errorf("default run_deadline: got %v", cfg.Checks.RunDeadline)
	}
	if cfg.Checks.MaxInFlight != DefaultMaxInFlight {
		t.Errorf("default max_in_flight: got %d", cfg.Checks.MaxInFlight)
	}
	if cfg.Checks.RetryNetwork {
		t.Error("retry_network should default to false")
	}
	if cfg.Interval != 0 {
		t.Errorf("interval should default to 0, got %v", cfg.Interval)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"missing file path", "source:\n  type: file\n", "source.path"},
		{"missing http url", "source:\n  type: http\n", "source.url"},
		{"unknown source type", "source:\n  type: s3\n  path: x\n", "source type"},
		{"auth without key_env", "source:\n  type: file\n  path: t\n  auth:\n    header: X-Key\n", "key_env"},
		{"bad port", "source:\n  type: file\n  path: t\nchecks:\n  port: 70000\n", "port"},
		{"bad webhook type", "source:\n  type: file\n  path: t\nsinks:\n  webhooks:\n    - type: pigeon\n      url_env: X\n", "unknown type"},
		{"webhook without url_env", "source:\n  type: file\n  path: t\nsinks:\n  webhooks:\n    - type: http\n", "url_env"},
		{"negative interval", "source:\n  type: file\n  path: t\ninterval: -5m\n", "interval"},
	}
	for _, c := range cases {
		err := loadErr(t, c.yaml)
		if err == nil {
			t.Errorf("%s: Load() should fail", c.name)
			continue
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: error %q does not mention %q", c.name, err, c.want)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() of a missing file should fail")
	}
}

func TestSourceAuth_KeyFromEnv(t *testing.T) {
	t.Setenv("CERTPATROL_TEST_KEY", "s3cret")
	a := SourceAuth{Header: "X-Api-Key", KeyEnv: "CERTPATROL_TEST_KEY"}
	if a.Key() != "s3cret" {
		t.Errorf("Key() = %q", a.Key())
	}
	if (SourceAuth{}).Key() != "" {
		t.Error("empty KeyEnv should resolve to empty string")
	}
}
