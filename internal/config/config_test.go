package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 70000},
		Upstream: UpstreamConfig{BaseURL: DefaultBaseURL},
		Poll:     PollConfig{IntervalSec: 300},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}

	expected := "http.port must be between 1 and 65535, got 70000"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"claude.ai", "ftp://claude.ai", "://bad"} {
		t.Run(base, func(t *testing.T) {
			cfg := Config{
				HTTP:     HTTPConfig{Port: 8080},
				Upstream: UpstreamConfig{BaseURL: base},
				Poll:     PollConfig{IntervalSec: 300},
			}
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error for base_url %q", base)
			}
		})
	}
}

func TestValidate_MissingCredentialsAllowed(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HasCredentials() {
		t.Error("empty credentials reported as set")
	}
}

func TestHasCredentials(t *testing.T) {
	tests := []struct {
		name string
		org  string
		key  string
		want bool
	}{
		{"empty", "", "", false},
		{"placeholders", PlaceholderOrgID, PlaceholderSessionKey, false},
		{"placeholder org", PlaceholderOrgID, "sk-ant-sid01-abc", false},
		{"placeholder key", "3746c04e-9223-4bde-a29f-39db3e23bfea", PlaceholderSessionKey, false},
		{"whitespace", "  ", "sk-ant-sid01-abc", false},
		{"set", "3746c04e-9223-4bde-a29f-39db3e23bfea", "sk-ant-sid01-abc", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{Upstream: UpstreamConfig{OrgID: tc.org, SessionKey: tc.key}}
			if got := cfg.HasCredentials(); got != tc.want {
				t.Errorf("HasCredentials() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Upstream.BaseURL != DefaultBaseURL {
		t.Errorf("expected BaseURL=%q, got %q", DefaultBaseURL, cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.TimeoutSec != 30 {
		t.Errorf("expected TimeoutSec=30, got %d", cfg.Upstream.TimeoutSec)
	}
	if cfg.Poll.IntervalSec != 300 {
		t.Errorf("expected IntervalSec=300, got %d", cfg.Poll.IntervalSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 9000, ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Upstream: UpstreamConfig{BaseURL: "http://localhost:1234", TimeoutSec: 5},
		Poll:     PollConfig{IntervalSec: 60},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 {
		t.Errorf("expected Port=9000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Upstream.BaseURL != "http://localhost:1234" {
		t.Errorf("expected custom BaseURL, got %q", cfg.Upstream.BaseURL)
	}
	if cfg.Poll.IntervalSec != 60 {
		t.Errorf("expected IntervalSec=60, got %d", cfg.Poll.IntervalSec)
	}
}

func TestUpstreamTimeout_ClampedToInterval(t *testing.T) {
	cfg := Config{
		Upstream: UpstreamConfig{TimeoutSec: 30},
		Poll:     PollConfig{IntervalSec: 10},
	}
	if got := cfg.UpstreamTimeout(); got != 10*time.Second {
		t.Errorf("UpstreamTimeout() = %v, want 10s", got)
	}

	cfg.Poll.IntervalSec = 300
	if got := cfg.UpstreamTimeout(); got != 30*time.Second {
		t.Errorf("UpstreamTimeout() = %v, want 30s", got)
	}
}

func TestAddr(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Host: "172.16.42.1", Port: 8080}}
	if got := cfg.Addr(); got != "172.16.42.1:8080" {
		t.Errorf("Addr() = %q", got)
	}

	cfg.HTTP.Host = ""
	if got := cfg.Addr(); got != ":8080" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("USAGERELAY_TEST_ORG", "org-123")

	in := []byte("org_id: ${USAGERELAY_TEST_ORG}\nsession_key: ${USAGERELAY_TEST_MISSING:-fallback}\nother: ${USAGERELAY_TEST_MISSING}")
	got := string(expandEnvVars(in))

	want := "org_id: org-123\nsession_key: fallback\nother: "
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("USAGERELAY_TEST_SESSION", "sk-ant-sid01-xyz")

	path := filepath.Join(t.TempDir(), "test.yaml")
	content := `
http:
  host: 127.0.0.1
  port: 8181
upstream:
  org_id: org-abc
  session_key: ${USAGERELAY_TEST_SESSION}
poll:
  interval_sec: 120
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Addr() != "127.0.0.1:8181" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.Upstream.SessionKey != "sk-ant-sid01-xyz" {
		t.Errorf("SessionKey = %q", cfg.Upstream.SessionKey)
	}
	if !cfg.HasCredentials() {
		t.Error("expected credentials to be set")
	}
	if cfg.PollInterval() != 2*time.Minute {
		t.Errorf("PollInterval() = %v", cfg.PollInterval())
	}
	if cfg.Upstream.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
