package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lite-lake/acme-dns-helper/internal/constants"
	"github.com/lite-lake/acme-dns-helper/internal/domain"
	"github.com/lite-lake/acme-dns-helper/internal/domain/service"
	"github.com/lite-lake/acme-dns-helper/internal/domain/valueobject"
	"github.com/lite-lake/acme-dns-helper/internal/infrastructure/dns"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend != constants.DefaultBackend {
		t.Errorf("Backend = %q, want %q", cfg.Backend, constants.DefaultBackend)
	}
	d, err := cfg.Delay()
	if err != nil || d != constants.DefaultSettleDelay {
		t.Errorf("Delay() = %v, %v, want %v", d, err, constants.DefaultSettleDelay)
	}
	p, err := cfg.Policy()
	if err != nil || p != service.StaleReplace {
		t.Errorf("Policy() = %q, %v", p, err)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
backend: aliyun
settle_delay: 10s
stale_policy: append
ttl: 120
credentials:
  access_key_id: LTAIplain
  access_key_secret: {env: ACME_TEST_ALIYUN_SECRET}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend != "aliyun" || cfg.TTL != 120 {
		t.Errorf("cfg = %+v", cfg)
	}
	if d, _ := cfg.Delay(); d != 10*time.Second {
		t.Errorf("Delay() = %v, want 10s", d)
	}
	if p, _ := cfg.Policy(); p != service.StaleAppend {
		t.Errorf("Policy() = %q, want append", p)
	}
	if got := cfg.Credentials["access_key_secret"].Env; got != "ACME_TEST_ALIYUN_SECRET" {
		t.Errorf("access_key_secret env = %q", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"bad yaml", "backend: [unclosed", domain.ErrConfigParseFailed},
		{"bad policy", "stale_policy: sometimes", domain.ErrInvalidPolicy},
		{"bad delay", "settle_delay: soon", domain.ErrInvalidDuration},
		{"negative delay", "settle_delay: -1s", domain.ErrInvalidDuration},
		{"negative ttl", "ttl: -5", domain.ErrInvalidTTL},
		{"empty backend", "backend: \"\"", domain.ErrRequired},
		{"empty credential", "credentials:\n  api_token: \"\"", domain.ErrEmptyValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, domain.ErrConfigReadFailed) {
		t.Errorf("Load() error = %v, want ErrConfigReadFailed", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist in chain", err)
	}
}

func TestConfig_ResolveCredentials(t *testing.T) {
	desc := dns.Descriptor{
		Name: "example",
		Credentials: []dns.CredentialKey{
			{Key: "id", Env: "ACME_TEST_ID"},
			{Key: "key", Env: "ACME_TEST_KEY"},
			{Key: "region", Env: "ACME_TEST_REGION", Optional: true},
		},
	}

	t.Run("file wins over environment", func(t *testing.T) {
		t.Setenv("ACME_TEST_ID", "env-id")
		t.Setenv("ACME_TEST_KEY", "env-key")
		cfg := Default()
		cfg.Credentials = map[string]valueobject.SecretRef{"id": {Plain: "file-id"}}

		creds, err := cfg.ResolveCredentials(desc)
		if err != nil {
			t.Fatalf("ResolveCredentials() error = %v", err)
		}
		if creds["id"] != "file-id" || creds["key"] != "env-key" {
			t.Errorf("creds = %v", creds)
		}
		if _, ok := creds["region"]; ok {
			t.Errorf("optional unset credential should be absent, got %v", creds)
		}
	})

	t.Run("env reference in file", func(t *testing.T) {
		t.Setenv("ACME_TEST_OTHER", "indirect")
		t.Setenv("ACME_TEST_KEY", "env-key")
		cfg := Default()
		cfg.Credentials = map[string]valueobject.SecretRef{"id": {Env: "ACME_TEST_OTHER"}}

		creds, err := cfg.ResolveCredentials(desc)
		if err != nil {
			t.Fatalf("ResolveCredentials() error = %v", err)
		}
		if creds["id"] != "indirect" {
			t.Errorf("creds[id] = %q, want indirect", creds["id"])
		}
	})

	t.Run("missing required credential", func(t *testing.T) {
		t.Setenv("ACME_TEST_ID", "env-id")
		t.Setenv("ACME_TEST_KEY", "")
		_, err := Default().ResolveCredentials(desc)
		if !errors.Is(err, domain.ErrMissingCredential) {
			t.Errorf("ResolveCredentials() error = %v, want ErrMissingCredential", err)
		}
	})

	t.Run("unset env reference", func(t *testing.T) {
		cfg := Default()
		cfg.Credentials = map[string]valueobject.SecretRef{"id": {Env: "ACME_TEST_NEVER_SET"}}
		_, err := cfg.ResolveCredentials(desc)
		if !errors.Is(err, domain.ErrMissingSecret) {
			t.Errorf("ResolveCredentials() error = %v, want ErrMissingSecret", err)
		}
	})
}
