package valueobject

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/lite-lake/acme-dns-helper/internal/domain"
	"gopkg.in/yaml.v3"
)

func TestSecretRef_LogValue(t *testing.T) {
	tests := []struct {
		name string
		ref  *SecretRef
	}{
		{"plain value", NewSecretRefPlain("my-password")},
		{"env reference", NewSecretRefEnv("DNSPOD_SECRET_KEY")},
		{"empty", &SecretRef{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			logger.Info("test", "secret", tt.ref)

			output := buf.String()

			if tt.ref.Plain != "" && strings.Contains(output, tt.ref.Plain) {
				t.Errorf("LogValue leaked plain value %q in output: %s", tt.ref.Plain, output)
			}
			if tt.ref.Env != "" && strings.Contains(output, tt.ref.Env) {
				t.Errorf("LogValue leaked env name %q in output: %s", tt.ref.Env, output)
			}
			if !strings.Contains(output, "***") {
				t.Errorf("LogValue did not mask secret, output: %s", output)
			}
		})
	}
}

func TestSecretRef_UnmarshalYAML(t *testing.T) {
	var doc struct {
		ID  SecretRef `yaml:"id"`
		Key SecretRef `yaml:"key"`
	}
	input := "id: AKIDplain\nkey: {env: DNSPOD_SECRET_KEY}\n"
	if err := yaml.Unmarshal([]byte(input), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if doc.ID.Plain != "AKIDplain" || doc.ID.Env != "" {
		t.Errorf("id = %+v", doc.ID)
	}
	if doc.Key.Env != "DNSPOD_SECRET_KEY" || doc.Key.Plain != "" {
		t.Errorf("key = %+v", doc.Key)
	}
}

func TestSecretRef_Resolve(t *testing.T) {
	t.Setenv("ACME_TEST_SECRET", "from-env")

	tests := []struct {
		name    string
		ref     SecretRef
		want    string
		wantErr error
	}{
		{"plain", SecretRef{Plain: "inline"}, "inline", nil},
		{"env set", SecretRef{Env: "ACME_TEST_SECRET"}, "from-env", nil},
		{"env unset", SecretRef{Env: "ACME_TEST_SECRET_MISSING"}, "", domain.ErrMissingSecret},
		{"env wins over plain", SecretRef{Plain: "inline", Env: "ACME_TEST_SECRET"}, "from-env", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.ref.Resolve()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSecretRef_Validate(t *testing.T) {
	if err := (SecretRef{}).Validate(); !errors.Is(err, domain.ErrEmptyValue) {
		t.Errorf("Validate() on empty ref = %v, want ErrEmptyValue", err)
	}
	if err := (SecretRef{Env: "X"}).Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}
