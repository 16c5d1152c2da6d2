package valueobject

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lite-lake/acme-dns-helper/internal/domain"
)

// SecretRef is a credential written either inline or as the name of an
// environment variable:
//
//	secret_id: AKIDxxxx
//	secret_key: {env: DNSPOD_SECRET_KEY}
type SecretRef struct {
	Plain string `yaml:"plain,omitempty"`
	Env   string `yaml:"env,omitempty"`
}

func NewSecretRefPlain(plain string) *SecretRef {
	return &SecretRef{Plain: plain}
}

func NewSecretRefEnv(name string) *SecretRef {
	return &SecretRef{Env: name}
}

func (s *SecretRef) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var plain string
	if err := unmarshal(&plain); err == nil {
		s.Plain = plain
		return nil
	}

	type alias SecretRef
	var ref alias
	if err := unmarshal(&ref); err != nil {
		return err
	}
	s.Plain = ref.Plain
	s.Env = ref.Env
	return nil
}

func (s SecretRef) MarshalYAML() (interface{}, error) {
	if s.Env != "" {
		return map[string]string{"env": s.Env}, nil
	}
	return s.Plain, nil
}

// Resolve returns the credential value. An env reference must name a set,
// non-empty variable.
func (s SecretRef) Resolve() (string, error) {
	if s.Env != "" {
		val := os.Getenv(s.Env)
		if val == "" {
			return "", fmt.Errorf("%w: environment variable %s is not set", domain.ErrMissingSecret, s.Env)
		}
		return val, nil
	}
	return s.Plain, nil
}

func (s SecretRef) Validate() error {
	if s.Plain == "" && s.Env == "" {
		return domain.ErrEmptyValue
	}
	return nil
}

func (s SecretRef) LogValue() slog.Value {
	if s.Env != "" {
		return slog.StringValue("env:***")
	}
	return slog.StringValue("***")
}
