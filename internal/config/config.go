// Package config loads the optional YAML file that sets defaults for the
// hook command and holds backend credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lite-lake/acme-dns-helper/internal/constants"
	"github.com/lite-lake/acme-dns-helper/internal/domain"
	"github.com/lite-lake/acme-dns-helper/internal/domain/service"
	"github.com/lite-lake/acme-dns-helper/internal/domain/valueobject"
	"github.com/lite-lake/acme-dns-helper/internal/infrastructure/dns"
	"gopkg.in/yaml.v3"
)

// Config mirrors the file layout:
//
//	backend: aliyun
//	settle_delay: 10s
//	stale_policy: append
//	ttl: 600
//	credentials:
//	  access_key_id: LTAIxxxx
//	  access_key_secret: {env: ALIYUN_SECRET}
type Config struct {
	Backend     string                           `yaml:"backend"`
	SettleDelay string                           `yaml:"settle_delay"`
	StalePolicy string                           `yaml:"stale_policy"`
	TTL         int                              `yaml:"ttl"`
	Credentials map[string]valueobject.SecretRef `yaml:"credentials"`
}

func Default() *Config {
	return &Config{
		Backend:     constants.DefaultBackend,
		SettleDelay: constants.DefaultSettleDelay.String(),
		StalePolicy: string(service.StaleReplace),
		TTL:         constants.DefaultTXTTTL,
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrConfigReadFailed, path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrConfigParseFailed, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Backend == "" {
		errs = append(errs, domain.RequiredField("backend"))
	}
	if _, err := c.Delay(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Policy(); err != nil {
		errs = append(errs, err)
	}
	if c.TTL < 0 {
		errs = append(errs, fmt.Errorf("ttl: %w", domain.ErrInvalidTTL))
	}
	for key, ref := range c.Credentials {
		if err := ref.Validate(); err != nil {
			errs = append(errs, domain.WrapEntity("credentials", key, err))
		}
	}
	return errors.Join(errs...)
}

// Delay parses settle_delay. Empty means no wait.
func (c *Config) Delay() (time.Duration, error) {
	if c.SettleDelay == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.SettleDelay)
	if err != nil {
		return 0, fmt.Errorf("settle_delay: %w: %q", domain.ErrInvalidDuration, c.SettleDelay)
	}
	if d < 0 {
		return 0, fmt.Errorf("settle_delay: %w: must not be negative", domain.ErrInvalidDuration)
	}
	return d, nil
}

func (c *Config) Policy() (service.StalePolicy, error) {
	p, err := service.ParseStalePolicy(c.StalePolicy)
	if err != nil {
		return "", fmt.Errorf("stale_policy: %w", err)
	}
	return p, nil
}

// ResolveCredentials collects the values desc needs. A key set in the file
// wins; otherwise the backend's environment variable is read.
func (c *Config) ResolveCredentials(desc dns.Descriptor) (map[string]string, error) {
	creds := make(map[string]string, len(desc.Credentials))
	for _, ck := range desc.Credentials {
		if ref, ok := c.Credentials[ck.Key]; ok {
			val, err := ref.Resolve()
			if err != nil {
				return nil, domain.WrapEntity("credentials", ck.Key, err)
			}
			creds[ck.Key] = val
			continue
		}
		if val := os.Getenv(ck.Env); val != "" {
			creds[ck.Key] = val
			continue
		}
		if !ck.Optional {
			return nil, fmt.Errorf("%w: %s for backend %s (set %s or credentials.%s)",
				domain.ErrMissingCredential, ck.Key, desc.Name, ck.Env, ck.Key)
		}
	}
	return creds, nil
}
