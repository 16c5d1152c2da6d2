package dns

import (
	"fmt"
	"sort"

	"github.com/lite-lake/acme-dns-helper/internal/constants"
	"github.com/lite-lake/acme-dns-helper/internal/domain"
)

const (
	BackendDNSPod     = "dnspod"
	BackendAliyun     = "aliyun"
	BackendCloudflare = "cloudflare"
	BackendFile       = "file"
)

// CredentialKey names one credential a backend needs and the environment
// variable it is read from when the config file does not set it.
type CredentialKey struct {
	Key      string
	Env      string
	Optional bool
}

type Descriptor struct {
	Name        string
	Description string
	Credentials []CredentialKey
}

type CreatorFunc func(creds map[string]string) (Backend, error)

type registration struct {
	desc    Descriptor
	creator CreatorFunc
}

type Factory struct {
	backends map[string]registration
}

func NewFactory() *Factory {
	f := &Factory{backends: make(map[string]registration)}
	f.Register(Descriptor{
		Name:        BackendDNSPod,
		Description: "DNSPod via the Tencent Cloud API",
		Credentials: []CredentialKey{
			{Key: "secret_id", Env: "DNSPOD_SECRET_ID"},
			{Key: "secret_key", Env: "DNSPOD_SECRET_KEY"},
		},
	}, createDNSPod)
	f.Register(Descriptor{
		Name:        BackendAliyun,
		Description: "Alibaba Cloud DNS",
		Credentials: []CredentialKey{
			{Key: "access_key_id", Env: "ALIYUN_ACCESSKEY_ID"},
			{Key: "access_key_secret", Env: "ALIYUN_ACCESSKEY_SECRET"},
		},
	}, createAliyun)
	f.Register(Descriptor{
		Name:        BackendCloudflare,
		Description: "Cloudflare DNS",
		Credentials: []CredentialKey{
			{Key: "api_token", Env: "CLOUDFLARE_API_TOKEN"},
		},
	}, createCloudflare)
	f.Register(Descriptor{
		Name:        BackendFile,
		Description: "Local YAML zone file",
		Credentials: []CredentialKey{
			{Key: "path", Env: constants.EnvPrefix + "STATE_FILE"},
		},
	}, createFile)
	return f
}

func (f *Factory) Create(name string, creds map[string]string) (Backend, error) {
	reg, ok := f.backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedBackend, name)
	}
	return reg.creator(creds)
}

func (f *Factory) Register(desc Descriptor, creator CreatorFunc) {
	f.backends[desc.Name] = registration{desc: desc, creator: creator}
}

func (f *Factory) Describe(name string) (Descriptor, bool) {
	reg, ok := f.backends[name]
	return reg.desc, ok
}

// Descriptors returns every registered backend sorted by name.
func (f *Factory) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(f.backends))
	for _, reg := range f.backends {
		out = append(out, reg.desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveCredential(creds map[string]string, key string) (string, error) {
	val, ok := creds[key]
	if !ok || val == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrMissingCredential, key)
	}
	return val, nil
}

func createDNSPod(creds map[string]string) (Backend, error) {
	secretID, err := resolveCredential(creds, "secret_id")
	if err != nil {
		return nil, fmt.Errorf("resolve secret_id: %w", err)
	}
	secretKey, err := resolveCredential(creds, "secret_key")
	if err != nil {
		return nil, fmt.Errorf("resolve secret_key: %w", err)
	}
	return NewDNSPodBackend(secretID, secretKey)
}

func createAliyun(creds map[string]string) (Backend, error) {
	accessKeyID, err := resolveCredential(creds, "access_key_id")
	if err != nil {
		return nil, fmt.Errorf("resolve access_key_id: %w", err)
	}
	accessKeySecret, err := resolveCredential(creds, "access_key_secret")
	if err != nil {
		return nil, fmt.Errorf("resolve access_key_secret: %w", err)
	}
	return NewAliyunBackend(accessKeyID, accessKeySecret)
}

func createCloudflare(creds map[string]string) (Backend, error) {
	apiToken, err := resolveCredential(creds, "api_token")
	if err != nil {
		return nil, fmt.Errorf("resolve api_token: %w", err)
	}
	return NewCloudflareBackend(apiToken), nil
}

func createFile(creds map[string]string) (Backend, error) {
	path, err := resolveCredential(creds, "path")
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	return NewFileBackend(path), nil
}
