package dns

import "testing"

func TestRelativeName(t *testing.T) {
	tests := []struct {
		fqdn, zone, want string
	}{
		{"_acme-challenge.example.com", "example.com", "_acme-challenge"},
		{"_acme-challenge.foo.bar.example.com.", "example.com", "_acme-challenge.foo.bar"},
		{"example.com", "example.com", ""},
		{"_acme-challenge.other.org", "example.com", "_acme-challenge.other.org"},
	}
	for _, tt := range tests {
		if got := relativeName(tt.fqdn, tt.zone); got != tt.want {
			t.Errorf("relativeName(%q, %q) = %q, want %q", tt.fqdn, tt.zone, got, tt.want)
		}
	}
}

func TestUnquoteTXT(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"abc"`, "abc"},
		{"abc", "abc"},
		{`"`, `"`},
		{`""`, ""},
		{`"a"b"`, `a"b`},
	}
	for _, tt := range tests {
		if got := unquoteTXT(tt.in); got != tt.want {
			t.Errorf("unquoteTXT(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCloudflareBackend_Name(t *testing.T) {
	if got := NewCloudflareBackend("token").Name(); got != BackendCloudflare {
		t.Errorf("Name() = %q, want %q", got, BackendCloudflare)
	}
}
