// Package resolver queries published challenge records so an operator can
// check what validation servers will see.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lite-lake/acme-dns-helper/internal/domain"
	"github.com/miekg/dns"
)

const defaultTimeout = 5 * time.Second

type Resolver struct {
	server string
	udp    *dns.Client
	tcp    *dns.Client
}

func New(server string, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Resolver{
		server: server,
		udp:    &dns.Client{Net: "udp", Timeout: timeout},
		tcp:    &dns.Client{Net: "tcp", Timeout: timeout},
	}
}

func (r *Resolver) Server() string {
	return r.server
}

// LookupTXT returns the TXT strings published at name. NXDOMAIN and empty
// answers yield an empty slice. Multi-string TXT records are concatenated.
func (r *Resolver) LookupTXT(ctx context.Context, name string) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeTXT)
	m.RecursionDesired = true

	resp, _, err := r.udp.ExchangeContext(ctx, m, r.server)
	if err == nil && resp.Truncated {
		resp, _, err = r.tcp.ExchangeContext(ctx, m, r.server)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s at %s: %w: %w", name, r.server, domain.ErrLookupFailed, err)
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s for %s", domain.ErrUnexpectedAnswer, dns.RcodeToString[resp.Rcode], name)
	}

	var values []string
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			values = append(values, strings.Join(txt.Txt, ""))
		}
	}
	return values, nil
}
