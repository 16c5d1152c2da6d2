// Package challenge maps a domain under validation to the zone and record
// name at which its DNS-01 proof must be published.
package challenge

import (
	"fmt"
	"strings"

	"github.com/lite-lake/acme-dns-helper/internal/constants"
	"github.com/lite-lake/acme-dns-helper/internal/domain"
)

// Names is the zone a provider manages records under and the challenge
// record name relative to that zone.
type Names struct {
	Zone       string
	RecordName string
}

// FQDN returns the fully qualified challenge name without a trailing dot.
func (n Names) FQDN() string {
	return n.RecordName + "." + n.Zone
}

// Decompose splits domain into its zone and challenge record name. The zone is
// taken to be the last two labels; multi-label public suffixes such as co.uk
// are not recognised.
func Decompose(domain string) Names {
	last := strings.LastIndexByte(domain, '.')
	if last < 0 {
		return Names{Zone: domain, RecordName: constants.ChallengeLabel}
	}
	sep := strings.LastIndexByte(domain[:last], '.')
	if sep < 0 {
		return Names{Zone: domain, RecordName: constants.ChallengeLabel}
	}
	return Names{
		Zone:       domain[sep+1:],
		RecordName: constants.ChallengeLabel + "." + domain[:sep],
	}
}

// Normalize cleans a domain received from an ACME client: whitespace, one
// trailing root dot and a leading wildcard label are removed and the result is
// lowercased. Every remaining label must be non-empty and free of '*'. The
// DNS-01 record for *.example.com lives at the same name as the one for
// example.com.
func Normalize(domainName string) (string, error) {
	d := strings.TrimSpace(domainName)
	d = strings.TrimSuffix(d, ".")
	d = strings.TrimPrefix(d, "*.")
	d = strings.ToLower(d)
	if d == "" {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidDomain, domainName)
	}
	for _, label := range strings.Split(d, ".") {
		if label == "" {
			return "", fmt.Errorf("%w: empty label in %q", domain.ErrInvalidDomain, domainName)
		}
		if strings.Contains(label, "*") {
			return "", fmt.Errorf("%w: misplaced wildcard in %q", domain.ErrInvalidDomain, domainName)
		}
	}
	return d, nil
}
