package dns

import (
	"github.com/lite-lake/acme-dns-helper/internal/constants"
	"github.com/lite-lake/acme-dns-helper/internal/domain"
	"github.com/lite-lake/acme-dns-helper/internal/domain/contract"
)

var (
	ErrZoneNotFound   = domain.ErrZoneNotFound
	ErrRecordNotFound = domain.ErrRecordNotFound
)

type TXTRecord = contract.TXTRecord

type Backend = contract.ChallengeBackend

// keepChallengeRecords drops everything that is not an enabled TXT record
// named exactly name. Provider-side filters are often prefix or keyword
// matches, so every backend runs its listing through this.
func keepChallengeRecords(records []TXTRecord, name string) []TXTRecord {
	out := make([]TXTRecord, 0, len(records))
	for _, r := range records {
		if r.Type != constants.RecordTypeTXT || r.Name != name || !r.Enabled {
			continue
		}
		out = append(out, r)
	}
	return out
}

func ttlOrDefault(ttl int) int {
	if ttl <= 0 {
		return constants.DefaultTXTTTL
	}
	return ttl
}
