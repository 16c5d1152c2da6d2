package contract

import "context"

// TXTRecord is a TXT record as reported by a DNS backend. Name is relative to
// the zone it was listed from.
type TXTRecord struct {
	ID      string
	Name    string
	Type    string
	Value   string
	TTL     int
	Enabled bool
}

// ChallengeBackend is the capability a DNS provider must offer to publish and
// withdraw DNS-01 challenge records.
type ChallengeBackend interface {
	Name() string
	// ListChallengeRecords returns the enabled TXT records named recordName in
	// zone. A provider reporting that no such record exists yields an empty
	// slice, not an error.
	ListChallengeRecords(ctx context.Context, zone, recordName string) ([]TXTRecord, error)
	CreateRecord(ctx context.Context, zone, recordName, recordType, value string, ttl int) error
	DeleteRecord(ctx context.Context, zone, recordID string) error
}
