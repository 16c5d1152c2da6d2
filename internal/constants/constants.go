package constants

import "time"

const (
	AppName = "acme-dns-helper"

	ChallengeLabel    = "_acme-challenge"
	RecordTypeTXT     = "TXT"
	DefaultTXTTTL     = 600
	DefaultBackend    = "dnspod"
	EnvPrefix         = "ACME_DNS_HELPER_"
	DefaultNameserver = "8.8.8.8:53"

	FilePermissionOwnerRW = 0600
	DirPermissionOwner    = 0700
)

// DefaultSettleDelay is how long provisioning waits after a create before
// returning to the ACME client.
const DefaultSettleDelay = 5 * time.Second
