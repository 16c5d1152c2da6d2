package dns

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/cloudflare/cloudflare-go/v2"
	cfdns "github.com/cloudflare/cloudflare-go/v2/dns"
	"github.com/cloudflare/cloudflare-go/v2/option"
	"github.com/cloudflare/cloudflare-go/v2/zones"
	"github.com/lite-lake/acme-dns-helper/internal/domain"
	"github.com/lite-lake/acme-dns-helper/internal/infrastructure/logger"
)

type CloudflareBackend struct {
	client *cloudflare.Client
}

func NewCloudflareBackend(apiToken string, opts ...option.RequestOption) *CloudflareBackend {
	opts = append([]option.RequestOption{option.WithAPIToken(apiToken)}, opts...)
	return &CloudflareBackend{client: cloudflare.NewClient(opts...)}
}

func (p *CloudflareBackend) Name() string {
	return BackendCloudflare
}

func (p *CloudflareBackend) zoneID(ctx context.Context, zone string) (string, error) {
	resp, err := p.client.Zones.List(ctx, zones.ZoneListParams{
		Name: cloudflare.F(zone),
	})
	if err != nil {
		return "", cloudflareError("list zones", err)
	}
	if len(resp.Result) == 0 {
		return "", &domain.BackendError{Backend: BackendCloudflare, Op: "list zones", Message: "zone " + zone + " not found", Err: ErrZoneNotFound}
	}
	return resp.Result[0].ID, nil
}

// ListChallengeRecords matches on the fully qualified name Cloudflare
// reports and converts it back to a zone-relative name.
func (p *CloudflareBackend) ListChallengeRecords(ctx context.Context, zone, recordName string) ([]TXTRecord, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing TXT records", "provider", BackendCloudflare, "zone", zone, "name", recordName)

	zoneID, err := p.zoneID(ctx, zone)
	if err != nil {
		return nil, err
	}

	var records []TXTRecord
	pager := p.client.DNS.Records.ListAutoPaging(ctx, cfdns.RecordListParams{
		ZoneID: cloudflare.F(zoneID),
		Type:   cloudflare.F(cfdns.RecordListParamsType("TXT")),
	})
	for pager.Next() {
		record := pager.Current()
		content := ""
		if str, ok := record.Content.(string); ok {
			content = str
		}
		records = append(records, TXTRecord{
			ID:      record.ID,
			Name:    relativeName(record.Name, zone),
			Type:    string(record.Type),
			Value:   unquoteTXT(content),
			TTL:     int(record.TTL),
			Enabled: true,
		})
	}
	if err := pager.Err(); err != nil {
		return nil, cloudflareError("list records", err)
	}

	out := keepChallengeRecords(records, recordName)
	log.Debug("listed TXT records", "provider", BackendCloudflare, "zone", zone, "count", len(out))
	return out, nil
}

func (p *CloudflareBackend) CreateRecord(ctx context.Context, zone, recordName, recordType, value string, ttl int) error {
	zoneID, err := p.zoneID(ctx, zone)
	if err != nil {
		return err
	}

	_, err = p.client.DNS.Records.New(ctx, cfdns.RecordNewParams{
		ZoneID: cloudflare.F(zoneID),
		Record: cfdns.TXTRecordParam{
			Name:    cloudflare.F(recordName + "." + zone),
			Type:    cloudflare.F(cfdns.TXTRecordTypeTXT),
			Content: cloudflare.F(value),
			TTL:     cloudflare.F(cfdns.TTL(ttlOrDefault(ttl))),
		},
	})
	if err != nil {
		return cloudflareError("create record", err)
	}

	logger.FromContext(ctx).Info("DNS record created", "provider", BackendCloudflare, "zone", zone, "name", recordName)
	return nil
}

func (p *CloudflareBackend) DeleteRecord(ctx context.Context, zone, recordID string) error {
	zoneID, err := p.zoneID(ctx, zone)
	if err != nil {
		return err
	}

	_, err = p.client.DNS.Records.Delete(ctx, recordID, cfdns.RecordDeleteParams{
		ZoneID: cloudflare.F(zoneID),
	})
	if err != nil {
		return cloudflareError("delete record", err)
	}

	logger.FromContext(ctx).Info("DNS record deleted", "provider", BackendCloudflare, "zone", zone, "record_id", recordID)
	return nil
}

func cloudflareError(op string, err error) error {
	be := domain.NewBackendError(BackendCloudflare, op, err)
	var apiErr *cloudflare.Error
	if errors.As(err, &apiErr) {
		be.Code = strconv.Itoa(apiErr.StatusCode)
	}
	return be
}

// relativeName strips the zone suffix from a fully qualified record name. The
// zone apex becomes the empty string.
func relativeName(fqdn, zone string) string {
	fqdn = strings.TrimSuffix(fqdn, ".")
	if fqdn == zone {
		return ""
	}
	return strings.TrimSuffix(fqdn, "."+zone)
}

// Cloudflare may return TXT content wrapped in quotes.
func unquoteTXT(content string) string {
	if len(content) >= 2 && strings.HasPrefix(content, `"`) && strings.HasSuffix(content, `"`) {
		return content[1 : len(content)-1]
	}
	return content
}
