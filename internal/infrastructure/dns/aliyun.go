package dns

import (
	"context"
	"errors"

	alidns "github.com/alibabacloud-go/alidns-20150109/v4/client"
	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	"github.com/alibabacloud-go/tea/tea"
	"github.com/lite-lake/acme-dns-helper/internal/domain"
	"github.com/lite-lake/acme-dns-helper/internal/infrastructure/logger"
)

const (
	aliyunEndpoint = "dns.aliyuncs.com"
	aliyunPageSize = 500
)

type aliyunAPI interface {
	DescribeDomainRecords(request *alidns.DescribeDomainRecordsRequest) (*alidns.DescribeDomainRecordsResponse, error)
	AddDomainRecord(request *alidns.AddDomainRecordRequest) (*alidns.AddDomainRecordResponse, error)
	DeleteDomainRecord(request *alidns.DeleteDomainRecordRequest) (*alidns.DeleteDomainRecordResponse, error)
}

type AliyunBackend struct {
	client aliyunAPI
}

func NewAliyunBackend(accessKeyID, accessKeySecret string) (Backend, error) {
	config := &openapi.Config{
		AccessKeyId:     tea.String(accessKeyID),
		AccessKeySecret: tea.String(accessKeySecret),
	}
	config.Endpoint = tea.String(aliyunEndpoint)
	client, err := alidns.NewClient(config)
	if err != nil {
		return nil, domain.WrapOp("create aliyun dns client", err)
	}
	return &AliyunBackend{client: client}, nil
}

func (p *AliyunBackend) Name() string {
	return BackendAliyun
}

// ListChallengeRecords pages through DescribeDomainRecords. RRKeyWord is a
// fuzzy match, so the exact name filter happens locally.
func (p *AliyunBackend) ListChallengeRecords(ctx context.Context, zone, recordName string) ([]TXTRecord, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing TXT records", "provider", BackendAliyun, "zone", zone, "name", recordName)

	var records []TXTRecord
	for page := int64(1); ; page++ {
		req := &alidns.DescribeDomainRecordsRequest{
			DomainName: tea.String(zone),
			RRKeyWord:  tea.String(recordName),
			Type:       tea.String("TXT"),
			PageNumber: tea.Int64(page),
			PageSize:   tea.Int64(aliyunPageSize),
		}
		resp, err := p.client.DescribeDomainRecords(req)
		if err != nil {
			return nil, aliyunError("list records", err)
		}
		if resp == nil || resp.Body == nil || resp.Body.DomainRecords == nil {
			break
		}

		batch := resp.Body.DomainRecords.Record
		for _, r := range batch {
			if r == nil {
				continue
			}
			ttl := 0
			if r.TTL != nil {
				ttl = int(*r.TTL)
			}
			records = append(records, TXTRecord{
				ID:      tea.StringValue(r.RecordId),
				Name:    tea.StringValue(r.RR),
				Type:    tea.StringValue(r.Type),
				Value:   tea.StringValue(r.Value),
				TTL:     ttl,
				Enabled: tea.StringValue(r.Status) == "ENABLE",
			})
		}

		if len(batch) == 0 || resp.Body.TotalCount == nil || page*aliyunPageSize >= *resp.Body.TotalCount {
			break
		}
	}

	out := keepChallengeRecords(records, recordName)
	log.Debug("listed TXT records", "provider", BackendAliyun, "zone", zone, "count", len(out))
	return out, nil
}

func (p *AliyunBackend) CreateRecord(ctx context.Context, zone, recordName, recordType, value string, ttl int) error {
	req := &alidns.AddDomainRecordRequest{
		DomainName: tea.String(zone),
		RR:         tea.String(recordName),
		Type:       tea.String(recordType),
		Value:      tea.String(value),
		TTL:        tea.Int64(int64(ttlOrDefault(ttl))),
	}

	resp, err := p.client.AddDomainRecord(req)
	if err != nil {
		return aliyunError("create record", err)
	}

	id := ""
	if resp != nil && resp.Body != nil {
		id = tea.StringValue(resp.Body.RecordId)
	}
	logger.FromContext(ctx).Info("DNS record created", "provider", BackendAliyun, "zone", zone, "name", recordName, "record_id", id)
	return nil
}

func (p *AliyunBackend) DeleteRecord(ctx context.Context, zone, recordID string) error {
	req := &alidns.DeleteDomainRecordRequest{
		RecordId: tea.String(recordID),
	}

	if _, err := p.client.DeleteDomainRecord(req); err != nil {
		return aliyunError("delete record", err)
	}
	logger.FromContext(ctx).Info("DNS record deleted", "provider", BackendAliyun, "zone", zone, "record_id", recordID)
	return nil
}

func aliyunError(op string, err error) error {
	be := domain.NewBackendError(BackendAliyun, op, err)
	var sdkErr *tea.SDKError
	if errors.As(err, &sdkErr) {
		be.Code = tea.StringValue(sdkErr.Code)
		be.Message = tea.StringValue(sdkErr.Message)
	}
	return be
}
