package dns

import (
	"context"
	"errors"
	"strconv"

	"github.com/lite-lake/acme-dns-helper/internal/domain"
	"github.com/lite-lake/acme-dns-helper/internal/infrastructure/logger"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	sdkerrors "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/errors"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	dnspod "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/dnspod/v20210323"
)

const (
	dnspodEndpoint = "dnspod.tencentcloudapi.com"
	// DNSPod insists on a resolution line for every record.
	dnspodDefaultLine = "默认"
	dnspodPageSize    = 3000
	// Returned by DescribeRecordList when the subdomain has no records.
	dnspodCodeNoRecords = "ResourceNotFound.NoDataOfRecord"
)

type dnspodAPI interface {
	DescribeRecordList(request *dnspod.DescribeRecordListRequest) (*dnspod.DescribeRecordListResponse, error)
	CreateRecord(request *dnspod.CreateRecordRequest) (*dnspod.CreateRecordResponse, error)
	DeleteRecord(request *dnspod.DeleteRecordRequest) (*dnspod.DeleteRecordResponse, error)
}

type DNSPodBackend struct {
	client dnspodAPI
}

func NewDNSPodBackend(secretID, secretKey string) (Backend, error) {
	credential := common.NewCredential(secretID, secretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = dnspodEndpoint
	client, err := dnspod.NewClient(credential, "", cpf)
	if err != nil {
		return nil, domain.WrapOp("create dnspod client", err)
	}
	return &DNSPodBackend{client: client}, nil
}

func (p *DNSPodBackend) Name() string {
	return BackendDNSPod
}

func (p *DNSPodBackend) ListChallengeRecords(ctx context.Context, zone, recordName string) ([]TXTRecord, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing TXT records", "provider", BackendDNSPod, "zone", zone, "name", recordName)

	var records []TXTRecord
	var offset uint64
	for {
		req := dnspod.NewDescribeRecordListRequest()
		req.Domain = common.StringPtr(zone)
		req.Subdomain = common.StringPtr(recordName)
		req.RecordType = common.StringPtr("TXT")
		req.Offset = common.Uint64Ptr(offset)
		req.Limit = common.Uint64Ptr(dnspodPageSize)

		resp, err := p.client.DescribeRecordList(req)
		if err != nil {
			var sdkErr *sdkerrors.TencentCloudSDKError
			if errors.As(err, &sdkErr) && sdkErr.GetCode() == dnspodCodeNoRecords {
				break
			}
			return nil, dnspodError("list records", err)
		}
		if resp.Response == nil {
			break
		}

		for _, r := range resp.Response.RecordList {
			if r == nil || r.RecordId == nil {
				continue
			}
			ttl := 0
			if r.TTL != nil {
				ttl = int(*r.TTL)
			}
			records = append(records, TXTRecord{
				ID:      strconv.FormatUint(*r.RecordId, 10),
				Name:    stringValue(r.Name),
				Type:    stringValue(r.Type),
				Value:   stringValue(r.Value),
				TTL:     ttl,
				Enabled: stringValue(r.Status) == "ENABLE",
			})
		}

		fetched := uint64(len(resp.Response.RecordList))
		offset += fetched
		if fetched == 0 || resp.Response.RecordCountInfo == nil || resp.Response.RecordCountInfo.TotalCount == nil ||
			offset >= *resp.Response.RecordCountInfo.TotalCount {
			break
		}
	}

	out := keepChallengeRecords(records, recordName)
	log.Debug("listed TXT records", "provider", BackendDNSPod, "zone", zone, "count", len(out))
	return out, nil
}

func (p *DNSPodBackend) CreateRecord(ctx context.Context, zone, recordName, recordType, value string, ttl int) error {
	req := dnspod.NewCreateRecordRequest()
	req.Domain = common.StringPtr(zone)
	req.SubDomain = common.StringPtr(recordName)
	req.RecordType = common.StringPtr(recordType)
	req.RecordLine = common.StringPtr(dnspodDefaultLine)
	req.Value = common.StringPtr(value)
	req.TTL = common.Uint64Ptr(uint64(ttlOrDefault(ttl)))

	resp, err := p.client.CreateRecord(req)
	if err != nil {
		return dnspodError("create record", err)
	}

	id := ""
	if resp.Response != nil && resp.Response.RecordId != nil {
		id = strconv.FormatUint(*resp.Response.RecordId, 10)
	}
	logger.FromContext(ctx).Info("DNS record created", "provider", BackendDNSPod, "zone", zone, "name", recordName, "record_id", id)
	return nil
}

func (p *DNSPodBackend) DeleteRecord(ctx context.Context, zone, recordID string) error {
	id, err := strconv.ParseUint(recordID, 10, 64)
	if err != nil {
		return &domain.BackendError{Backend: BackendDNSPod, Op: "delete record", Message: "invalid record id " + recordID, Err: err}
	}

	req := dnspod.NewDeleteRecordRequest()
	req.Domain = common.StringPtr(zone)
	req.RecordId = common.Uint64Ptr(id)

	if _, err := p.client.DeleteRecord(req); err != nil {
		return dnspodError("delete record", err)
	}
	logger.FromContext(ctx).Info("DNS record deleted", "provider", BackendDNSPod, "zone", zone, "record_id", recordID)
	return nil
}

func dnspodError(op string, err error) error {
	be := domain.NewBackendError(BackendDNSPod, op, err)
	var sdkErr *sdkerrors.TencentCloudSDKError
	if errors.As(err, &sdkErr) {
		be.Code = sdkErr.GetCode()
		be.Message = sdkErr.GetMessage()
	}
	return be
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
