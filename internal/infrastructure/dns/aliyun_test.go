package dns

import (
	"context"
	"errors"
	"strconv"
	"testing"

	alidns "github.com/alibabacloud-go/alidns-20150109/v4/client"
	"github.com/alibabacloud-go/tea/tea"
	"github.com/lite-lake/acme-dns-helper/internal/domain"
)

type fakeAliyunAPI struct {
	records   []*alidns.DescribeDomainRecordsResponseBodyDomainRecordsRecord
	listErr   error
	createErr error
	deleteErr error

	listReqs   []*alidns.DescribeDomainRecordsRequest
	createReqs []*alidns.AddDomainRecordRequest
	deleteReqs []*alidns.DeleteDomainRecordRequest
}

func (f *fakeAliyunAPI) DescribeDomainRecords(req *alidns.DescribeDomainRecordsRequest) (*alidns.DescribeDomainRecordsResponse, error) {
	f.listReqs = append(f.listReqs, req)
	if f.listErr != nil {
		return nil, f.listErr
	}
	size := tea.Int64Value(req.PageSize)
	start := (tea.Int64Value(req.PageNumber) - 1) * size
	end := start + size
	if start > int64(len(f.records)) {
		start = int64(len(f.records))
	}
	if end > int64(len(f.records)) {
		end = int64(len(f.records))
	}
	return &alidns.DescribeDomainRecordsResponse{
		Body: &alidns.DescribeDomainRecordsResponseBody{
			TotalCount: tea.Int64(int64(len(f.records))),
			DomainRecords: &alidns.DescribeDomainRecordsResponseBodyDomainRecords{
				Record: f.records[start:end],
			},
		},
	}, nil
}

func (f *fakeAliyunAPI) AddDomainRecord(req *alidns.AddDomainRecordRequest) (*alidns.AddDomainRecordResponse, error) {
	f.createReqs = append(f.createReqs, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &alidns.AddDomainRecordResponse{
		Body: &alidns.AddDomainRecordResponseBody{RecordId: tea.String("9001")},
	}, nil
}

func (f *fakeAliyunAPI) DeleteDomainRecord(req *alidns.DeleteDomainRecordRequest) (*alidns.DeleteDomainRecordResponse, error) {
	f.deleteReqs = append(f.deleteReqs, req)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &alidns.DeleteDomainRecordResponse{}, nil
}

func aliyunRecord(id, rr, value, status string) *alidns.DescribeDomainRecordsResponseBodyDomainRecordsRecord {
	return &alidns.DescribeDomainRecordsResponseBodyDomainRecordsRecord{
		RecordId: tea.String(id),
		RR:       tea.String(rr),
		Type:     tea.String("TXT"),
		Value:    tea.String(value),
		Status:   tea.String(status),
		TTL:      tea.Int64(600),
	}
}

func TestAliyunBackend_ListChallengeRecords(t *testing.T) {
	api := &fakeAliyunAPI{
		records: []*alidns.DescribeDomainRecordsResponseBodyDomainRecordsRecord{
			aliyunRecord("1", "_acme-challenge.foo.bar", "p1", "ENABLE"),
			aliyunRecord("2", "_acme-challenge.foo.bar.baz", "fuzzy", "ENABLE"),
			aliyunRecord("3", "_acme-challenge.foo.bar", "off", "DISABLE"),
			aliyunRecord("4", "_acme-challenge.foo.bar", "stale", "ENABLE"),
		},
	}
	b := &AliyunBackend{client: api}

	got, err := b.ListChallengeRecords(context.Background(), "example.com", "_acme-challenge.foo.bar")
	if err != nil {
		t.Fatalf("ListChallengeRecords() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "4" {
		t.Errorf("records = %+v, want ids 1 and 4", got)
	}

	req := api.listReqs[0]
	if tea.StringValue(req.DomainName) != "example.com" || tea.StringValue(req.RRKeyWord) != "_acme-challenge.foo.bar" || tea.StringValue(req.Type) != "TXT" {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestAliyunBackend_ListPages(t *testing.T) {
	var records []*alidns.DescribeDomainRecordsResponseBodyDomainRecordsRecord
	for i := 0; i < aliyunPageSize+3; i++ {
		records = append(records, aliyunRecord(strconv.Itoa(i), "_acme-challenge", "v", "ENABLE"))
	}
	api := &fakeAliyunAPI{records: records}
	b := &AliyunBackend{client: api}

	got, err := b.ListChallengeRecords(context.Background(), "example.com", "_acme-challenge")
	if err != nil {
		t.Fatalf("ListChallengeRecords() error = %v", err)
	}
	if len(got) != aliyunPageSize+3 {
		t.Errorf("got %d records, want %d", len(got), aliyunPageSize+3)
	}
	if len(api.listReqs) != 2 {
		t.Errorf("expected 2 page requests, got %d", len(api.listReqs))
	}
}

func TestAliyunBackend_ListEmpty(t *testing.T) {
	b := &AliyunBackend{client: &fakeAliyunAPI{}}

	got, err := b.ListChallengeRecords(context.Background(), "example.com", "_acme-challenge")
	if err != nil {
		t.Fatalf("ListChallengeRecords() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}

func TestAliyunBackend_Errors(t *testing.T) {
	sdkErr := tea.NewSDKError(map[string]interface{}{
		"code":    "InvalidAccessKeyId.NotFound",
		"message": "Specified access key is not found.",
	})
	api := &fakeAliyunAPI{listErr: sdkErr, createErr: sdkErr, deleteErr: sdkErr}
	b := &AliyunBackend{client: api}
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["list"] = b.ListChallengeRecords(ctx, "example.com", "_acme-challenge")
	checks["create"] = b.CreateRecord(ctx, "example.com", "_acme-challenge", "TXT", "v", 0)
	checks["delete"] = b.DeleteRecord(ctx, "example.com", "1")

	for op, err := range checks {
		var be *domain.BackendError
		if !errors.As(err, &be) {
			t.Errorf("%s: error %v is not a BackendError", op, err)
			continue
		}
		if be.Backend != BackendAliyun || be.Code != "InvalidAccessKeyId.NotFound" {
			t.Errorf("%s: BackendError = %+v", op, be)
		}
		if !errors.Is(err, sdkErr) {
			t.Errorf("%s: SDK error not preserved", op)
		}
	}
}

func TestAliyunBackend_CreateAndDelete(t *testing.T) {
	api := &fakeAliyunAPI{}
	b := &AliyunBackend{client: api}
	ctx := context.Background()

	if err := b.CreateRecord(ctx, "example.com", "_acme-challenge.test", "TXT", "abc123", 120); err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	req := api.createReqs[0]
	if tea.StringValue(req.DomainName) != "example.com" || tea.StringValue(req.RR) != "_acme-challenge.test" ||
		tea.StringValue(req.Type) != "TXT" || tea.StringValue(req.Value) != "abc123" || tea.Int64Value(req.TTL) != 120 {
		t.Errorf("unexpected create request %+v", req)
	}

	if err := b.DeleteRecord(ctx, "example.com", "9001"); err != nil {
		t.Fatalf("DeleteRecord() error = %v", err)
	}
	if tea.StringValue(api.deleteReqs[0].RecordId) != "9001" {
		t.Errorf("deleted record id = %s", tea.StringValue(api.deleteReqs[0].RecordId))
	}
}
