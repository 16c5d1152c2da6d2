package dns

import (
	"context"

	"github.com/lite-lake/acme-dns-helper/internal/domain"
	"github.com/lite-lake/acme-dns-helper/internal/domain/repository"
	"github.com/lite-lake/acme-dns-helper/internal/infrastructure/logger"
	"github.com/lite-lake/acme-dns-helper/internal/infrastructure/state"
)

// FileBackend keeps challenge records in a local YAML zone file. It is meant
// for dry runs and for setups where a local DNS server serves that file.
type FileBackend struct {
	repo repository.ZoneRepository
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{repo: state.NewFileStore(path)}
}

func NewFileBackendWithRepository(repo repository.ZoneRepository) *FileBackend {
	return &FileBackend{repo: repo}
}

func (p *FileBackend) Name() string {
	return BackendFile
}

func (p *FileBackend) ListChallengeRecords(ctx context.Context, zone, recordName string) ([]TXTRecord, error) {
	st, err := p.repo.Load(ctx)
	if err != nil {
		return nil, domain.NewBackendError(BackendFile, "list records", err)
	}

	var records []TXTRecord
	for _, r := range st.Zones[zone] {
		records = append(records, TXTRecord{
			ID:      r.ID,
			Name:    r.Name,
			Type:    r.Type,
			Value:   r.Value,
			TTL:     r.TTL,
			Enabled: r.Enabled,
		})
	}
	return keepChallengeRecords(records, recordName), nil
}

func (p *FileBackend) CreateRecord(ctx context.Context, zone, recordName, recordType, value string, ttl int) error {
	var id string
	err := p.repo.Update(ctx, func(st *repository.ZoneState) error {
		id = st.Add(zone, repository.StoredRecord{
			Name:    recordName,
			Type:    recordType,
			Value:   value,
			TTL:     ttlOrDefault(ttl),
			Enabled: true,
		})
		return nil
	})
	if err != nil {
		return domain.NewBackendError(BackendFile, "create record", err)
	}
	logger.FromContext(ctx).Info("DNS record created", "provider", BackendFile, "zone", zone, "name", recordName, "record_id", id)
	return nil
}

func (p *FileBackend) DeleteRecord(ctx context.Context, zone, recordID string) error {
	err := p.repo.Update(ctx, func(st *repository.ZoneState) error {
		if !st.Remove(zone, recordID) {
			return ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return domain.NewBackendError(BackendFile, "delete record", err)
	}
	logger.FromContext(ctx).Info("DNS record deleted", "provider", BackendFile, "zone", zone, "record_id", recordID)
	return nil
}
