package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/lite-lake/acme-dns-helper/internal/constants"
	"github.com/lite-lake/acme-dns-helper/internal/domain"
	"github.com/lite-lake/acme-dns-helper/internal/domain/repository"
	"gopkg.in/yaml.v3"
)

// FileStore keeps zone state in a YAML file. A sibling .lock file serializes
// access between processes.
type FileStore struct {
	path  string
	flock *flock.Flock
}

var _ repository.ZoneRepository = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:  path,
		flock: flock.New(path + ".lock"),
	}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (*repository.ZoneState, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.flock.Unlock()

	return s.read()
}

func (s *FileStore) Update(ctx context.Context, fn func(*repository.ZoneState) error) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.flock.Unlock()

	st, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	return s.write(st)
}

func (s *FileStore) lock() error {
	if err := os.MkdirAll(filepath.Dir(s.path), constants.DirPermissionOwner); err != nil {
		return fmt.Errorf("create state dir for %s: %w: %w", s.path, domain.ErrStateWriteFailed, err)
	}
	if err := s.flock.Lock(); err != nil {
		return fmt.Errorf("acquire lock %s: %w: %w", s.flock.Path(), domain.ErrStateWriteFailed, err)
	}
	return nil
}

func (s *FileStore) read() (*repository.ZoneState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return repository.NewZoneState(), nil
		}
		return nil, fmt.Errorf("read state file %s: %w: %w", s.path, domain.ErrStateReadFailed, err)
	}

	st := repository.NewZoneState()
	if err := yaml.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w: %w", s.path, domain.ErrStateSerializeFail, err)
	}
	if st.Zones == nil {
		st.Zones = make(map[string][]repository.StoredRecord)
	}
	return st, nil
}

func (s *FileStore) write(st *repository.ZoneState) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state for %s: %w: %w", s.path, domain.ErrStateSerializeFail, err)
	}

	tmpPath := filepath.Join(filepath.Dir(s.path), "."+filepath.Base(s.path)+".tmp")
	if err := os.WriteFile(tmpPath, data, constants.FilePermissionOwnerRW); err != nil {
		return fmt.Errorf("write temp state file %s: %w: %w", tmpPath, domain.ErrStateWriteFailed, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename state file %s to %s: %w: %w", tmpPath, s.path, domain.ErrStateWriteFailed, err)
	}

	return nil
}
