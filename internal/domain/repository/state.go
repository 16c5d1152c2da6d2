package repository

import (
	"context"
	"strconv"
)

// ZoneRepository persists TXT records for backends that keep their own state
// instead of talking to a provider API.
type ZoneRepository interface {
	Load(ctx context.Context) (*ZoneState, error)
	// Update loads the state, applies fn and saves the result while holding
	// exclusive access. Nothing is saved when fn returns an error.
	Update(ctx context.Context, fn func(*ZoneState) error) error
}

type StoredRecord struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Value   string `yaml:"value"`
	TTL     int    `yaml:"ttl,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

type ZoneState struct {
	NextID int                       `yaml:"next_id"`
	Zones  map[string][]StoredRecord `yaml:"zones"`
}

func NewZoneState() *ZoneState {
	return &ZoneState{
		NextID: 1,
		Zones:  make(map[string][]StoredRecord),
	}
}

// Add appends rec to zone under a freshly allocated id and returns that id.
func (s *ZoneState) Add(zone string, rec StoredRecord) string {
	if s.Zones == nil {
		s.Zones = make(map[string][]StoredRecord)
	}
	if s.NextID < 1 {
		s.NextID = 1
	}
	rec.ID = strconv.Itoa(s.NextID)
	s.NextID++
	s.Zones[zone] = append(s.Zones[zone], rec)
	return rec.ID
}

// Remove deletes the record with id from zone and reports whether it existed.
func (s *ZoneState) Remove(zone, id string) bool {
	records := s.Zones[zone]
	for i, r := range records {
		if r.ID == id {
			s.Zones[zone] = append(records[:i], records[i+1:]...)
			if len(s.Zones[zone]) == 0 {
				delete(s.Zones, zone)
			}
			return true
		}
	}
	return false
}
