package locations

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned when a named location does not exist for the user.
var ErrNotFound = errors.New("saved location not found")

// SavedLocation is a place a user has stored, optionally flagged as the one
// to fall back to when a query names no location.
type SavedLocation struct {
	Name     string   `json:"name"`
	IsActive bool     `json:"isActive"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
}

// Store is the saved-locations contract consumed by the resolver and the API.
type Store interface {
	ListUserLocations(ctx context.Context, userID string) ([]SavedLocation, error)
	SaveLocation(ctx context.Context, userID string, loc SavedLocation) error
	SetActive(ctx context.Context, userID, name string) error
}

// MemoryStore is a concurrency-safe in-memory Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]SavedLocation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]SavedLocation),
	}
}

func (s *MemoryStore) ListUserLocations(ctx context.Context, userID string) ([]SavedLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	locs := s.data[userID]
	out := make([]SavedLocation, len(locs))
	copy(out, locs)
	return out, nil
}

// SaveLocation adds or replaces a location by name. A location saved with
// IsActive set demotes any previously active one.
func (s *MemoryStore) SaveLocation(ctx context.Context, userID string, loc SavedLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locs := s.data[userID]
	replaced := false
	for i := range locs {
		if loc.IsActive {
			locs[i].IsActive = false
		}
		if strings.EqualFold(locs[i].Name, loc.Name) {
			locs[i] = loc
			replaced = true
		}
	}
	if !replaced {
		locs = append(locs, loc)
	}
	s.data[userID] = locs
	return nil
}

func (s *MemoryStore) SetActive(ctx context.Context, userID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locs := s.data[userID]
	found := false
	for i := range locs {
		match := strings.EqualFold(locs[i].Name, name)
		locs[i].IsActive = match
		if match {
			found = true
		}
	}
	if !found {
		return ErrNotFound
	}
	return nil
}
