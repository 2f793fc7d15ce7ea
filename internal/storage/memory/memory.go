package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dkotl/macrolog/internal/storage"
	"github.com/google/uuid"
)

// MemoryStorage is the in-memory implementation of storage.Store. It backs
// the server when no DATABASE_URL is configured and every handler test.
// One RWMutex guards all maps, which also makes WipeUser atomic.
type MemoryStorage struct {
	mu          sync.RWMutex
	profiles    map[string]storage.Profile
	meals       map[uuid.UUID]storage.Meal
	mealsByUser map[string]map[uuid.UUID]struct{}
	water       map[string]storage.WaterLog // keyed userID + ":" + date
}

// New creates an empty MemoryStorage.
func New() *MemoryStorage {
	return &MemoryStorage{
		profiles:    make(map[string]storage.Profile),
		meals:       make(map[uuid.UUID]storage.Meal),
		mealsByUser: make(map[string]map[uuid.UUID]struct{}),
		water:       make(map[string]storage.WaterLog),
	}
}

func (m *MemoryStorage) GetProfile(ctx context.Context, userID string) (storage.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok {
		return storage.Profile{}, storage.ErrNotFound
	}

	return p, nil
}

func (m *MemoryStorage) UpsertProfile(ctx context.Context, profile storage.Profile) (storage.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing, ok := m.profiles[profile.UserID]; ok {
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	m.profiles[profile.UserID] = profile

	return profile, nil
}

// WipeUser removes the profile, all meals and all water rows of the user
// under a single lock acquisition.
func (m *MemoryStorage) WipeUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.profiles, userID)

	for id := range m.mealsByUser[userID] {
		delete(m.meals, id)
	}
	delete(m.mealsByUser, userID)

	prefix := userID + ":"
	for key := range m.water {
		if strings.HasPrefix(key, prefix) {
			delete(m.water, key)
		}
	}

	return nil
}

func (m *MemoryStorage) Close() error {
	// no-op for memory
	return nil
}
