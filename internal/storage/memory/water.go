package memory

import (
	"context"
	"time"

	"github.com/dkotl/macrolog/internal/storage"
)

func waterKey(userID, date string) string {
	return userID + ":" + date
}

func (m *MemoryStorage) GetWaterLog(ctx context.Context, userID, date string) (storage.WaterLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	log, ok := m.water[waterKey(userID, date)]
	if !ok {
		return storage.WaterLog{}, storage.ErrNotFound
	}

	return log, nil
}

func (m *MemoryStorage) AddWaterCount(ctx context.Context, userID, date string, delta int) (storage.WaterLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := waterKey(userID, date)
	log, ok := m.water[key]
	if !ok {
		log = storage.WaterLog{UserID: userID, Date: date}
	}

	log.Count += delta
	if log.Count < 0 {
		log.Count = 0
	}
	log.UpdatedAt = time.Now()

	m.water[key] = log

	return log, nil
}
