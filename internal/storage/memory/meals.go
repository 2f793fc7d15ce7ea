package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dkotl/macrolog/internal/storage"
	"github.com/google/uuid"
)

func (m *MemoryStorage) CreateMeal(ctx context.Context, meal storage.Meal) (storage.Meal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if meal.ID == uuid.Nil {
		meal.ID = uuid.New()
	}

	now := time.Now()
	if meal.CreatedAt.IsZero() {
		meal.CreatedAt = now
	}
	meal.UpdatedAt = now

	m.meals[meal.ID] = meal
	if m.mealsByUser[meal.UserID] == nil {
		m.mealsByUser[meal.UserID] = make(map[uuid.UUID]struct{})
	}
	m.mealsByUser[meal.UserID][meal.ID] = struct{}{}

	return meal, nil
}

func (m *MemoryStorage) GetMeal(ctx context.Context, userID string, id uuid.UUID) (storage.Meal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	meal, ok := m.meals[id]
	if !ok || meal.UserID != userID {
		return storage.Meal{}, storage.ErrNotFound
	}

	return meal, nil
}

func (m *MemoryStorage) UpdateMeal(ctx context.Context, meal storage.Meal) (storage.Meal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.meals[meal.ID]
	if !ok || existing.UserID != meal.UserID {
		return storage.Meal{}, storage.ErrNotFound
	}

	existing.Name = meal.Name
	existing.CaloriesKcal = meal.CaloriesKcal
	existing.CarbsG = meal.CarbsG
	existing.ProteinG = meal.ProteinG
	existing.FatG = meal.FatG
	existing.UpdatedAt = time.Now()

	m.meals[meal.ID] = existing

	return existing, nil
}

func (m *MemoryStorage) DeleteMeal(ctx context.Context, userID string, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	meal, ok := m.meals[id]
	if !ok || meal.UserID != userID {
		return storage.ErrNotFound
	}

	delete(m.meals, id)
	if set := m.mealsByUser[userID]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(m.mealsByUser, userID)
		}
	}

	return nil
}

func (m *MemoryStorage) ListMealsBetween(ctx context.Context, userID string, from, to time.Time) ([]storage.Meal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	meals := []storage.Meal{}
	for id := range m.mealsByUser[userID] {
		meal := m.meals[id]
		if meal.CreatedAt.Before(from) || !meal.CreatedAt.Before(to) {
			continue
		}
		meals = append(meals, meal)
	}

	sort.Slice(meals, func(i, j int) bool {
		if !meals[i].CreatedAt.Equal(meals[j].CreatedAt) {
			return meals[i].CreatedAt.Before(meals[j].CreatedAt)
		}
		return meals[i].ID.String() < meals[j].ID.String()
	})

	return meals, nil
}
