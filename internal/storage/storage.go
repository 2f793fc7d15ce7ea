package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by every implementation when the requested
// record does not exist.
var ErrNotFound = errors.New("record not found")

// Profile is the single body/activity profile of a user. The derived daily
// targets are stored in the same row as the inputs they were computed from,
// so a reader never sees targets belonging to a different input set.
type Profile struct {
	UserID        string
	HeightCm      float64
	WeightKg      float64
	AgeYears      int
	Gender        string
	ActivityLevel string
	Goal          string
	CaloriesKcal  int
	CarbsG        int
	ProteinG      int
	FatG          int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Meal is one logged meal. CreatedAt is assigned once at creation and is
// never changed by updates.
type Meal struct {
	ID           uuid.UUID
	UserID       string
	Name         string
	CaloriesKcal float64
	CarbsG       float64
	ProteinG     float64
	FatG         float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WaterLog is the per-day serving counter, one row per user per date.
type WaterLog struct {
	UserID    string
	Date      string // YYYY-MM-DD
	Count     int
	UpdatedAt time.Time
}

// ProfilesStorage persists at most one profile per user.
type ProfilesStorage interface {
	// GetProfile returns the profile for the user or ErrNotFound.
	GetProfile(ctx context.Context, userID string) (Profile, error)

	// UpsertProfile creates or fully replaces the profile (last write wins).
	// CreatedAt of an existing row is preserved.
	UpsertProfile(ctx context.Context, profile Profile) (Profile, error)
}

// MealsStorage persists logged meals keyed by user + meal ID.
type MealsStorage interface {
	// CreateMeal inserts a meal, assigning ID and CreatedAt when unset.
	CreateMeal(ctx context.Context, meal Meal) (Meal, error)

	// GetMeal returns one meal of the user or ErrNotFound.
	GetMeal(ctx context.Context, userID string, id uuid.UUID) (Meal, error)

	// UpdateMeal replaces the five content fields of an existing meal.
	// CreatedAt is never touched. Returns ErrNotFound for a missing or
	// foreign meal.
	UpdateMeal(ctx context.Context, meal Meal) (Meal, error)

	// DeleteMeal removes one meal of the user or returns ErrNotFound.
	DeleteMeal(ctx context.Context, userID string, id uuid.UUID) error

	// ListMealsBetween returns the user's meals with CreatedAt in
	// [from, to), ordered by CreatedAt then ID.
	ListMealsBetween(ctx context.Context, userID string, from, to time.Time) ([]Meal, error)
}

// WaterStorage persists the daily water counters.
type WaterStorage interface {
	// GetWaterLog returns the counter for the date or ErrNotFound when no
	// row exists yet (callers treat that as count 0).
	GetWaterLog(ctx context.Context, userID, date string) (WaterLog, error)

	// AddWaterCount atomically applies delta to the counter, clamping the
	// result at 0, creating the row when absent.
	AddWaterCount(ctx context.Context, userID, date string, delta int) (WaterLog, error)
}

// Store is the full persistence surface of the tracker.
type Store interface {
	ProfilesStorage
	MealsStorage
	WaterStorage

	// WipeUser deletes the profile, every meal regardless of date, and
	// every water row of the user as one atomic operation. Wiping a user
	// with no data succeeds.
	WipeUser(ctx context.Context, userID string) error

	// Close releases the underlying resources (no-op for memory).
	Close() error
}
