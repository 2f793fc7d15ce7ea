package profiles

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/dkotl/macrolog/internal/blob"
	"github.com/dkotl/macrolog/internal/nutrition"
	"github.com/dkotl/macrolog/internal/realtime"
	"github.com/dkotl/macrolog/internal/storage"
	"github.com/dkotl/macrolog/internal/userctx"
)

var (
	ErrInvalidHeight      = errors.New("height_cm must be positive")
	ErrInvalidWeight      = errors.New("weight_kg must be positive")
	ErrInvalidAge         = errors.New("age_years must be positive")
	ErrEmptyGender        = errors.New("gender cannot be empty")
	ErrEmptyActivityLevel = errors.New("activity_level cannot be empty")
	ErrEmptyGoal          = errors.New("goal cannot be empty")
	ErrNotFound           = errors.New("profile not found")
)

// Service owns the body profile and the account lifecycle.
type Service struct {
	storage storage.Store
	hub     *realtime.Hub
	photos  blob.Store
}

func NewService(st storage.Store) *Service {
	return &Service{storage: st}
}

// WithHub attaches the realtime hub. Mutations publish a fresh snapshot
// to every subscriber of the affected user.
func (s *Service) WithHub(hub *realtime.Hub) *Service {
	s.hub = hub
	return s
}

// WithPhotoStore attaches the blob store holding meal photos so account
// deletion can clean them up.
func (s *Service) WithPhotoStore(store blob.Store) *Service {
	s.photos = store
	return s
}

// Get returns the stored profile with its derived targets.
func (s *Service) Get(ctx context.Context) (*ProfileDTO, error) {
	userID := userIDFromContext(ctx)

	profile, err := s.storage.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	dto := toDTO(profile)
	return &dto, nil
}

// Upsert replaces the profile wholesale and recomputes the daily targets.
// The first call creates the profile.
func (s *Service) Upsert(ctx context.Context, req UpsertProfileRequest) (*ProfileDTO, error) {
	userID := userIDFromContext(ctx)

	body := nutrition.BodyProfile{
		HeightCm:      req.HeightCm,
		WeightKg:      req.WeightKg,
		AgeYears:      req.AgeYears,
		Gender:        nutrition.ParseGender(req.Gender),
		ActivityLevel: nutrition.ParseActivityLevel(req.ActivityLevel),
		Goal:          nutrition.ParseGoal(req.Goal),
	}
	if err := validateBody(body); err != nil {
		return nil, err
	}

	saved, err := s.save(ctx, userID, body)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, userID)

	dto := toDTO(saved)
	return &dto, nil
}

// Patch applies a partial update on top of the stored profile. Targets are
// recomputed from the merged result.
func (s *Service) Patch(ctx context.Context, req PatchProfileRequest) (*ProfileDTO, error) {
	userID := userIDFromContext(ctx)

	current, err := s.storage.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	body := nutrition.BodyProfile{
		HeightCm:      current.HeightCm,
		WeightKg:      current.WeightKg,
		AgeYears:      current.AgeYears,
		Gender:        nutrition.Gender(current.Gender),
		ActivityLevel: nutrition.ActivityLevel(current.ActivityLevel),
		Goal:          nutrition.Goal(current.Goal),
	}
	if req.HeightCm != nil {
		body.HeightCm = *req.HeightCm
	}
	if req.WeightKg != nil {
		body.WeightKg = *req.WeightKg
	}
	if req.AgeYears != nil {
		body.AgeYears = *req.AgeYears
	}
	if req.Gender != nil {
		body.Gender = nutrition.ParseGender(*req.Gender)
	}
	if req.ActivityLevel != nil {
		body.ActivityLevel = nutrition.ParseActivityLevel(*req.ActivityLevel)
	}
	if req.Goal != nil {
		body.Goal = nutrition.ParseGoal(*req.Goal)
	}
	if err := validateBody(body); err != nil {
		return nil, err
	}

	saved, err := s.save(ctx, userID, body)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, userID)

	dto := toDTO(saved)
	return &dto, nil
}

// Targets returns only the derived daily targets.
func (s *Service) Targets(ctx context.Context) (*nutrition.Targets, error) {
	userID := userIDFromContext(ctx)

	profile, err := s.storage.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &nutrition.Targets{
		CaloriesKcal: profile.CaloriesKcal,
		CarbsG:       profile.CarbsG,
		ProteinG:     profile.ProteinG,
		FatG:         profile.FatG,
	}, nil
}

// DeleteAccount wipes every record of the user in one transaction. Meal
// photos are removed after the wipe commits; a failure there leaves only
// orphaned image files, never half-deleted records.
func (s *Service) DeleteAccount(ctx context.Context) error {
	userID := userIDFromContext(ctx)

	if err := s.storage.WipeUser(ctx, userID); err != nil {
		return fmt.Errorf("wipe user data: %w", err)
	}

	if s.photos != nil {
		if err := s.photos.DeletePrefix(ctx, "photos/"+userID+"/"); err != nil {
			log.Printf("WARN profiles: delete photos for user=%s: %v", userID, err)
		}
	}

	s.publish(ctx, userID)
	return nil
}

func (s *Service) save(ctx context.Context, userID string, body nutrition.BodyProfile) (storage.Profile, error) {
	targets := nutrition.ComputeTargets(body)

	saved, err := s.storage.UpsertProfile(ctx, storage.Profile{
		UserID:        userID,
		HeightCm:      body.HeightCm,
		WeightKg:      body.WeightKg,
		AgeYears:      body.AgeYears,
		Gender:        string(body.Gender),
		ActivityLevel: string(body.ActivityLevel),
		Goal:          string(body.Goal),
		CaloriesKcal:  targets.CaloriesKcal,
		CarbsG:        targets.CarbsG,
		ProteinG:      targets.ProteinG,
		FatG:          targets.FatG,
	})
	if err != nil {
		return storage.Profile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return saved, nil
}

func (s *Service) publish(ctx context.Context, userID string) {
	if s.hub != nil {
		s.hub.Publish(ctx, userID)
	}
}

func validateBody(body nutrition.BodyProfile) error {
	if body.HeightCm <= 0 {
		return ErrInvalidHeight
	}
	if body.WeightKg <= 0 {
		return ErrInvalidWeight
	}
	if body.AgeYears <= 0 {
		return ErrInvalidAge
	}
	if body.Gender == "" {
		return ErrEmptyGender
	}
	if body.ActivityLevel == "" {
		return ErrEmptyActivityLevel
	}
	if body.Goal == "" {
		return ErrEmptyGoal
	}
	return nil
}

func toDTO(p storage.Profile) ProfileDTO {
	return ProfileDTO{
		HeightCm:      p.HeightCm,
		WeightKg:      p.WeightKg,
		AgeYears:      p.AgeYears,
		Gender:        p.Gender,
		ActivityLevel: p.ActivityLevel,
		Goal:          p.Goal,
		Targets: nutrition.Targets{
			CaloriesKcal: p.CaloriesKcal,
			CarbsG:       p.CarbsG,
			ProteinG:     p.ProteinG,
			FatG:         p.FatG,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func userIDFromContext(ctx context.Context) string {
	if userID, ok := userctx.GetUserID(ctx); ok && strings.TrimSpace(userID) != "" {
		return userID
	}
	return "default"
}
