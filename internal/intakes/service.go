package intakes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkotl/macrolog/internal/config"
	"github.com/dkotl/macrolog/internal/realtime"
	"github.com/dkotl/macrolog/internal/storage"
	"github.com/dkotl/macrolog/internal/userctx"
)

var ErrInvalidDate = errors.New("date must be formatted YYYY-MM-DD")

// Service owns the per-day water serving counter.
type Service struct {
	storage   storage.Store
	hub       *realtime.Hub
	servingMl int
}

func NewService(st storage.Store, cfg *config.Config) *Service {
	servingMl := cfg.WaterServingMl
	if servingMl <= 0 {
		servingMl = 250
	}
	return &Service{storage: st, servingMl: servingMl}
}

// WithHub attaches the realtime hub. Counter changes publish a fresh
// snapshot to every subscriber of the affected user.
func (s *Service) WithHub(hub *realtime.Hub) *Service {
	s.hub = hub
	return s
}

// Get returns the counter for a date (empty means today). A day without a
// row reads as count 0; the read persists nothing.
func (s *Service) Get(ctx context.Context, date string) (*WaterResponse, error) {
	userID := userIDFromContext(ctx)

	day, err := resolveDate(date)
	if err != nil {
		return nil, err
	}

	waterLog, err := s.storage.GetWaterLog(ctx, userID, day)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return s.toResponse(day, 0), nil
		}
		return nil, fmt.Errorf("get water log: %w", err)
	}

	return s.toResponse(day, waterLog.Count), nil
}

// Increment adds one serving to today's counter.
func (s *Service) Increment(ctx context.Context) (*WaterResponse, error) {
	return s.add(ctx, 1)
}

// Decrement removes one serving from today's counter. At zero the counter
// stays at zero; that is a no-op, not an error.
func (s *Service) Decrement(ctx context.Context) (*WaterResponse, error) {
	return s.add(ctx, -1)
}

func (s *Service) add(ctx context.Context, delta int) (*WaterResponse, error) {
	userID := userIDFromContext(ctx)
	day := time.Now().Format("2006-01-02")

	waterLog, err := s.storage.AddWaterCount(ctx, userID, day, delta)
	if err != nil {
		return nil, fmt.Errorf("update water count: %w", err)
	}

	s.publish(ctx, userID)

	return s.toResponse(day, waterLog.Count), nil
}

func (s *Service) publish(ctx context.Context, userID string) {
	if s.hub != nil {
		s.hub.Publish(ctx, userID)
	}
}

func (s *Service) toResponse(date string, count int) *WaterResponse {
	return &WaterResponse{
		Date:   date,
		Count:  count,
		Liters: float64(count*s.servingMl) / 1000,
	}
}

func resolveDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Now().Format("2006-01-02"), nil
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", ErrInvalidDate
	}
	return date, nil
}

func userIDFromContext(ctx context.Context) string {
	if userID, ok := userctx.GetUserID(ctx); ok && strings.TrimSpace(userID) != "" {
		return userID
	}
	return "default"
}
