package ai

import (
	"context"
	"errors"
)

// ErrUnrecognizedMeal is returned when the model cannot identify any food
// in the description or photo.
var ErrUnrecognizedMeal = errors.New("model response does not describe a recognizable meal")

// Provider turns a free-form meal description or photo into a nutrition
// estimate. Estimates are never stored here; committing one is a separate
// user action.
type Provider interface {
	AnalyzeMeal(ctx context.Context, req AnalyzeRequest) (MealEstimate, error)
}

type AnalyzeRequest struct {
	Text      string
	ImageData []byte
	ImageMIME string
}

type MealEstimate struct {
	Name         string
	CaloriesKcal float64
	CarbsG       float64
	ProteinG     float64
	FatG         float64
}
