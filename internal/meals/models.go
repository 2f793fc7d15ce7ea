package meals

import (
	"time"

	"github.com/dkotl/macrolog/internal/nutrition"
	"github.com/google/uuid"
)

// MealDTO is the wire form of one logged meal.
type MealDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	CaloriesKcal float64   `json:"calories_kcal"`
	CarbsG       float64   `json:"carbs_g"`
	ProteinG     float64   `json:"protein_g"`
	FatG         float64   `json:"fat_g"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MealRequest carries the five content fields shared by create and update.
// Missing numeric fields decode as 0.
type MealRequest struct {
	Name         string  `json:"name"`
	CaloriesKcal float64 `json:"calories_kcal"`
	CarbsG       float64 `json:"carbs_g"`
	ProteinG     float64 `json:"protein_g"`
	FatG         float64 `json:"fat_g"`
}

// MealsResponse is the day listing: the resolved date, the meals inside its
// local [00:00, 24:00) window, and their consumed totals.
type MealsResponse struct {
	Date   string                   `json:"date"`
	Meals  []MealDTO                `json:"meals"`
	Totals nutrition.ConsumedTotals `json:"totals"`
}

// AnalyzeTextRequest is the body of POST /v1/meals/analyze.
type AnalyzeTextRequest struct {
	Text string `json:"text"`
}

// AnalyzePhotoRequest is the body of POST /v1/meals/analyze-photo. The image
// is base64 (a data URL prefix is tolerated); MimeType is a hint used only
// when the bytes cannot be sniffed. Text optionally narrows the analysis.
type AnalyzePhotoRequest struct {
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type,omitempty"`
	Text        string `json:"text,omitempty"`
}

// EstimateDTO mirrors MealRequest so a confirmed estimate can be POSTed to
// /v1/meals unchanged.
type EstimateDTO struct {
	Name         string  `json:"name"`
	CaloriesKcal float64 `json:"calories_kcal"`
	CarbsG       float64 `json:"carbs_g"`
	ProteinG     float64 `json:"protein_g"`
	FatG         float64 `json:"fat_g"`
}

// AnalyzeResponse returns the estimate for user confirmation. Nothing is
// committed to the meal log until the client creates the meal explicitly.
type AnalyzeResponse struct {
	Estimate EstimateDTO `json:"estimate"`
	PhotoURL string      `json:"photo_url,omitempty"`
}

// ErrorResponse is the API error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
