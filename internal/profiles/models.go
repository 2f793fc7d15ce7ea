package profiles

import (
	"time"

	"github.com/dkotl/macrolog/internal/nutrition"
)

// ProfileDTO is the wire form of the body profile. Derived daily targets
// are always included so clients never recompute them.
type ProfileDTO struct {
	HeightCm      float64           `json:"height_cm"`
	WeightKg      float64           `json:"weight_kg"`
	AgeYears      int               `json:"age_years"`
	Gender        string            `json:"gender"`
	ActivityLevel string            `json:"activity_level"`
	Goal          string            `json:"goal"`
	Targets       nutrition.Targets `json:"targets"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// UpsertProfileRequest replaces the whole profile (PUT /v1/profile).
type UpsertProfileRequest struct {
	HeightCm      float64 `json:"height_cm"`
	WeightKg      float64 `json:"weight_kg"`
	AgeYears      int     `json:"age_years"`
	Gender        string  `json:"gender"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`
}

// PatchProfileRequest updates only the fields present in the body
// (PATCH /v1/profile). Nil keeps the stored value.
type PatchProfileRequest struct {
	HeightCm      *float64 `json:"height_cm,omitempty"`
	WeightKg      *float64 `json:"weight_kg,omitempty"`
	AgeYears      *int     `json:"age_years,omitempty"`
	Gender        *string  `json:"gender,omitempty"`
	ActivityLevel *string  `json:"activity_level,omitempty"`
	Goal          *string  `json:"goal,omitempty"`
}

// TargetsResponse is the body of GET /v1/targets.
type TargetsResponse struct {
	Targets nutrition.Targets `json:"targets"`
}

// ErrorResponse is the API error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
