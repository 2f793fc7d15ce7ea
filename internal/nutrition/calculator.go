// Package nutrition holds the pure core of the tracker: the daily-target
// calculator (BMR -> TDEE -> goal adjustment -> macro split) and the
// consumed-totals aggregator. No I/O happens here.
package nutrition

import (
	"math"
	"strings"
)

// Gender of the tracked user. Any value other than GenderMale computes
// with the female coefficients; unknown values are not an error.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// ActivityLevel scales BMR into total daily energy expenditure.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "veryActive"
)

// Goal shifts the calorie target relative to maintenance.
type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

// defaultActivityMultiplier applies when the level string is unrecognized.
const defaultActivityMultiplier = 1.2

// ParseGender canonicalizes a user supplied gender string. Unrecognized
// values pass through trimmed and compute with the female coefficients.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male":
		return GenderMale
	case "female":
		return GenderFemale
	}
	return Gender(strings.TrimSpace(s))
}

// ParseActivityLevel canonicalizes a user supplied activity level.
// Unrecognized values pass through trimmed and scale by the default
// multiplier.
func ParseActivityLevel(s string) ActivityLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sedentary":
		return ActivitySedentary
	case "light":
		return ActivityLight
	case "moderate":
		return ActivityModerate
	case "active":
		return ActivityActive
	case "veryactive", "very_active":
		return ActivityVeryActive
	}
	return ActivityLevel(strings.TrimSpace(s))
}

// ParseGoal canonicalizes a user supplied goal. Unrecognized values pass
// through trimmed and keep the calorie target at maintenance.
func ParseGoal(s string) Goal {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lose":
		return GoalLose
	case "maintain":
		return GoalMaintain
	case "gain":
		return GoalGain
	}
	return Goal(strings.TrimSpace(s))
}

// BodyProfile is the input set of the target calculation. Callers validate
// presence and positivity before calling; the calculator itself accepts any
// finite values.
type BodyProfile struct {
	HeightCm      float64
	WeightKg      float64
	AgeYears      int
	Gender        Gender
	ActivityLevel ActivityLevel
	Goal          Goal
}

// Targets are the derived daily goals, always a pure function of the
// BodyProfile they were computed from.
type Targets struct {
	CaloriesKcal int `json:"calories_kcal"`
	CarbsG       int `json:"carbs_g"`
	ProteinG     int `json:"protein_g"`
	FatG         int `json:"fat_g"`
}

// ComputeBMR estimates basal metabolic rate in kcal/day using the revised
// Harris-Benedict equations.
func ComputeBMR(weightKg, heightCm float64, ageYears int, gender Gender) float64 {
	age := float64(ageYears)
	if gender == GenderMale {
		return 88.362 + 13.397*weightKg + 4.799*heightCm - 5.677*age
	}
	return 447.593 + 9.247*weightKg + 3.098*heightCm - 4.330*age
}

// ComputeTDEE scales a BMR by the activity multiplier.
func ComputeTDEE(bmr float64, level ActivityLevel) float64 {
	multiplier, ok := activityMultipliers[level]
	if !ok {
		multiplier = defaultActivityMultiplier
	}
	return bmr * multiplier
}

// AdjustForGoal applies the calorie deficit or surplus for the goal.
// Maintain and unknown goals leave the TDEE unchanged.
func AdjustForGoal(tdee float64, goal Goal) float64 {
	switch goal {
	case GoalLose:
		return tdee * 0.85
	case GoalGain:
		return tdee * 1.15
	default:
		return tdee
	}
}

// MacroTargets splits a calorie target into daily macro grams:
// 40% of calories from carbs (4 kcal/g), 30% from protein (4 kcal/g),
// 30% from fat (9 kcal/g), each rounded to the nearest gram.
func MacroTargets(caloriesKcal int) (carbsG, proteinG, fatG int) {
	cal := float64(caloriesKcal)
	carbsG = int(math.Round(cal * 0.40 / 4))
	proteinG = int(math.Round(cal * 0.30 / 4))
	fatG = int(math.Round(cal * 0.30 / 9))
	return carbsG, proteinG, fatG
}

// ComputeTargets derives the full daily target set from a body profile.
func ComputeTargets(p BodyProfile) Targets {
	bmr := ComputeBMR(p.WeightKg, p.HeightCm, p.AgeYears, p.Gender)
	calories := int(math.Round(AdjustForGoal(ComputeTDEE(bmr, p.ActivityLevel), p.Goal)))
	carbs, protein, fat := MacroTargets(calories)
	return Targets{
		CaloriesKcal: calories,
		CarbsG:       carbs,
		ProteinG:     protein,
		FatG:         fat,
	}
}
