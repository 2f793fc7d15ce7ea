package ai

import (
	"context"
	"strings"
)

// MockProvider estimates from a small keyword table. It keeps the full
// analyze flow usable in development and tests without an API key.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

type knownDish struct {
	keyword  string
	estimate MealEstimate
}

var knownDishes = []knownDish{
	{"pizza", MealEstimate{Name: "Two slices of pizza", CaloriesKcal: 570, CarbsG: 72, ProteinG: 24, FatG: 21}},
	{"burger", MealEstimate{Name: "Cheeseburger", CaloriesKcal: 550, CarbsG: 40, ProteinG: 28, FatG: 31}},
	{"pasta", MealEstimate{Name: "Pasta with tomato sauce", CaloriesKcal: 380, CarbsG: 68, ProteinG: 13, FatG: 6}},
	{"chicken", MealEstimate{Name: "Grilled chicken breast", CaloriesKcal: 280, CarbsG: 0, ProteinG: 53, FatG: 6}},
	{"oatmeal", MealEstimate{Name: "Oatmeal with banana", CaloriesKcal: 350, CarbsG: 60, ProteinG: 10, FatG: 7}},
	{"porridge", MealEstimate{Name: "Oatmeal with banana", CaloriesKcal: 350, CarbsG: 60, ProteinG: 10, FatG: 7}},
	{"rice", MealEstimate{Name: "Bowl of rice", CaloriesKcal: 240, CarbsG: 53, ProteinG: 4, FatG: 1}},
	{"salad", MealEstimate{Name: "Garden salad", CaloriesKcal: 150, CarbsG: 10, ProteinG: 3, FatG: 11}},
	{"yogurt", MealEstimate{Name: "Greek yogurt", CaloriesKcal: 150, CarbsG: 9, ProteinG: 15, FatG: 5}},
	{"egg", MealEstimate{Name: "Two fried eggs", CaloriesKcal: 180, CarbsG: 1, ProteinG: 12, FatG: 14}},
	{"banana", MealEstimate{Name: "Banana", CaloriesKcal: 105, CarbsG: 27, ProteinG: 1, FatG: 0}},
	{"apple", MealEstimate{Name: "Apple", CaloriesKcal: 95, CarbsG: 25, ProteinG: 1, FatG: 0}},
}

func (p *MockProvider) AnalyzeMeal(ctx context.Context, req AnalyzeRequest) (MealEstimate, error) {
	_ = ctx

	if len(req.ImageData) > 0 {
		return MealEstimate{
			Name:         "Plated meal",
			CaloriesKcal: 520,
			CarbsG:       45,
			ProteinG:     28,
			FatG:         24,
		}, nil
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return MealEstimate{}, ErrUnrecognizedMeal
	}

	lowered := strings.ToLower(text)
	for _, dish := range knownDishes {
		if strings.Contains(lowered, dish.keyword) {
			return dish.estimate, nil
		}
	}

	// Unknown dish: echo the description as the name with a middling guess.
	name := text
	if len(name) > 80 {
		name = name[:80]
	}
	return MealEstimate{
		Name:         name,
		CaloriesKcal: 400,
		CarbsG:       45,
		ProteinG:     20,
		FatG:         15,
	}, nil
}
