package nutrition

// MealNutrients is the nutrient tuple contributed by one logged meal.
// Zero values stand in for fields missing on the original record.
type MealNutrients struct {
	CaloriesKcal float64
	CarbsG       float64
	ProteinG     float64
	FatG         float64
}

// ConsumedTotals is the element-wise sum of a day's meals. It is derived
// state and is never persisted.
type ConsumedTotals struct {
	CaloriesKcal float64 `json:"calories_kcal"`
	CarbsG       float64 `json:"carbs_g"`
	ProteinG     float64 `json:"protein_g"`
	FatG         float64 `json:"fat_g"`
}

// Add folds one meal into the totals.
func (t *ConsumedTotals) Add(m MealNutrients) {
	t.CaloriesKcal += m.CaloriesKcal
	t.CarbsG += m.CarbsG
	t.ProteinG += m.ProteinG
	t.FatG += m.FatG
}

// SumMeals reduces a meal list to consumed totals. The result does not
// depend on ordering, and an empty or nil list sums to all zeros.
func SumMeals(meals []MealNutrients) ConsumedTotals {
	var totals ConsumedTotals
	for _, m := range meals {
		totals.Add(m)
	}
	return totals
}
