package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dkotl/macrolog/internal/storage"
)

func (p *PostgresStorage) GetProfile(ctx context.Context, userID string) (storage.Profile, error) {
	query := `
		SELECT user_id, height_cm, weight_kg, age_years, gender, activity_level, goal,
			calories_kcal, carbs_g, protein_g, fat_g, created_at, updated_at
		FROM profiles
		WHERE user_id = $1`

	var prof storage.Profile
	err := p.pool.QueryRow(ctx, query, userID).Scan(
		&prof.UserID,
		&prof.HeightCm,
		&prof.WeightKg,
		&prof.AgeYears,
		&prof.Gender,
		&prof.ActivityLevel,
		&prof.Goal,
		&prof.CaloriesKcal,
		&prof.CarbsG,
		&prof.ProteinG,
		&prof.FatG,
		&prof.CreatedAt,
		&prof.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Profile{}, storage.ErrNotFound
		}
		return storage.Profile{}, err
	}

	return prof, nil
}

// UpsertProfile inserts the profile or, when a row for the user already
// exists, replaces every field except created_at.
func (p *PostgresStorage) UpsertProfile(ctx context.Context, prof storage.Profile) (storage.Profile, error) {
	query := `
		INSERT INTO profiles (user_id, height_cm, weight_kg, age_years, gender, activity_level, goal,
			calories_kcal, carbs_g, protein_g, fat_g, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		ON CONFLICT (user_id) DO UPDATE SET
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			age_years = EXCLUDED.age_years,
			gender = EXCLUDED.gender,
			activity_level = EXCLUDED.activity_level,
			goal = EXCLUDED.goal,
			calories_kcal = EXCLUDED.calories_kcal,
			carbs_g = EXCLUDED.carbs_g,
			protein_g = EXCLUDED.protein_g,
			fat_g = EXCLUDED.fat_g,
			updated_at = now()
		RETURNING user_id, height_cm, weight_kg, age_years, gender, activity_level, goal,
			calories_kcal, carbs_g, protein_g, fat_g, created_at, updated_at`

	var saved storage.Profile
	err := p.pool.QueryRow(ctx, query,
		prof.UserID,
		prof.HeightCm,
		prof.WeightKg,
		prof.AgeYears,
		prof.Gender,
		prof.ActivityLevel,
		prof.Goal,
		prof.CaloriesKcal,
		prof.CarbsG,
		prof.ProteinG,
		prof.FatG,
	).Scan(
		&saved.UserID,
		&saved.HeightCm,
		&saved.WeightKg,
		&saved.AgeYears,
		&saved.Gender,
		&saved.ActivityLevel,
		&saved.Goal,
		&saved.CaloriesKcal,
		&saved.CarbsG,
		&saved.ProteinG,
		&saved.FatG,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		return storage.Profile{}, err
	}

	return saved, nil
}
