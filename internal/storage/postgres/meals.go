package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dkotl/macrolog/internal/storage"
)

func (p *PostgresStorage) CreateMeal(ctx context.Context, meal storage.Meal) (storage.Meal, error) {
	if meal.ID == uuid.Nil {
		meal.ID = uuid.New()
	}
	now := time.Now().UTC()
	if meal.CreatedAt.IsZero() {
		meal.CreatedAt = now
	}
	meal.UpdatedAt = now

	query := `
		INSERT INTO meals (id, user_id, name, calories_kcal, carbs_g, protein_g, fat_g, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := p.pool.Exec(ctx, query,
		meal.ID,
		meal.UserID,
		meal.Name,
		meal.CaloriesKcal,
		meal.CarbsG,
		meal.ProteinG,
		meal.FatG,
		meal.CreatedAt,
		meal.UpdatedAt,
	)
	if err != nil {
		return storage.Meal{}, err
	}

	return meal, nil
}

func (p *PostgresStorage) GetMeal(ctx context.Context, userID string, id uuid.UUID) (storage.Meal, error) {
	query := `
		SELECT id, user_id, name, calories_kcal, carbs_g, protein_g, fat_g, created_at, updated_at
		FROM meals
		WHERE id = $1 AND user_id = $2`

	var meal storage.Meal
	err := p.pool.QueryRow(ctx, query, id, userID).Scan(
		&meal.ID,
		&meal.UserID,
		&meal.Name,
		&meal.CaloriesKcal,
		&meal.CarbsG,
		&meal.ProteinG,
		&meal.FatG,
		&meal.CreatedAt,
		&meal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Meal{}, storage.ErrNotFound
		}
		return storage.Meal{}, err
	}

	return meal, nil
}

// UpdateMeal replaces the content fields of the meal. created_at is never
// written here, so the original log time survives any number of edits.
func (p *PostgresStorage) UpdateMeal(ctx context.Context, meal storage.Meal) (storage.Meal, error) {
	meal.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE meals
		SET name = $3, calories_kcal = $4, carbs_g = $5, protein_g = $6, fat_g = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2
		RETURNING created_at`

	err := p.pool.QueryRow(ctx, query,
		meal.ID,
		meal.UserID,
		meal.Name,
		meal.CaloriesKcal,
		meal.CarbsG,
		meal.ProteinG,
		meal.FatG,
		meal.UpdatedAt,
	).Scan(&meal.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Meal{}, storage.ErrNotFound
		}
		return storage.Meal{}, err
	}

	return meal, nil
}

func (p *PostgresStorage) DeleteMeal(ctx context.Context, userID string, id uuid.UUID) error {
	query := `
		DELETE FROM meals
		WHERE id = $1 AND user_id = $2`

	result, err := p.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (p *PostgresStorage) ListMealsBetween(ctx context.Context, userID string, from, to time.Time) ([]storage.Meal, error) {
	query := `
		SELECT id, user_id, name, calories_kcal, carbs_g, protein_g, fat_g, created_at, updated_at
		FROM meals
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at ASC, id ASC`

	rows, err := p.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meals []storage.Meal
	for rows.Next() {
		var meal storage.Meal
		err := rows.Scan(
			&meal.ID,
			&meal.UserID,
			&meal.Name,
			&meal.CaloriesKcal,
			&meal.CarbsG,
			&meal.ProteinG,
			&meal.FatG,
			&meal.CreatedAt,
			&meal.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		meals = append(meals, meal)
	}

	return meals, rows.Err()
}
