package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dkotl/macrolog/internal/storage"
)

func (p *PostgresStorage) GetWaterLog(ctx context.Context, userID, date string) (storage.WaterLog, error) {
	query := `
		SELECT user_id, date, count, updated_at
		FROM water_logs
		WHERE user_id = $1 AND date = $2`

	var log storage.WaterLog
	err := p.pool.QueryRow(ctx, query, userID, date).Scan(
		&log.UserID,
		&log.Date,
		&log.Count,
		&log.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.WaterLog{}, storage.ErrNotFound
		}
		return storage.WaterLog{}, err
	}

	return log, nil
}

// AddWaterCount applies delta to the day's counter and returns the stored
// row. The counter is clamped at zero inside the statement, so concurrent
// decrements cannot drive it negative.
func (p *PostgresStorage) AddWaterCount(ctx context.Context, userID, date string, delta int) (storage.WaterLog, error) {
	query := `
		INSERT INTO water_logs (user_id, date, count, updated_at)
		VALUES ($1, $2, GREATEST(0, $3), $4)
		ON CONFLICT (user_id, date) DO UPDATE SET
			count = GREATEST(0, water_logs.count + $3),
			updated_at = EXCLUDED.updated_at
		RETURNING user_id, date, count, updated_at`

	var log storage.WaterLog
	err := p.pool.QueryRow(ctx, query, userID, date, delta, time.Now().UTC()).Scan(
		&log.UserID,
		&log.Date,
		&log.Count,
		&log.UpdatedAt,
	)
	if err != nil {
		return storage.WaterLog{}, err
	}

	return log, nil
}
