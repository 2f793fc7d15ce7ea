package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage is the pgx-backed implementation of storage.Store.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// New connects to the database and verifies the connection with a ping.
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{pool: pool}, nil
}

// WipeUser deletes the profile, all meals and all water rows of the user in
// a single transaction. Either every sub-delete commits or none does.
func (p *PostgresStorage) WipeUser(ctx context.Context, userID string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	deletes := []string{
		`DELETE FROM water_logs WHERE user_id = $1`,
		`DELETE FROM meals WHERE user_id = $1`,
		`DELETE FROM profiles WHERE user_id = $1`,
	}

	for _, query := range deletes {
		if _, err := tx.Exec(ctx, query, userID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}
