package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Get(ctx context.Context, userID int64) (*Record, error)
	Upsert(ctx context.Context, rec *Record) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Get(ctx context.Context, userID int64) (*Record, error) {
	query := `SELECT user_id, last_request_time, remaining_requests FROM quota_records WHERE user_id = $1`

	rec := &Record{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&rec.UserID, &rec.LastRequestTime, &rec.RemainingRequests)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying quota record: %w", err)
	}
	return rec, nil
}

func (r *postgresRepository) Upsert(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO quota_records (user_id, last_request_time, remaining_requests)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET last_request_time = EXCLUDED.last_request_time,
		    remaining_requests = EXCLUDED.remaining_requests`

	_, err := r.pool.Exec(ctx, query, rec.UserID, rec.LastRequestTime, rec.RemainingRequests)
	if err != nil {
		return fmt.Errorf("upserting quota record: %w", err)
	}
	return nil
}
