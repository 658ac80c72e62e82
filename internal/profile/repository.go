package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Get(ctx context.Context, userID int64) (*Profile, error)
	SetVIPExpires(ctx context.Context, userID int64, expires time.Time) error
	TouchLastUsed(ctx context.Context, userID int64, at time.Time) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Get(ctx context.Context, userID int64) (*Profile, error) {
	query := `SELECT user_id, vip_expires, last_used FROM profiles WHERE user_id = $1`

	p := &Profile{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.VIPExpires, &p.LastUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) SetVIPExpires(ctx context.Context, userID int64, expires time.Time) error {
	query := `
		INSERT INTO profiles (user_id, vip_expires)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET vip_expires = EXCLUDED.vip_expires`

	_, err := r.pool.Exec(ctx, query, userID, expires)
	if err != nil {
		return fmt.Errorf("setting vip expiry: %w", err)
	}
	return nil
}

func (r *postgresRepository) TouchLastUsed(ctx context.Context, userID int64, at time.Time) error {
	query := `
		INSERT INTO profiles (user_id, last_used)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET last_used = EXCLUDED.last_used`

	_, err := r.pool.Exec(ctx, query, userID, at)
	if err != nil {
		return fmt.Errorf("touching last_used: %w", err)
	}
	return nil
}
