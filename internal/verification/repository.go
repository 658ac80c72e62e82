package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	GetByCode(ctx context.Context, code string) (*Entry, error)
	MarkVerified(ctx context.Context, code string) (bool, error)
	ListVerifiedUnprocessed(ctx context.Context) ([]Entry, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Insert(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO verification_entries
			(id, user_id, uid, region, code, verified, processed, expires_at, chat_id, message_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.UserID, e.UID, e.Region, e.Code, e.Verified, e.Processed,
		e.ExpiresAt, e.ChatID, e.MessageID, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting verification entry: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByCode(ctx context.Context, code string) (*Entry, error) {
	query := `
		SELECT id, user_id, uid, region, code, verified, verified_at, processed,
		       expires_at, chat_id, message_id, created_at
		FROM verification_entries WHERE code = $1`

	e := &Entry{}
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&e.ID, &e.UserID, &e.UID, &e.Region, &e.Code, &e.Verified, &e.VerifiedAt,
		&e.Processed, &e.ExpiresAt, &e.ChatID, &e.MessageID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying entry by code: %w", err)
	}
	return e, nil
}

// MarkVerified flips verified for an unverified entry. Returns false when the
// entry was already verified (or does not exist), making the flip idempotent
// without a read-modify-write race.
func (r *postgresRepository) MarkVerified(ctx context.Context, code string) (bool, error) {
	query := `
		UPDATE verification_entries
		SET verified = true, verified_at = NOW()
		WHERE code = $1 AND verified = false`

	tag, err := r.pool.Exec(ctx, query, code)
	if err != nil {
		return false, fmt.Errorf("marking entry verified: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresRepository) ListVerifiedUnprocessed(ctx context.Context) ([]Entry, error) {
	query := `
		SELECT id, user_id, uid, region, code, verified, verified_at, processed,
		       expires_at, chat_id, message_id, created_at
		FROM verification_entries
		WHERE verified = true AND processed = false
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing verified unprocessed entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.ID, &e.UserID, &e.UID, &e.Region, &e.Code, &e.Verified, &e.VerifiedAt,
			&e.Processed, &e.ExpiresAt, &e.ChatID, &e.MessageID, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning verification entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating verification entries: %w", err)
	}
	return entries, nil
}

func (r *postgresRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE verification_entries SET processed = true WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("marking entry processed: %w", err)
	}
	return nil
}
