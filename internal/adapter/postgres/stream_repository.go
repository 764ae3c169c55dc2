package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/streampulse/internal/domain"
)

type StreamRepo struct {
	pool *pgxpool.Pool
}

var _ domain.StreamRepository = (*StreamRepo)(nil)

func NewStreamRepo(pool *pgxpool.Pool) *StreamRepo {
	return &StreamRepo{pool: pool}
}

func (r *StreamRepo) GetByID(ctx context.Context, streamID string) (domain.Stream, error) {
	const query = `
		SELECT id, owner_id, moderators, live, viewer_count, chat_enabled, donations_enabled
		FROM streams
		WHERE id = $1`

	var stream domain.Stream
	err := r.pool.QueryRow(ctx, query, streamID).Scan(
		&stream.ID,
		&stream.OwnerID,
		&stream.Moderators,
		&stream.Live,
		&stream.ViewerCount,
		&stream.ChatEnabled,
		&stream.DonationsEnabled,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Stream{}, domain.ErrStreamNotFound
	}
	if err != nil {
		return domain.Stream{}, fmt.Errorf("failed to get stream by ID: %w", err)
	}
	return stream, nil
}

func (r *StreamRepo) IncrementViewers(ctx context.Context, streamID string) error {
	const query = `
		UPDATE streams
		SET viewer_count = viewer_count + 1, updated_at = now()
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, streamID); err != nil {
		return fmt.Errorf("failed to increment viewer count: %w", err)
	}
	return nil
}

func (r *StreamRepo) DecrementViewers(ctx context.Context, streamID string) error {
	// Floor at zero so racing disconnects never push the column negative.
	const query = `
		UPDATE streams
		SET viewer_count = GREATEST(viewer_count - 1, 0), updated_at = now()
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, streamID); err != nil {
		return fmt.Errorf("failed to decrement viewer count: %w", err)
	}
	return nil
}
