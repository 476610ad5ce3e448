package activity

import (
	"context"
	"fmt"

	"github.com/guild-genesis/herald/core"
	"github.com/guild-genesis/herald/ports"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository persists activity events through a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns an activity repository backed by the pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert records one event and returns the generated identifier.
func (r *PostgresRepository) Insert(ctx context.Context, userID, userName string, amount int) (string, error) {
	const query = `
		INSERT INTO activity_events (user_id, user_name, amount, event_type, processed_status)
		VALUES ($1, $2, $3, 'message', FALSE)
		RETURNING id`

	var id string
	if err := r.pool.QueryRow(ctx, query, userID, userName, amount).Scan(&id); err != nil {
		return "", fmt.Errorf("%w: insert activity event: %v", core.ErrPersistence, err)
	}
	return id, nil
}

// Unprocessed lists events the points consumer has not picked up yet, oldest
// first.
func (r *PostgresRepository) Unprocessed(ctx context.Context) ([]core.ActivityEvent, error) {
	const query = `
		SELECT id, user_id, user_name, amount, event_type, date, processed_status, created_at
		FROM activity_events
		WHERE processed_status = FALSE
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list unprocessed events: %v", core.ErrPersistence, err)
	}
	defer rows.Close()

	var events []core.ActivityEvent
	for rows.Next() {
		var e core.ActivityEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.Amount, &e.EventType, &e.Date, &e.Processed, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan activity event: %v", core.ErrPersistence, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list unprocessed events: %v", core.ErrPersistence, err)
	}
	return events, nil
}

// MarkProcessed flips the one-way processed flag for the event.
func (r *PostgresRepository) MarkProcessed(ctx context.Context, id string) error {
	const query = `
		UPDATE activity_events
		SET processed_status = TRUE
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w: mark event processed: %v", core.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: event %s", core.ErrNotFound, id)
	}
	return nil
}

var _ ports.ActivityRepository = (*PostgresRepository)(nil)
