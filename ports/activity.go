package ports

import (
	"context"

	"github.com/guild-genesis/herald/core"
)

// ActivityRepository persists accepted activity events.
type ActivityRepository interface {
	// Insert records one event and returns the generated identifier.
	Insert(ctx context.Context, userID, userName string, amount int) (string, error)

	// Unprocessed lists events the points consumer has not picked up yet,
	// oldest first.
	Unprocessed(ctx context.Context) ([]core.ActivityEvent, error)

	// MarkProcessed flips the one-way processed flag.
	MarkProcessed(ctx context.Context, id string) error
}
