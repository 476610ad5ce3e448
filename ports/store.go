package ports

import (
	"context"
	"time"
)

// Store is a persistent key-value slot for session state. Missing keys are
// reported as core.ErrNotFound.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
