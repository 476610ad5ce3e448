package ports

import "context"

// EventPublisher notifies other components about state changes.
type EventPublisher interface {
	// PublishInvalidation announces that the named read scopes are stale.
	PublishInvalidation(ctx context.Context, scopes ...string) error

	// PublishLogout announces a session teardown for the address.
	PublishLogout(ctx context.Context, address string) error
}

// InvalidationListener delivers invalidation scopes to a callback until the
// context is cancelled.
type InvalidationListener interface {
	Listen(ctx context.Context, fn func(scopes []string)) error
}
