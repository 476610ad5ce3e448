package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/guild-genesis/herald/core"
	"github.com/guild-genesis/herald/ports"
	"github.com/rs/zerolog"
)

// Profiles wraps the backend profile CRUD with the same single-flight
// discipline the on-chain writes get: one pending mutation per kind, and a
// profiles invalidation on every successful write.
type Profiles struct {
	api    ports.ProfileAPI
	events ports.EventPublisher
	log    zerolog.Logger

	creating atomic.Bool
	updating atomic.Bool
	deleting atomic.Bool
}

// NewProfiles creates the profile service.
func NewProfiles(api ports.ProfileAPI, events ports.EventPublisher, log zerolog.Logger) *Profiles {
	return &Profiles{api: api, events: events, log: log}
}

// List returns all community profiles.
func (p *Profiles) List(ctx context.Context) ([]core.Profile, error) {
	return p.api.Profiles(ctx)
}

// Create creates the caller's profile.
func (p *Profiles) Create(ctx context.Context, input core.ProfileInput) error {
	return p.mutate(ctx, core.MutationCreateProfile, &p.creating, func() error {
		return p.api.CreateProfile(ctx, input)
	})
}

// Update replaces the profile stored for address.
func (p *Profiles) Update(ctx context.Context, address string, input core.ProfileInput) error {
	return p.mutate(ctx, core.MutationUpdateProfile, &p.updating, func() error {
		return p.api.UpdateProfile(ctx, address, input)
	})
}

// Delete removes the profile stored for address.
func (p *Profiles) Delete(ctx context.Context, address string) error {
	return p.mutate(ctx, core.MutationDeleteProfile, &p.deleting, func() error {
		return p.api.DeleteProfile(ctx, address)
	})
}

func (p *Profiles) mutate(ctx context.Context, kind core.MutationKind, guard *atomic.Bool, fn func() error) error {
	if !guard.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %s already in flight", core.ErrConcurrentMutation, kind)
	}
	defer guard.Store(false)

	if err := fn(); err != nil {
		return err
	}
	if p.events != nil {
		if err := p.events.PublishInvalidation(ctx, core.ScopeProfiles); err != nil {
			p.log.Warn().Err(err).Msg("failed to publish invalidation")
		}
	}
	return nil
}
