package service

import (
	"context"
	"sync"

	"github.com/guild-genesis/herald/core"
	"github.com/guild-genesis/herald/ports"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Directory serves the on-chain read surface from a scope-keyed cache. Reads
// hit the chain once and are then served from memory until a mutation
// invalidates the scope, either locally or through the event bus.
type Directory struct {
	reader   ports.ChainReader
	listener ports.InvalidationListener
	log      zerolog.Logger

	mu           sync.Mutex
	badges       []core.Badge
	attestations []core.Attestation
	balances     map[string]decimal.Decimal
}

// NewDirectory creates the cached read service. listener may be nil; the
// cache then only invalidates through explicit Invalidate calls.
func NewDirectory(reader ports.ChainReader, listener ports.InvalidationListener, log zerolog.Logger) *Directory {
	return &Directory{
		reader:   reader,
		listener: listener,
		log:      log,
	}
}

// Start subscribes to invalidation events until ctx is cancelled.
func (d *Directory) Start(ctx context.Context) {
	if d.listener == nil {
		return
	}
	go func() {
		if err := d.listener.Listen(ctx, d.Invalidate); err != nil && ctx.Err() == nil {
			d.log.Error().Err(err).Msg("invalidation listener stopped")
		}
	}()
}

// Invalidate drops the cached data for the named scopes.
func (d *Directory) Invalidate(scopes []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, scope := range scopes {
		switch scope {
		case core.ScopeBadges:
			d.badges = nil
		case core.ScopeAttestations:
			d.attestations = nil
		case core.ScopeBalance:
			d.balances = nil
		}
	}
	d.log.Debug().Strs("scopes", scopes).Msg("cache invalidated")
}

// Badges lists every registered badge, cached until invalidated.
func (d *Directory) Badges(ctx context.Context) ([]core.Badge, error) {
	d.mu.Lock()
	cached := d.badges
	d.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	total, err := d.reader.TotalBadges(ctx)
	if err != nil {
		return nil, err
	}
	badges := make([]core.Badge, 0, total)
	for i := uint64(0); i < total; i++ {
		badge, err := d.reader.BadgeAt(ctx, i)
		if err != nil {
			return nil, err
		}
		badges = append(badges, badge)
	}

	d.mu.Lock()
	d.badges = badges
	d.mu.Unlock()
	return badges, nil
}

// Attestations lists every attestation known to the resolver, cached until
// invalidated.
func (d *Directory) Attestations(ctx context.Context) ([]core.Attestation, error) {
	d.mu.Lock()
	cached := d.attestations
	d.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	count, err := d.reader.AttestationCount(ctx)
	if err != nil {
		return nil, err
	}
	attestations := make([]core.Attestation, 0, count)
	for i := uint64(0); i < count; i++ {
		att, err := d.reader.AttestationAt(ctx, i)
		if err != nil {
			return nil, err
		}
		attestations = append(attestations, att)
	}

	d.mu.Lock()
	d.attestations = attestations
	d.mu.Unlock()
	return attestations, nil
}

// Balance returns the activity-token balance for the address, cached per
// address until the balance scope is invalidated.
func (d *Directory) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	d.mu.Lock()
	if d.balances != nil {
		if bal, ok := d.balances[address]; ok {
			d.mu.Unlock()
			return bal, nil
		}
	}
	d.mu.Unlock()

	bal, err := d.reader.TokenBalance(ctx, address)
	if err != nil {
		return decimal.Decimal{}, err
	}

	d.mu.Lock()
	if d.balances == nil {
		d.balances = make(map[string]decimal.Decimal)
	}
	d.balances[address] = bal
	d.mu.Unlock()
	return bal, nil
}
