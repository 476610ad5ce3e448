package service

import (
	"context"

	"github.com/guild-genesis/herald/core"
	"github.com/guild-genesis/herald/ports"
	"github.com/rs/zerolog"
)

// Mutations is the facade over the on-chain write operations. Each kind of
// write has its own lifecycle controller, so a pending badge creation does not
// block an attestation.
type Mutations struct {
	builder      ports.CallBuilder
	badges       *MutationController
	attestations *MutationController
}

// MutationDepths carries the per-kind confirmation depths.
type MutationDepths struct {
	Badge       uint64
	Attestation uint64
}

// DefaultMutationDepths returns the standard confirmation depths.
func DefaultMutationDepths() MutationDepths {
	return MutationDepths{
		Badge:       core.DefaultBadgeConfirmations,
		Attestation: core.DefaultAttestationConfirmations,
	}
}

// NewMutations wires the on-chain write facade.
func NewMutations(builder ports.CallBuilder, writer ports.ChainWriter, events ports.EventPublisher, depths MutationDepths, log zerolog.Logger) *Mutations {
	return &Mutations{
		builder:      builder,
		badges:       NewMutationController(core.MutationCreateBadge, writer, events, depths.Badge, log),
		attestations: NewMutationController(core.MutationCreateAttestation, writer, events, depths.Attestation, log),
	}
}

// CreateBadge registers a new badge on-chain and returns the tx hash.
func (m *Mutations) CreateBadge(ctx context.Context, name, description string) (string, error) {
	to, data, err := m.builder.CreateBadgeCall(name, description)
	if err != nil {
		return "", err
	}
	return m.badges.Submit(ctx, to, data, nil)
}

// CreateAttestation attests a badge for a recipient and returns the tx hash.
func (m *Mutations) CreateAttestation(ctx context.Context, recipient, badgeName, justification string) (string, error) {
	to, data, err := m.builder.AttestCall(recipient, badgeName, justification)
	if err != nil {
		return "", err
	}
	return m.attestations.Submit(ctx, to, data, nil)
}

// BadgeState returns the badge controller's lifecycle state.
func (m *Mutations) BadgeState() core.MutationState { return m.badges.State() }

// AttestationState returns the attestation controller's lifecycle state.
func (m *Mutations) AttestationState() core.MutationState { return m.attestations.State() }
