package core

// MutationKind identifies a logical user action that mutates shared state.
type MutationKind string

const (
	MutationCreateProfile     MutationKind = "create_profile"
	MutationUpdateProfile     MutationKind = "update_profile"
	MutationDeleteProfile     MutationKind = "delete_profile"
	MutationCreateBadge       MutationKind = "create_badge"
	MutationCreateAttestation MutationKind = "create_attestation"
)

// MutationState is the lifecycle position of a pending mutation.
type MutationState string

const (
	StateIdle              MutationState = "idle"
	StateSimulating        MutationState = "simulating"
	StateAwaitingSignature MutationState = "awaiting_signature"
	StateSubmitted         MutationState = "submitted"
	StateConfirming        MutationState = "confirming"
	StateConfirmed         MutationState = "confirmed"
	StateFailed            MutationState = "failed"
)

// Terminal reports whether the state machine has finished.
func (s MutationState) Terminal() bool {
	return s == StateConfirmed || s == StateFailed
}

// Default confirmation depths observed per mutation kind. Badge creation is
// treated as final only after six additional blocks; attestations after one.
// Both are overridable through configuration.
const (
	DefaultAttestationConfirmations uint64 = 1
	DefaultBadgeConfirmations       uint64 = 6
)

// Invalidation scopes for dependent read data.
const (
	ScopeBadges       = "badges"
	ScopeAttestations = "attestations"
	ScopeBalance      = "balance"
	ScopeProfiles     = "profiles"
)
