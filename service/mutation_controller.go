package service

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/guild-genesis/herald/core"
	"github.com/guild-genesis/herald/ports"
	"github.com/rs/zerolog"
)

// MutationController drives one on-chain write through its full lifecycle:
// simulate, sign, submit, confirm. At most one mutation of its kind runs at a
// time; overlapping submissions fail fast with core.ErrConcurrentMutation.
type MutationController struct {
	kind          core.MutationKind
	writer        ports.ChainWriter
	events        ports.EventPublisher
	confirmations uint64
	log           zerolog.Logger

	inFlight atomic.Bool

	mu     sync.Mutex
	state  core.MutationState
	txHash string
}

// NewMutationController creates a controller for one mutation kind with the
// given confirmation depth.
func NewMutationController(
	kind core.MutationKind,
	writer ports.ChainWriter,
	events ports.EventPublisher,
	confirmations uint64,
	log zerolog.Logger,
) *MutationController {
	return &MutationController{
		kind:          kind,
		writer:        writer,
		events:        events,
		confirmations: confirmations,
		log:           log.With().Str("mutation", string(kind)).Logger(),
		state:         core.StateIdle,
	}
}

// State returns the controller's current lifecycle state.
func (c *MutationController) State() core.MutationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// TxHash returns the hash of the most recently submitted transaction, empty
// before the first submission reaches the mempool.
func (c *MutationController) TxHash() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txHash
}

// Submit runs the mutation to completion: dry-run the call, bump gas, collect
// the wallet signature, broadcast, and wait for the configured confirmation
// depth. On success the read scopes touched by on-chain writes are invalidated.
func (c *MutationController) Submit(ctx context.Context, to string, data []byte, value *big.Int) (string, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return "", fmt.Errorf("%w: %s already in flight", core.ErrConcurrentMutation, c.kind)
	}
	defer c.inFlight.Store(false)

	c.setState(core.StateSimulating)
	call, err := c.writer.Simulate(ctx, to, data, value)
	if err != nil {
		return "", c.fail("simulation failed", err)
	}
	bumpGas(call)

	c.setState(core.StateAwaitingSignature)
	txHash, err := c.writer.Submit(ctx, call)
	if err != nil {
		return "", c.fail("submission failed", err)
	}

	c.mu.Lock()
	c.state = core.StateSubmitted
	c.txHash = txHash
	c.mu.Unlock()
	c.log.Info().Str("tx", txHash).Msg("transaction submitted")

	c.setState(core.StateConfirming)
	if err := c.writer.WaitForReceipt(ctx, txHash, c.confirmations); err != nil {
		return txHash, c.fail("confirmation failed", err)
	}
	c.setState(core.StateConfirmed)
	c.log.Info().Str("tx", txHash).Uint64("confirmations", c.confirmations).Msg("transaction confirmed")

	// The write landed; stale reads fix themselves on the next refresh even if
	// the announcement is lost.
	if c.events != nil {
		scopes := []string{core.ScopeBadges, core.ScopeAttestations, core.ScopeBalance}
		if err := c.events.PublishInvalidation(ctx, scopes...); err != nil {
			c.log.Warn().Err(err).Msg("failed to publish invalidation")
		}
	}
	return txHash, nil
}

func (c *MutationController) setState(s core.MutationState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *MutationController) fail(stage string, err error) error {
	c.setState(core.StateFailed)
	c.log.Error().Err(err).Msg(stage)
	return fmt.Errorf("%s: %w", stage, err)
}

// bumpGas raises the simulated gas parameters by 20% so the transaction
// survives moderate fee drift between simulation and inclusion.
func bumpGas(call *ports.PreparedCall) {
	call.GasLimit = call.GasLimit * 12 / 10
	call.GasFeeCap = mul12div10(call.GasFeeCap)
	call.GasTipCap = mul12div10(call.GasTipCap)
}

func mul12div10(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	out := new(big.Int).Mul(v, big.NewInt(12))
	return out.Div(out, big.NewInt(10))
}
