package ports

import (
	"context"
	"math/big"

	"github.com/guild-genesis/herald/core"
	"github.com/shopspring/decimal"
)

// PreparedCall is a simulated contract call ready for signing and broadcast.
// The lifecycle controller bumps the gas fields before submission.
type PreparedCall struct {
	To        string
	Data      []byte
	Value     *big.Int
	GasLimit  uint64
	GasFeeCap *big.Int
	GasTipCap *big.Int
}

// ChainWriter performs the simulate, submit and confirm legs of an on-chain
// write against the RPC node.
type ChainWriter interface {
	// Simulate dry-runs the call with the connected account and returns the
	// prepared parameters. Contract rejections come back as *core.RevertError.
	Simulate(ctx context.Context, to string, data []byte, value *big.Int) (*PreparedCall, error)

	// Submit requests wallet signature and broadcasts, returning the tx hash.
	Submit(ctx context.Context, call *PreparedCall) (string, error)

	// WaitForReceipt blocks until the transaction has the given confirmation
	// depth. A reverted receipt is returned as *core.RevertError.
	WaitForReceipt(ctx context.Context, txHash string, confirmations uint64) error
}

// CallBuilder produces ABI-encoded calls for the on-chain writes.
type CallBuilder interface {
	CreateBadgeCall(name, description string) (to string, data []byte, err error)
	AttestCall(recipient, badgeName, justification string) (to string, data []byte, err error)
}

// ChainReader aggregates the read-only contract surface.
type ChainReader interface {
	TotalBadges(ctx context.Context) (uint64, error)
	BadgeAt(ctx context.Context, index uint64) (core.Badge, error)
	AttestationCount(ctx context.Context) (uint64, error)
	AttestationAt(ctx context.Context, index uint64) (core.Attestation, error)

	// TokenBalance returns the activity-token balance scaled by the token's
	// decimals.
	TokenBalance(ctx context.Context, address string) (decimal.Decimal, error)
}
