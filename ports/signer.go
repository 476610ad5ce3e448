package ports

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
)

// Signer is the connected wallet. Both methods suspend until the wallet
// approves or rejects; rejection is reported as core.ErrUserRejected.
type Signer interface {
	// Address returns the checksummed account address.
	Address() string

	// SignText signs an EIP-191 personal message.
	SignText(ctx context.Context, msg []byte) ([]byte, error)

	// SignTx signs a transaction for the given chain.
	SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}
