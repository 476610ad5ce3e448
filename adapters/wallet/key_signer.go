package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/guild-genesis/herald/core"
	"github.com/guild-genesis/herald/internal/eth"
	"github.com/guild-genesis/herald/ports"
)

// KeySigner signs with a locally held private key. It honors context
// cancellation at each signing request so an abandoned dialog maps to the same
// rejection path a hardware or browser wallet would produce.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address string
}

// NewKeySigner creates a signer from a hex-encoded private key.
func NewKeySigner(hexKey string) (*KeySigner, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &KeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}, nil
}

// Address returns the checksummed account address.
func (s *KeySigner) Address() string {
	return s.address
}

// SignText signs an EIP-191 personal message. The returned signature uses the
// wallet convention with V in {27, 28}.
func (s *KeySigner) SignText(ctx context.Context, msg []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUserRejected, err)
	}

	sig, err := crypto.Sign(eth.TextDigest(msg), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// SignTx signs a transaction for the given chain.
func (s *KeySigner) SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUserRejected, err)
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

var _ ports.Signer = (*KeySigner)(nil)
