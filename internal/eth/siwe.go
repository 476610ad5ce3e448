package eth

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
)

// ChallengeMessage builds the deterministic sign-in challenge for a nonce. The
// backend reconstructs the same message from the address and the issued nonce,
// so the layout must not change between releases.
func ChallengeMessage(domain, address, nonce string) string {
	return fmt.Sprintf(
		"%s wants you to sign in with your Ethereum account:\n%s\n\nNonce: %s",
		domain, address, nonce,
	)
}

// TextDigest hashes a message per EIP-191 (personal_sign). Signature
// verification against the challenge happens server-side.
func TextDigest(msg []byte) []byte {
	return accounts.TextHash(msg)
}
