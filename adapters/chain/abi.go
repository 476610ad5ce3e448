package chain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Minimal ABI fragments for the deployed contracts. The contracts themselves
// are external collaborators; only these entry points are exercised.

const badgeRegistryJSON = `[
  {"type":"function","name":"createBadge","stateMutability":"nonpayable","inputs":[{"name":"name","type":"bytes32"},{"name":"description","type":"bytes32"}],"outputs":[]},
  {"type":"function","name":"totalBadges","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getBadgeAt","stateMutability":"view","inputs":[{"name":"index","type":"uint256"}],"outputs":[{"name":"name","type":"bytes32"},{"name":"description","type":"bytes32"},{"name":"creator","type":"address"}]}
]`

const easJSON = `[
  {"type":"function","name":"attest","stateMutability":"payable","inputs":[{"name":"request","type":"tuple","components":[{"name":"schema","type":"bytes32"},{"name":"data","type":"tuple","components":[{"name":"recipient","type":"address"},{"name":"expirationTime","type":"uint64"},{"name":"revocable","type":"bool"},{"name":"refUID","type":"bytes32"},{"name":"data","type":"bytes"},{"name":"value","type":"uint256"}]}]}],"outputs":[{"name":"uid","type":"bytes32"}]}
]`

const resolverJSON = `[
  {"type":"function","name":"getAttestationCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getAttestationAtIndex","stateMutability":"view","inputs":[{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"uid","type":"bytes32"},{"name":"schema","type":"bytes32"},{"name":"time","type":"uint64"},{"name":"expirationTime","type":"uint64"},{"name":"revocationTime","type":"uint64"},{"name":"refUID","type":"bytes32"},{"name":"recipient","type":"address"},{"name":"attester","type":"address"},{"name":"revocable","type":"bool"},{"name":"data","type":"bytes"},{"name":"bump","type":"uint32"}]}]}
]`

const erc20JSON = `[
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

var (
	badgeRegistryABI = mustABI(badgeRegistryJSON)
	easABI           = mustABI(easJSON)
	resolverABI      = mustABI(resolverJSON)
	erc20ABI         = mustABI(erc20JSON)
)

func mustABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// attestationRequest mirrors the attest((bytes32,(...))) tuple.
type attestationRequest struct {
	Schema [32]byte
	Data   attestationRequestData
}

type attestationRequestData struct {
	Recipient      common.Address
	ExpirationTime uint64
	Revocable      bool
	RefUID         [32]byte
	Data           []byte
	Value          *big.Int
}

// attestationRecord mirrors the resolver's stored attestation tuple.
type attestationRecord struct {
	Uid            [32]byte
	Schema         [32]byte
	Time           uint64
	ExpirationTime uint64
	RevocationTime uint64
	RefUID         [32]byte
	Recipient      common.Address
	Attester       common.Address
	Revocable      bool
	Data           []byte
	Bump           uint32
}
