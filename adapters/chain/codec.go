package chain

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	bytes32Type = mustType("bytes32")
	bytesType   = mustType("bytes")

	// Schema of the attestation payload: a fixed-width badge name and a
	// variable-length justification.
	badgeDataArgs = abi.Arguments{
		{Name: "badgeName", Type: bytes32Type},
		{Name: "justification", Type: bytesType},
	}
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// StringToBytes32 zero-pads a UTF-8 string into a bytes32 word. Strings longer
// than 32 bytes are rejected rather than silently truncated.
func StringToBytes32(s string) ([32]byte, error) {
	var out [32]byte
	if len(s) > 32 {
		return out, fmt.Errorf("%q exceeds 32 bytes", s)
	}
	copy(out[:], s)
	return out, nil
}

// Bytes32ToString strips trailing NUL padding and decodes the word.
func Bytes32ToString(b [32]byte) string {
	return string(bytes.TrimRight(b[:], "\x00"))
}

// EncodeBadgeData ABI-encodes (bytes32 badgeName, bytes justification).
func EncodeBadgeData(badgeName, justification string) ([]byte, error) {
	name, err := StringToBytes32(badgeName)
	if err != nil {
		return nil, err
	}
	return badgeDataArgs.Pack(name, []byte(justification))
}

// DecodeBadgeData is the inverse of EncodeBadgeData.
func DecodeBadgeData(data []byte) (badgeName, justification string, err error) {
	values, err := badgeDataArgs.Unpack(data)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode attestation data: %w", err)
	}
	name, ok := values[0].([32]byte)
	if !ok {
		return "", "", fmt.Errorf("unexpected badge name type %T", values[0])
	}
	just, ok := values[1].([]byte)
	if !ok {
		return "", "", fmt.Errorf("unexpected justification type %T", values[1])
	}
	return Bytes32ToString(name), string(just), nil
}
