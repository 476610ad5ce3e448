package core

import (
	"errors"
	"strings"
)

var (
	// ErrAuth is returned when nonce retrieval or the login exchange fails
	ErrAuth = errors.New("authentication failed")

	// ErrUserRejected is returned when the wallet declined a signature request
	ErrUserRejected = errors.New("user rejected the wallet request")

	// ErrConcurrentMutation is returned when a submission arrives while another
	// one for the same action is still in flight
	ErrConcurrentMutation = errors.New("another submission is already in flight")

	// ErrNetwork is returned on fetch or RPC transport failures
	ErrNetwork = errors.New("network request failed")

	// ErrPersistence is returned when a database write fails
	ErrPersistence = errors.New("failed to persist record")

	// ErrNotFound is returned when a store has no value for a key
	ErrNotFound = errors.New("not found")

	// ErrNoWallet is returned when an operation requires a connected wallet
	ErrNoWallet = errors.New("wallet not connected")

	// ErrInvalidAddress is returned when the address is invalid
	ErrInvalidAddress = errors.New("invalid ethereum address")
)

// RetryLaterMessage is shown to users for ambiguous RPC failures.
const RetryLaterMessage = "The network temporarily rejected this request. Please try again later."

// opaquePhrases mark revert reasons that carry no usable information for the
// user. Matching is case-insensitive.
var opaquePhrases = []string{
	"revert",
	"internal json-rpc error",
}

// RevertError is a predictable contract rejection surfaced by simulation or by
// a reverted receipt. Raw keeps the unmodified client message for logs.
type RevertError struct {
	Reason string
	Raw    string
}

func (e *RevertError) Error() string {
	if e.Reason != "" {
		return "execution reverted: " + e.Reason
	}
	return "execution reverted"
}

// UserMessage returns the string to render in the UI: the literal decoded
// reason when the contract supplied one, or the normalized retry-later message
// for opaque RPC phrasing.
func (e *RevertError) UserMessage() string {
	if e.Reason == "" {
		return RetryLaterMessage
	}
	lower := strings.ToLower(e.Reason)
	for _, phrase := range opaquePhrases {
		if strings.Contains(lower, phrase) {
			return RetryLaterMessage
		}
	}
	return e.Reason
}

// UserMessage maps any component error to its user-facing rendering.
func UserMessage(err error) string {
	var revert *RevertError
	if errors.As(err, &revert) {
		return revert.UserMessage()
	}
	if errors.Is(err, ErrNetwork) {
		return RetryLaterMessage
	}
	return err.Error()
}
