package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevertErrorUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *RevertError
		want string
	}{
		{
			name: "decoded reason passes through",
			err:  &RevertError{Reason: "Badge already exists"},
			want: "Badge already exists",
		},
		{
			name: "empty reason normalized",
			err:  &RevertError{Raw: "execution reverted"},
			want: RetryLaterMessage,
		},
		{
			name: "opaque revert phrasing normalized",
			err:  &RevertError{Reason: "execution reverted: data"},
			want: RetryLaterMessage,
		},
		{
			name: "opaque rpc phrasing normalized",
			err:  &RevertError{Reason: "Internal JSON-RPC error."},
			want: RetryLaterMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.UserMessage())
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Not enough votes", UserMessage(&RevertError{Reason: "Not enough votes"}))

	wrapped := fmt.Errorf("confirmation failed: %w", &RevertError{Reason: "revert"})
	assert.Equal(t, RetryLaterMessage, UserMessage(wrapped))

	network := fmt.Errorf("%w: connection refused", ErrNetwork)
	assert.Equal(t, RetryLaterMessage, UserMessage(network))

	assert.Equal(t, ErrNoWallet.Error(), UserMessage(ErrNoWallet))
}

func TestRevertErrorString(t *testing.T) {
	assert.Equal(t, "execution reverted: denied", (&RevertError{Reason: "denied"}).Error())
	assert.Equal(t, "execution reverted", (&RevertError{Raw: "raw"}).Error())
}
