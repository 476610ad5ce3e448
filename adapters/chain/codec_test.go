package chain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes32RoundTrip(t *testing.T) {
	for _, name := range []string{
		"",
		"Bug Hunter",
		"Community Mentor",
		strings.Repeat("a", 32),
	} {
		word, err := StringToBytes32(name)
		require.NoError(t, err)
		assert.Equal(t, name, Bytes32ToString(word))
	}
}

func TestStringToBytes32RejectsLong(t *testing.T) {
	_, err := StringToBytes32(strings.Repeat("a", 33))
	assert.Error(t, err)
}

func TestBadgeDataRoundTrip(t *testing.T) {
	cases := []struct {
		name          string
		justification string
	}{
		{"Bug Hunter", ""},
		{"Docs Champion", "wrote the entire getting-started guide"},
		{"Mentor", strings.Repeat("long justification ", 100)},
	}

	for _, tc := range cases {
		encoded, err := EncodeBadgeData(tc.name, tc.justification)
		require.NoError(t, err)

		name, justification, err := DecodeBadgeData(encoded)
		require.NoError(t, err)
		assert.Equal(t, tc.name, name)
		assert.Equal(t, tc.justification, justification)
	}
}

func TestDecodeBadgeDataRejectsGarbage(t *testing.T) {
	_, _, err := DecodeBadgeData([]byte{0x01, 0x02})
	assert.Error(t, err)
}
