package service

import (
	"context"
	"testing"

	"github.com/guild-genesis/herald/core"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	badges       []core.Badge
	attestations []core.Attestation
	balance      decimal.Decimal

	badgeReads   int
	attReads     int
	balanceReads int
}

func (r *fakeReader) TotalBadges(_ context.Context) (uint64, error) {
	r.badgeReads++
	return uint64(len(r.badges)), nil
}

func (r *fakeReader) BadgeAt(_ context.Context, index uint64) (core.Badge, error) {
	return r.badges[index], nil
}

func (r *fakeReader) AttestationCount(_ context.Context) (uint64, error) {
	r.attReads++
	return uint64(len(r.attestations)), nil
}

func (r *fakeReader) AttestationAt(_ context.Context, index uint64) (core.Attestation, error) {
	return r.attestations[index], nil
}

func (r *fakeReader) TokenBalance(_ context.Context, _ string) (decimal.Decimal, error) {
	r.balanceReads++
	return r.balance, nil
}

func TestBadgesCachedUntilInvalidated(t *testing.T) {
	reader := &fakeReader{badges: []core.Badge{{Name: "helpful"}, {Name: "builder"}}}
	d := NewDirectory(reader, nil, zerolog.Nop())

	first, err := d.Badges(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 2)

	_, err = d.Badges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, reader.badgeReads)

	d.Invalidate([]string{core.ScopeBadges})

	_, err = d.Badges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, reader.badgeReads)
}

func TestInvalidationIsScopeSelective(t *testing.T) {
	reader := &fakeReader{
		badges:       []core.Badge{{Name: "helpful"}},
		attestations: []core.Attestation{{UID: "0x01"}},
	}
	d := NewDirectory(reader, nil, zerolog.Nop())

	_, err := d.Badges(context.Background())
	require.NoError(t, err)
	_, err = d.Attestations(context.Background())
	require.NoError(t, err)

	d.Invalidate([]string{core.ScopeAttestations})

	_, err = d.Badges(context.Background())
	require.NoError(t, err)
	_, err = d.Attestations(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, reader.badgeReads)
	assert.Equal(t, 2, reader.attReads)
}

func TestBalanceCachedPerAddress(t *testing.T) {
	reader := &fakeReader{balance: decimal.RequireFromString("12.5")}
	d := NewDirectory(reader, nil, zerolog.Nop())

	a, err := d.Balance(context.Background(), "0x01")
	require.NoError(t, err)
	assert.True(t, a.Equal(decimal.RequireFromString("12.5")))

	_, err = d.Balance(context.Background(), "0x01")
	require.NoError(t, err)
	assert.Equal(t, 1, reader.balanceReads)

	_, err = d.Balance(context.Background(), "0x02")
	require.NoError(t, err)
	assert.Equal(t, 2, reader.balanceReads)

	d.Invalidate([]string{core.ScopeBalance})

	_, err = d.Balance(context.Background(), "0x01")
	require.NoError(t, err)
	assert.Equal(t, 3, reader.balanceReads)
}

func TestEmptyBadgeListIsCached(t *testing.T) {
	reader := &fakeReader{}
	d := NewDirectory(reader, nil, zerolog.Nop())

	badges, err := d.Badges(context.Background())
	require.NoError(t, err)
	assert.Empty(t, badges)

	_, err = d.Badges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, reader.badgeReads)
}
