package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/guild-genesis/herald/adapters/store"
	"github.com/guild-genesis/herald/core"
	"github.com/guild-genesis/herald/ports"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSigner struct {
	address   string
	signErr   error
	signCalls int
}

func (s *fakeSigner) Address() string { return s.address }

func (s *fakeSigner) SignText(_ context.Context, msg []byte) ([]byte, error) {
	s.signCalls++
	if s.signErr != nil {
		return nil, s.signErr
	}
	sig := make([]byte, 65)
	copy(sig, msg)
	return sig, nil
}

func (s *fakeSigner) SignTx(_ context.Context, tx *types.Transaction, _ *big.Int) (*types.Transaction, error) {
	return tx, nil
}

type fakeAuthAPI struct {
	nonce      string
	nonceErr   error
	token      string
	loginErr   error
	nonceCalls int
	loginCalls int

	lastAddress   string
	lastSignature string
}

func (a *fakeAuthAPI) Nonce(_ context.Context, address string) (string, error) {
	a.nonceCalls++
	a.lastAddress = address
	return a.nonce, a.nonceErr
}

func (a *fakeAuthAPI) Login(_ context.Context, address, signature string) (string, error) {
	a.loginCalls++
	a.lastAddress = address
	a.lastSignature = signature
	if a.loginErr != nil {
		return "", a.loginErr
	}
	return a.token, nil
}

type fakePublisher struct {
	invalidations [][]string
	logouts       []string
	err           error
}

func (p *fakePublisher) PublishInvalidation(_ context.Context, scopes ...string) error {
	p.invalidations = append(p.invalidations, scopes)
	return p.err
}

func (p *fakePublisher) PublishLogout(_ context.Context, address string) error {
	p.logouts = append(p.logouts, address)
	return p.err
}

func newTestAuthManager(signer ports.Signer, api ports.AuthAPI, events ports.EventPublisher) *AuthManager {
	return NewAuthManager(signer, api, store.NewMemoryStore(), events, "herald.example", zerolog.Nop())
}

func TestLoginEstablishesSession(t *testing.T) {
	signer := &fakeSigner{address: "0xAb5801a7D398351b8bE11C439e05C5b3259aeC9B"}
	api := &fakeAuthAPI{nonce: "42", token: "bearer-token"}
	m := newTestAuthManager(signer, api, nil)

	session, err := m.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bearer-token", session.Token)
	assert.Equal(t, signer.address, session.Address)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	valid, err := m.SessionValid(context.Background())
	require.NoError(t, err)
	assert.True(t, valid)

	assert.Equal(t, signer.address, api.lastAddress)
	assert.NotEmpty(t, api.lastSignature)
	assert.Equal(t, "0x", api.lastSignature[:2])
}

func TestLoginWithoutWallet(t *testing.T) {
	api := &fakeAuthAPI{}
	m := newTestAuthManager(nil, api, nil)

	_, err := m.Login(context.Background())
	assert.ErrorIs(t, err, core.ErrAuth)
	assert.ErrorIs(t, err, core.ErrNoWallet)

	// Fails before any network call.
	assert.Equal(t, 0, api.nonceCalls)
	assert.Equal(t, 0, api.loginCalls)
}

func TestLoginNonceFailureIsAuthError(t *testing.T) {
	signer := &fakeSigner{address: "0xAb5801a7D398351b8bE11C439e05C5b3259aeC9B"}
	api := &fakeAuthAPI{nonceErr: fmt.Errorf("boom")}
	m := newTestAuthManager(signer, api, nil)

	_, err := m.Login(context.Background())
	assert.ErrorIs(t, err, core.ErrAuth)
	assert.Equal(t, 0, signer.signCalls)
}

func TestLoginRejectionKeepsIdentity(t *testing.T) {
	signer := &fakeSigner{
		address: "0xAb5801a7D398351b8bE11C439e05C5b3259aeC9B",
		signErr: fmt.Errorf("%w: user denied", core.ErrUserRejected),
	}
	m := newTestAuthManager(signer, &fakeAuthAPI{nonce: "1"}, nil)

	_, err := m.Login(context.Background())
	assert.ErrorIs(t, err, core.ErrUserRejected)

	valid, err := m.SessionValid(context.Background())
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestLogoutIsIdempotent(t *testing.T) {
	signer := &fakeSigner{address: "0xAb5801a7D398351b8bE11C439e05C5b3259aeC9B"}
	events := &fakePublisher{}
	m := newTestAuthManager(signer, &fakeAuthAPI{nonce: "1", token: "tok"}, events)

	_, err := m.Login(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background()))
	require.NoError(t, m.Logout(context.Background()))

	valid, err := m.SessionValid(context.Background())
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Equal(t, []string{signer.address}, events.logouts)
}

func TestExpiredSessionDroppedLazily(t *testing.T) {
	signer := &fakeSigner{address: "0xAb5801a7D398351b8bE11C439e05C5b3259aeC9B"}
	m := newTestAuthManager(signer, &fakeAuthAPI{nonce: "1", token: "tok"}, nil)

	_, err := m.Login(context.Background())
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(core.DefaultSessionTTL + time.Minute) }

	session, err := m.Session(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestMutationHeadersBearerMode(t *testing.T) {
	signer := &fakeSigner{address: "0xAb5801a7D398351b8bE11C439e05C5b3259aeC9B"}
	api := &fakeAuthAPI{nonce: "1", token: "tok"}
	m := newTestAuthManager(signer, api, nil)

	_, err := m.Login(context.Background())
	require.NoError(t, err)
	nonceCalls := api.nonceCalls

	headers, err := m.MutationHeaders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Authorization": "Bearer tok"}, headers)

	// Bearer mode must not trigger a fresh signature.
	assert.Equal(t, nonceCalls, api.nonceCalls)
}

func TestMutationHeadersSiweFallback(t *testing.T) {
	signer := &fakeSigner{address: "0xAb5801a7D398351b8bE11C439e05C5b3259aeC9B"}
	api := &fakeAuthAPI{nonce: "7"}
	m := newTestAuthManager(signer, api, nil)

	headers, err := m.MutationHeaders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, signer.address, headers[ports.HeaderAddress])
	assert.NotEmpty(t, headers[ports.HeaderSignature])
	assert.Contains(t, headers[ports.HeaderMessage], "Nonce: 7")
	assert.NotContains(t, headers, "Authorization")
}

func TestAuthHeadersSideEffectFree(t *testing.T) {
	signer := &fakeSigner{address: "0xAb5801a7D398351b8bE11C439e05C5b3259aeC9B"}
	api := &fakeAuthAPI{nonce: "1", token: "tok"}
	m := newTestAuthManager(signer, api, nil)

	headers, err := m.AuthHeaders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, headers)
	assert.Equal(t, 0, api.nonceCalls)
	assert.Equal(t, 0, signer.signCalls)

	_, err = m.Login(context.Background())
	require.NoError(t, err)

	headers, err = m.AuthHeaders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Authorization": "Bearer tok"}, headers)
}

func TestMutationHeadersNoSessionNoWallet(t *testing.T) {
	m := newTestAuthManager(nil, &fakeAuthAPI{}, nil)

	_, err := m.MutationHeaders(context.Background())
	assert.ErrorIs(t, err, core.ErrAuth)
}

func TestJWTExpiryTightensTTL(t *testing.T) {
	// exp claim one hour ahead; well inside the default 24h TTL.
	exp := time.Now().Add(time.Hour)
	token := unsignedJWT(t, exp)

	signer := &fakeSigner{address: "0xAb5801a7D398351b8bE11C439e05C5b3259aeC9B"}
	m := newTestAuthManager(signer, &fakeAuthAPI{nonce: "1", token: token}, nil)

	session, err := m.Login(context.Background())
	require.NoError(t, err)
	assert.WithinDuration(t, exp, session.ExpiresAt, 2*time.Second)
}

func unsignedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	header := base64JSON(t, map[string]any{"alg": "none", "typ": "JWT"})
	claims := base64JSON(t, map[string]any{"exp": exp.Unix()})
	return header + "." + claims + "."
}

func base64JSON(t *testing.T, v map[string]any) string {
	t.Helper()
	encoded, err := json.Marshal(v)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(encoded)
}
