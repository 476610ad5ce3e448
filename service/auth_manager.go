package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/guild-genesis/herald/core"
	"github.com/guild-genesis/herald/internal/eth"
	"github.com/guild-genesis/herald/ports"
	"github.com/rs/zerolog"
)

// sessionKey is the store slot holding the single active session.
const sessionKey = "session"

// AuthManager owns the sign-in session: it runs the challenge/response login
// flow, persists the resulting bearer token, and supplies authentication
// headers for mutating API calls.
type AuthManager struct {
	signer ports.Signer
	api    ports.AuthAPI
	store  ports.Store
	events ports.EventPublisher
	log    zerolog.Logger

	domain     string
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthManager creates an auth manager. signer may be nil when no wallet is
// connected; every operation that needs one then fails with core.ErrNoWallet.
func NewAuthManager(
	signer ports.Signer,
	api ports.AuthAPI,
	store ports.Store,
	events ports.EventPublisher,
	domain string,
	log zerolog.Logger,
) *AuthManager {
	return &AuthManager{
		signer:     signer,
		api:        api,
		store:      store,
		events:     events,
		log:        log,
		domain:     domain,
		sessionTTL: core.DefaultSessionTTL,
		now:        time.Now,
	}
}

// Login runs the full challenge/response flow: fetch a nonce, sign the
// challenge with the wallet, exchange the signature for a bearer token and
// persist the session. Any failure leaves the stored session untouched.
func (m *AuthManager) Login(ctx context.Context) (*core.Session, error) {
	if m.signer == nil {
		return nil, fmt.Errorf("%w: %w", core.ErrAuth, core.ErrNoWallet)
	}
	address := m.signer.Address()

	nonce, err := m.api.Nonce(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch nonce: %w", core.ErrAuth, err)
	}

	message := eth.ChallengeMessage(m.domain, address, nonce)
	signature, err := m.signer.SignText(ctx, []byte(message))
	if err != nil {
		// Wallet rejection keeps its own identity under the auth failure.
		return nil, fmt.Errorf("%w: failed to sign challenge: %w", core.ErrAuth, err)
	}

	token, err := m.api.Login(ctx, address, hexSignature(signature))
	if err != nil {
		return nil, fmt.Errorf("%w: login rejected: %w", core.ErrAuth, err)
	}

	now := m.now()
	session := &core.Session{
		Token:     token,
		Address:   address,
		ExpiresAt: now.Add(m.sessionTTL),
	}
	if exp, ok := jwtExpiry(token); ok && exp.Before(session.ExpiresAt) {
		session.ExpiresAt = exp
	}

	encoded, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := m.store.Set(ctx, sessionKey, string(encoded), session.ExpiresAt.Sub(now)); err != nil {
		return nil, fmt.Errorf("%w: failed to persist session: %v", core.ErrPersistence, err)
	}

	m.log.Info().Str("address", address).Time("expires_at", session.ExpiresAt).Msg("session established")
	return session, nil
}

// Logout drops the stored session. It is idempotent: logging out without a
// session is not an error.
func (m *AuthManager) Logout(ctx context.Context) error {
	session, err := m.session(ctx)
	if err != nil {
		return err
	}

	if err := m.store.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("%w: failed to drop session: %v", core.ErrPersistence, err)
	}

	if session != nil && m.events != nil {
		// Best effort: the session is already gone locally, which is the part
		// that matters.
		if err := m.events.PublishLogout(ctx, session.Address); err != nil {
			m.log.Warn().Err(err).Msg("failed to publish logout event")
		}
	}
	return nil
}

// Session returns the stored session, or nil when none is active. An expired
// session is dropped lazily and reported as absent.
func (m *AuthManager) Session(ctx context.Context) (*core.Session, error) {
	session, err := m.session(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	if !session.Valid(m.now()) {
		if err := m.store.Delete(ctx, sessionKey); err != nil {
			m.log.Warn().Err(err).Msg("failed to drop expired session")
		}
		return nil, nil
	}
	return session, nil
}

// SessionValid reports whether a live session exists.
func (m *AuthManager) SessionValid(ctx context.Context) (bool, error) {
	session, err := m.Session(ctx)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}

// AuthHeaders returns the bearer header when a live session exists, an empty
// map otherwise. It never signs, fetches, or clears anything.
func (m *AuthManager) AuthHeaders(ctx context.Context) (map[string]string, error) {
	session, err := m.session(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil || !session.Valid(m.now()) {
		return map[string]string{}, nil
	}
	return map[string]string{"Authorization": "Bearer " + session.Token}, nil
}

// SiweHeaders produces per-request sign-in headers from a fresh nonce and a
// fresh wallet signature.
func (m *AuthManager) SiweHeaders(ctx context.Context) (map[string]string, error) {
	if m.signer == nil {
		return nil, fmt.Errorf("%w: no session and no wallet connected", core.ErrAuth)
	}
	address := m.signer.Address()

	nonce, err := m.api.Nonce(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch nonce: %w", core.ErrAuth, err)
	}
	message := eth.ChallengeMessage(m.domain, address, nonce)
	signature, err := m.signer.SignText(ctx, []byte(message))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign challenge: %w", core.ErrAuth, err)
	}

	return map[string]string{
		ports.HeaderAddress:   address,
		ports.HeaderSignature: hexSignature(signature),
		ports.HeaderMessage:   message,
	}, nil
}

// MutationHeaders returns authentication headers for one mutating API call.
// With a live session it returns the bearer token; without one it falls back
// to a fresh per-request wallet signature over the sign-in challenge. The two
// modes never mix on a single request.
func (m *AuthManager) MutationHeaders(ctx context.Context) (map[string]string, error) {
	session, err := m.Session(ctx)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return map[string]string{"Authorization": "Bearer " + session.Token}, nil
	}
	return m.SiweHeaders(ctx)
}

func (m *AuthManager) session(ctx context.Context) (*core.Session, error) {
	raw, err := m.store.Get(ctx, sessionKey)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to load session: %v", core.ErrPersistence, err)
	}

	var session core.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		// A corrupt slot cannot be recovered; drop it.
		m.log.Warn().Err(err).Msg("dropping unreadable session")
		_ = m.store.Delete(ctx, sessionKey)
		return nil, nil
	}
	return &session, nil
}

// jwtExpiry pulls the exp claim out of a JWT without verifying it. The token
// is the backend's to verify; locally the claim only tightens the session TTL.
func jwtExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func hexSignature(sig []byte) string {
	return fmt.Sprintf("0x%x", sig)
}

var _ ports.Credentials = (*AuthManager)(nil)
