package ports

import (
	"context"

	"github.com/guild-genesis/herald/core"
)

// AuthAPI is the backend's nonce and login surface.
type AuthAPI interface {
	// Nonce fetches a fresh single-use login nonce for the address.
	Nonce(ctx context.Context, address string) (string, error)

	// Login exchanges a signed challenge for a bearer token.
	Login(ctx context.Context, address, signature string) (token string, err error)
}

// Header names of the dual-mode authentication scheme.
const (
	HeaderAddress   = "x-eth-address"
	HeaderSignature = "x-eth-signature"
	HeaderMessage   = "x-siwe-message"
)

// Credentials supplies authentication headers for mutating API calls: a bearer
// token when a valid session exists, otherwise a fresh per-request wallet
// signature. The two modes are mutually exclusive on a single request.
type Credentials interface {
	MutationHeaders(ctx context.Context) (map[string]string, error)
}

// ProfileAPI is the backend's profile CRUD surface.
type ProfileAPI interface {
	Profiles(ctx context.Context) ([]core.Profile, error)
	CreateProfile(ctx context.Context, input core.ProfileInput) error
	UpdateProfile(ctx context.Context, address string, input core.ProfileInput) error
	DeleteProfile(ctx context.Context, address string) error
}
