package guildapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/guild-genesis/herald/core"
	"github.com/guild-genesis/herald/ports"
	"github.com/rs/zerolog"
)

// Header names of the dual-mode authentication scheme.
const (
	HeaderAddress   = ports.HeaderAddress
	HeaderSignature = ports.HeaderSignature
	HeaderMessage   = ports.HeaderMessage
)

// Client talks to the profile REST backend. Mutating calls pull headers from
// the credential source: bearer token when a session exists, per-request SIWE
// signature otherwise.
type Client struct {
	base     string
	http     *http.Client
	creds    ports.Credentials
	validate *validator.Validate
	log      zerolog.Logger
}

// NewClient creates a backend client rooted at baseURL. creds may be nil for
// read-only and auth-endpoint use.
func NewClient(baseURL string, creds ports.Credentials, log zerolog.Logger) *Client {
	return &Client{
		base:     strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 30 * time.Second},
		creds:    creds,
		validate: validator.New(),
		log:      log,
	}
}

type nonceResponse struct {
	Nonce json.Number `json:"nonce"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Address string `json:"address"`
}

// Nonce fetches a fresh single-use login nonce for the address.
func (c *Client) Nonce(ctx context.Context, address string) (string, error) {
	var out nonceResponse
	if err := c.do(ctx, http.MethodGet, "/auth/nonce/"+address, nil, nil, &out); err != nil {
		return "", err
	}
	return out.Nonce.String(), nil
}

// Login exchanges a signed challenge for a bearer token.
func (c *Client) Login(ctx context.Context, address, signature string) (string, error) {
	headers := map[string]string{
		HeaderAddress:   address,
		HeaderSignature: signature,
	}

	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", headers, nil, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return out.Token, nil
}

// Profiles lists all community profiles.
func (c *Client) Profiles(ctx context.Context) ([]core.Profile, error) {
	var out []core.Profile
	if err := c.do(ctx, http.MethodGet, "/profiles", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProfile creates the caller's profile.
func (c *Client) CreateProfile(ctx context.Context, input core.ProfileInput) error {
	if err := c.validate.Struct(input); err != nil {
		return err
	}
	headers, err := c.mutationHeaders(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/profiles", headers, input, nil)
}

// UpdateProfile replaces the profile stored for address.
func (c *Client) UpdateProfile(ctx context.Context, address string, input core.ProfileInput) error {
	if err := c.validate.Struct(input); err != nil {
		return err
	}
	headers, err := c.mutationHeaders(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, "/profiles/"+address, headers, input, nil)
}

// DeleteProfile removes the profile stored for address.
func (c *Client) DeleteProfile(ctx context.Context, address string) error {
	headers, err := c.mutationHeaders(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/profiles/"+address, headers, nil, nil)
}

func (c *Client) mutationHeaders(ctx context.Context) (map[string]string, error) {
	if c.creds == nil {
		return nil, core.ErrNoWallet
	}
	return c.creds.MutationHeaders(ctx)
}

// do issues one request. Transport failures and non-2xx responses both wrap
// core.ErrNetwork; the latter keep the status and body text in the message.
func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", core.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("backend rejected request")
		return fmt.Errorf("%w: %s %s: %s: %s", core.ErrNetwork, method, path, resp.Status, strings.TrimSpace(string(text)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

var (
	_ ports.AuthAPI    = (*Client)(nil)
	_ ports.ProfileAPI = (*Client)(nil)
)
