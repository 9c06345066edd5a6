package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/saddagada1/bella-server-web/pkg/sanitizer"
)

const (
	ProviderGoogle = "google"

	googleIssuer  = "https://accounts.google.com"
	googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// Identity is the verified assertion returned by an identity provider.
// It lives for a single request and is never persisted.
type Identity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
}

// IdentityProvider exchanges a one-shot authorization code for a verified
// identity. Implementations own their network timeouts.
type IdentityProvider interface {
	Name() string
	Exchange(ctx context.Context, code string) (Identity, error)
}

// Errors describing why an exchange failed. They are logged, never shown to
// clients.
var (
	ErrCodeExchange    = errors.New("auth: authorization code exchange failed")
	ErrMissingIDToken  = errors.New("auth: no id_token in token response")
	ErrInvalidIDToken  = errors.New("auth: id_token verification failed")
	ErrMissingEmail    = errors.New("auth: id_token carries no email")
	ErrUnverifiedEmail = errors.New("auth: email not verified by provider")

	// ErrProviderUnavailable marks an exchange that failed because the
	// provider could not be reached or answered with a server error.
	ErrProviderUnavailable = errors.New("auth: identity provider unavailable")
)

// GoogleProvider exchanges Google authorization codes with x/oauth2 and
// verifies the returned id_token against Google's published keys.
type GoogleProvider struct {
	conf         *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	keys         oidc.KeySet
	client       *http.Client
	timeout      time.Duration
	verifiedOnly bool
}

type GoogleOption func(*GoogleProvider)

// WithGoogleEndpoint overrides the OAuth endpoint.
func WithGoogleEndpoint(ep oauth2.Endpoint) GoogleOption {
	return func(p *GoogleProvider) { p.conf.Endpoint = ep }
}

// WithIDTokenVerifier overrides the id_token verifier.
func WithIDTokenVerifier(v *oidc.IDTokenVerifier) GoogleOption {
	return func(p *GoogleProvider) {
		if v != nil {
			p.verifier = v
		}
	}
}

// WithGoogleKeySet replaces the key set id_tokens are checked against. It is
// also consulted to tell an unreachable key endpoint from a bad signature.
func WithGoogleKeySet(ks oidc.KeySet) GoogleOption {
	return func(p *GoogleProvider) {
		if ks != nil {
			p.keys = ks
		}
	}
}

func WithGoogleHTTPClient(c *http.Client) GoogleOption {
	return func(p *GoogleProvider) {
		if c != nil {
			p.client = c
		}
	}
}

// NewGoogleProvider builds the provider. Signing keys are fetched lazily on
// the first verification and cached by go-oidc.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig, opts ...GoogleOption) *GoogleProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	p := &GoogleProvider{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "email"},
			Endpoint:     google.Endpoint,
		},
		client:       &http.Client{Timeout: timeout},
		timeout:      timeout,
		verifiedOnly: cfg.VerifiedOnly,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.keys == nil {
		p.keys = oidc.NewRemoteKeySet(oidc.ClientContext(ctx, p.client), googleJWKSURL)
	}
	if p.verifier == nil {
		p.verifier = oidc.NewVerifier(googleIssuer, p.keys, &oidc.Config{ClientID: cfg.ClientID})
	}
	return p
}

func (p *GoogleProvider) Name() string {
	return ProviderGoogle
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	ctx = oidc.ClientContext(ctx, p.client)

	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil && rerr.Response.StatusCode >= http.StatusInternalServerError {
			return Identity{}, errors.Join(ErrProviderUnavailable, ErrCodeExchange, err)
		}
		return Identity{}, errors.Join(ErrCodeExchange, err)
	}

	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return Identity{}, ErrMissingIDToken
	}
	idToken, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return Identity{}, p.verifyError(ctx, raw, err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, errors.Join(ErrInvalidIDToken, fmt.Errorf("failed to decode claims: %w", err))
	}
	if claims.Email == "" {
		return Identity{}, ErrMissingEmail
	}
	if p.verifiedOnly && !claims.EmailVerified {
		return Identity{}, ErrUnverifiedEmail
	}

	return Identity{
		Provider:      ProviderGoogle,
		Subject:       idToken.Subject,
		Email:         sanitizer.NormalizeEmail(claims.Email),
		EmailVerified: claims.EmailVerified,
	}, nil
}

// verifyError classifies a failed id_token verification. go-oidc flattens
// the key fetch error into text, so the signature is checked again against
// the key set to recover it.
func (p *GoogleProvider) verifyError(ctx context.Context, raw string, err error) error {
	if p.keys != nil {
		if _, kerr := p.keys.VerifySignature(ctx, raw); kerr != nil && isTransportError(kerr) {
			return errors.Join(ErrProviderUnavailable, ErrInvalidIDToken, kerr)
		}
	}
	return errors.Join(ErrInvalidIDToken, err)
}

// isTransportError reports a failure to reach a remote endpoint: a timeout,
// a refused or reset connection, or a DNS error. *url.Error satisfies
// net.Error.
func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

var _ IdentityProvider = (*GoogleProvider)(nil)
