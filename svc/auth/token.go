package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saddagada1/bella-server-web/pkg/jwt"
)

// AccessClaims are carried by short-lived access tokens.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// RefreshClaims are carried by refresh tokens. TokenVersion must match the
// user's stored version for the token to be accepted.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID       string `json:"user_id"`
	TokenVersion int    `json:"token_version"`
}

// TokenPair is the result of a successful authentication. The refresh token
// travels in a cookie and is never serialized into the body.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"-"`
}

// VersionLookup returns the current token_version of a user.
type VersionLookup func(ctx context.Context, userID uuid.UUID) (int, error)

// TokenService mints and verifies access and refresh tokens. Each kind is
// signed with its own secret.
type TokenService struct {
	access     *jwt.Service
	refresh    *jwt.Service
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type TokenOption func(*tokenOptions)

type tokenOptions struct {
	now func() time.Time
}

// WithTokenClock replaces the time source used for issuing and verifying.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(o *tokenOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if cfg.AccessSecret != "" && cfg.AccessSecret == cfg.RefreshSecret {
		return nil, ErrSharedTokenSecret
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("auth: token ttl must be positive")
	}

	o := &tokenOptions{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	jwtOpts := []jwt.Option{jwt.WithClock(o.now), jwt.WithIssuer(cfg.Issuer), jwt.WithLeeway(cfg.Leeway)}

	access, err := jwt.NewFromString(cfg.AccessSecret, jwtOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token signer: %w", err)
	}
	refresh, err := jwt.NewFromString(cfg.RefreshSecret, jwtOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token signer: %w", err)
	}

	return &TokenService{
		access:     access,
		refresh:    refresh,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        o.now,
	}, nil
}

// AccessTTL is the lifetime of access tokens.
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL is the lifetime of refresh tokens.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *TokenService) registered(iss string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    iss,
		IssuedAt:  jwt.NumericDate(now),
		ExpiresAt: jwt.NumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) IssueAccessToken(u *User) (string, error) {
	return s.access.Generate(AccessClaims{
		RegisteredClaims: s.registered(s.access.Issuer(), s.accessTTL),
		UserID:           u.ID.String(),
	})
}

func (s *TokenService) IssueRefreshToken(u *User) (string, error) {
	return s.refresh.Generate(RefreshClaims{
		RegisteredClaims: s.registered(s.refresh.Issuer(), s.refreshTTL),
		UserID:           u.ID.String(),
		TokenVersion:     u.TokenVersion,
	})
}

// IssuePair mints a fresh access and refresh token for u.
func (s *TokenService) IssuePair(u *User) (TokenPair, error) {
	access, err := s.IssueAccessToken(u)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.IssueRefreshToken(u)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		ExpiresIn:    int(s.accessTTL / time.Second),
		RefreshToken: refresh,
	}, nil
}

// VerifyAccessToken checks signature and expiry without touching storage.
func (s *TokenService) VerifyAccessToken(token string) (uuid.UUID, error) {
	var claims AccessClaims
	if err := s.access.Parse(token, &claims); err != nil {
		return uuid.Nil, tokenError(err)
	}
	return parseSubject(claims.UserID)
}

// VerifyRefreshToken checks signature and expiry, then requires the token's
// version to equal the live version returned by lookup.
func (s *TokenService) VerifyRefreshToken(ctx context.Context, token string, lookup VersionLookup) (uuid.UUID, error) {
	var claims RefreshClaims
	if err := s.refresh.Parse(token, &claims); err != nil {
		return uuid.Nil, tokenError(err)
	}
	id, err := parseSubject(claims.UserID)
	if err != nil {
		return uuid.Nil, err
	}

	current, err := lookup(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return uuid.Nil, ErrSuperseded
	case err != nil:
		return uuid.Nil, unavailable(err)
	case current != claims.TokenVersion:
		return uuid.Nil, ErrSuperseded
	}
	return id, nil
}

func parseSubject(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Join(ErrBadSignature, err)
	}
	return id, nil
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrMissingToken):
		return ErrUnauthenticated
	case errors.Is(err, jwt.ErrExpiredToken):
		return errors.Join(ErrExpired, err)
	default:
		return errors.Join(ErrBadSignature, err)
	}
}
