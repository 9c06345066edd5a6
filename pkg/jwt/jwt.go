package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the shortest accepted HMAC key.
const MinKeyLength = 32

// Claims is the interface every claim set must satisfy.
type Claims = gojwt.Claims

// RegisteredClaims are the RFC 7519 registered claims, embeddable in custom claim sets.
type RegisteredClaims = gojwt.RegisteredClaims

// NumericDate converts t to a JWT numeric date.
func NumericDate(t time.Time) *gojwt.NumericDate {
	return gojwt.NewNumericDate(t)
}

// Service handles HS256 token generation and validation.
type Service struct {
	key    []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer stamps tokens with iss and requires it on parse.
func WithIssuer(iss string) Option {
	return func(s *Service) { s.issuer = iss }
}

// WithLeeway tolerates clock skew when validating time based claims.
func WithLeeway(d time.Duration) Option {
	return func(s *Service) { s.leeway = d }
}

// WithClock replaces the time source used for validation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service signing with key.
func New(key []byte, opts ...Option) (*Service, error) {
	if len(key) == 0 {
		return nil, ErrMissingSigningKey
	}
	if len(key) < MinKeyLength {
		return nil, ErrInvalidSigningKey
	}
	s := &Service{
		key: append([]byte(nil), key...),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromString is a convenience wrapper around New for string secrets.
func NewFromString(key string, opts ...Option) (*Service, error) {
	return New([]byte(key), opts...)
}

// Issuer returns the configured issuer, if any.
func (s *Service) Issuer() string {
	return s.issuer
}

// Generate signs claims with HS256.
func (s *Service) Generate(claims Claims) (string, error) {
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Parse verifies token and decodes it into claims. It fails with
// ErrInvalidSignature for a bad signature or a non-HS256 algorithm,
// ErrExpiredToken once exp has passed and ErrInvalidToken for anything else.
func (s *Service) Parse(token string, claims Claims) error {
	if token == "" {
		return ErrMissingToken
	}

	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithIssuedAt(),
		gojwt.WithTimeFunc(s.now),
	}
	if s.leeway > 0 {
		opts = append(opts, gojwt.WithLeeway(s.leeway))
	}
	if s.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.issuer))
	}

	_, err := gojwt.NewParser(opts...).ParseWithClaims(token, claims, func(*gojwt.Token) (any, error) {
		return s.key, nil
	})
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid), errors.Is(err, gojwt.ErrTokenUnverifiable):
		return errors.Join(ErrInvalidSignature, err)
	case errors.Is(err, gojwt.ErrTokenExpired):
		return errors.Join(ErrExpiredToken, err)
	default:
		return errors.Join(ErrInvalidToken, err)
	}
}
