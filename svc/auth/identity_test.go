package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testIssuer   = "https://issuer.test"
	testClientID = "client-id"
)

type tokenEndpoint struct {
	status  int
	idToken string
}

func (e tokenEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if e.status != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(e.status)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		return
	}
	body := map[string]any{
		"access_token": "access",
		"token_type":   "Bearer",
		"expires_in":   3600,
	}
	if e.idToken != "" {
		body["id_token"] = e.idToken
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, claims gojwt.MapClaims) string {
	t.Helper()
	base := gojwt.MapClaims{
		"iss": testIssuer,
		"aud": testClientID,
		"sub": "google-123",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range claims {
		base[k] = v
	}
	raw, err := gojwt.NewWithClaims(gojwt.SigningMethodRS256, base).SignedString(key)
	require.NoError(t, err)
	return raw
}

func newTestGoogleProvider(t *testing.T, key *rsa.PrivateKey, endpoint http.Handler) *GoogleProvider {
	t.Helper()
	srv := httptest.NewServer(endpoint)
	t.Cleanup(srv.Close)

	verifier := oidc.NewVerifier(testIssuer,
		&oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}},
		&oidc.Config{ClientID: testClientID},
	)
	return NewGoogleProvider(context.Background(),
		GoogleConfig{ClientID: testClientID, ClientSecret: "secret", RedirectURL: "postmessage", Timeout: time.Second, VerifiedOnly: true},
		WithGoogleEndpoint(oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}),
		WithIDTokenVerifier(verifier),
		WithGoogleHTTPClient(srv.Client()),
	)
}

func TestGoogleProvider(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	t.Run("verified identity", func(t *testing.T) {
		t.Parallel()
		idToken := signIDToken(t, key, gojwt.MapClaims{"email": "Alice@Example.com", "email_verified": true})
		p := newTestGoogleProvider(t, key, tokenEndpoint{status: http.StatusOK, idToken: idToken})

		identity, err := p.Exchange(ctx, "code")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", identity.Email)
		assert.Equal(t, "google-123", identity.Subject)
		assert.Equal(t, ProviderGoogle, identity.Provider)
		assert.True(t, identity.EmailVerified)
	})

	t.Run("rejected code", func(t *testing.T) {
		t.Parallel()
		p := newTestGoogleProvider(t, key, tokenEndpoint{status: http.StatusBadRequest})
		_, err := p.Exchange(ctx, "used")
		assert.ErrorIs(t, err, ErrCodeExchange)
	})

	t.Run("no id_token", func(t *testing.T) {
		t.Parallel()
		p := newTestGoogleProvider(t, key, tokenEndpoint{status: http.StatusOK})
		_, err := p.Exchange(ctx, "code")
		assert.ErrorIs(t, err, ErrMissingIDToken)
	})

	t.Run("foreign signature", func(t *testing.T) {
		t.Parallel()
		idToken := signIDToken(t, otherKey, gojwt.MapClaims{"email": "alice@example.com", "email_verified": true})
		p := newTestGoogleProvider(t, key, tokenEndpoint{status: http.StatusOK, idToken: idToken})
		_, err := p.Exchange(ctx, "code")
		assert.ErrorIs(t, err, ErrInvalidIDToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		t.Parallel()
		idToken := signIDToken(t, key, gojwt.MapClaims{"aud": "someone-else", "email": "alice@example.com", "email_verified": true})
		p := newTestGoogleProvider(t, key, tokenEndpoint{status: http.StatusOK, idToken: idToken})
		_, err := p.Exchange(ctx, "code")
		assert.ErrorIs(t, err, ErrInvalidIDToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		t.Parallel()
		idToken := signIDToken(t, key, gojwt.MapClaims{"iss": "https://evil.test", "email": "alice@example.com", "email_verified": true})
		p := newTestGoogleProvider(t, key, tokenEndpoint{status: http.StatusOK, idToken: idToken})
		_, err := p.Exchange(ctx, "code")
		assert.ErrorIs(t, err, ErrInvalidIDToken)
	})

	t.Run("missing email", func(t *testing.T) {
		t.Parallel()
		idToken := signIDToken(t, key, gojwt.MapClaims{})
		p := newTestGoogleProvider(t, key, tokenEndpoint{status: http.StatusOK, idToken: idToken})
		_, err := p.Exchange(ctx, "code")
		assert.ErrorIs(t, err, ErrMissingEmail)
	})

	t.Run("token endpoint unreachable", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(tokenEndpoint{status: http.StatusOK})
		srv.Close()
		p := NewGoogleProvider(ctx,
			GoogleConfig{ClientID: testClientID, ClientSecret: "secret", Timeout: time.Second},
			WithGoogleEndpoint(oauth2.Endpoint{TokenURL: srv.URL + "/token"}),
		)

		_, err := p.Exchange(ctx, "code")
		assert.ErrorIs(t, err, ErrCodeExchange)
		assert.True(t, isTransportError(err))
	})

	t.Run("token endpoint server error", func(t *testing.T) {
		t.Parallel()
		p := newTestGoogleProvider(t, key, tokenEndpoint{status: http.StatusServiceUnavailable})
		_, err := p.Exchange(ctx, "code")
		assert.ErrorIs(t, err, ErrProviderUnavailable)
		assert.ErrorIs(t, err, ErrCodeExchange)
	})

	t.Run("key endpoint unreachable", func(t *testing.T) {
		t.Parallel()
		jwks := httptest.NewServer(http.NotFoundHandler())
		jwks.Close()
		keys := oidc.NewRemoteKeySet(ctx, jwks.URL)

		idToken := signIDToken(t, key, gojwt.MapClaims{"email": "alice@example.com", "email_verified": true})
		srv := httptest.NewServer(tokenEndpoint{status: http.StatusOK, idToken: idToken})
		t.Cleanup(srv.Close)
		p := NewGoogleProvider(ctx,
			GoogleConfig{ClientID: testClientID, ClientSecret: "secret", Timeout: time.Second},
			WithGoogleEndpoint(oauth2.Endpoint{TokenURL: srv.URL + "/token"}),
			WithIDTokenVerifier(oidc.NewVerifier(testIssuer, keys, &oidc.Config{ClientID: testClientID})),
			WithGoogleKeySet(keys),
			WithGoogleHTTPClient(srv.Client()),
		)

		_, err := p.Exchange(ctx, "code")
		assert.ErrorIs(t, err, ErrInvalidIDToken)
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})

	t.Run("bad signature is not an outage", func(t *testing.T) {
		t.Parallel()
		idToken := signIDToken(t, otherKey, gojwt.MapClaims{"email": "alice@example.com", "email_verified": true})
		srv := httptest.NewServer(tokenEndpoint{status: http.StatusOK, idToken: idToken})
		t.Cleanup(srv.Close)
		keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
		p := NewGoogleProvider(ctx,
			GoogleConfig{ClientID: testClientID, ClientSecret: "secret", Timeout: time.Second},
			WithGoogleEndpoint(oauth2.Endpoint{TokenURL: srv.URL + "/token"}),
			WithIDTokenVerifier(oidc.NewVerifier(testIssuer, keys, &oidc.Config{ClientID: testClientID})),
			WithGoogleKeySet(keys),
			WithGoogleHTTPClient(srv.Client()),
		)

		_, err := p.Exchange(ctx, "code")
		assert.ErrorIs(t, err, ErrInvalidIDToken)
		assert.NotErrorIs(t, err, ErrProviderUnavailable)
	})

	t.Run("unverified email", func(t *testing.T) {
		t.Parallel()
		idToken := signIDToken(t, key, gojwt.MapClaims{"email": "alice@example.com", "email_verified": false})
		p := newTestGoogleProvider(t, key, tokenEndpoint{status: http.StatusOK, idToken: idToken})
		_, err := p.Exchange(ctx, "code")
		assert.ErrorIs(t, err, ErrUnverifiedEmail)
	})
}
