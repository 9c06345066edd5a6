package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenConfig() TokenConfig {
	return TokenConfig{
		AccessSecret:  strings.Repeat("a", 32),
		RefreshSecret: strings.Repeat("r", 32),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "bella",
	}
}

func newTokenService(t *testing.T, clock *testClock) *TokenService {
	t.Helper()
	var opts []TokenOption
	if clock != nil {
		opts = append(opts, WithTokenClock(clock.Now))
	}
	svc, err := NewTokenService(testTokenConfig(), opts...)
	require.NoError(t, err)
	return svc
}

func versionLookup(version int, err error) VersionLookup {
	return func(context.Context, uuid.UUID) (int, error) {
		return version, err
	}
}

func TestNewTokenService(t *testing.T) {
	t.Parallel()

	cfg := testTokenConfig()
	cfg.RefreshSecret = cfg.AccessSecret
	_, err := NewTokenService(cfg)
	assert.ErrorIs(t, err, ErrSharedTokenSecret)

	cfg = testTokenConfig()
	cfg.AccessSecret = "short"
	_, err = NewTokenService(cfg)
	assert.Error(t, err)

	cfg = testTokenConfig()
	cfg.AccessTTL = 0
	_, err = NewTokenService(cfg)
	assert.Error(t, err)
}

func TestAccessToken(t *testing.T) {
	t.Parallel()

	t.Run("valid until expiry", func(t *testing.T) {
		t.Parallel()
		clock := newTestClock()
		svc := newTokenService(t, clock)
		user := &User{ID: uuid.New()}

		token, err := svc.IssueAccessToken(user)
		require.NoError(t, err)

		id, err := svc.VerifyAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, id)

		clock.Advance(14 * time.Minute)
		_, err = svc.VerifyAccessToken(token)
		require.NoError(t, err)

		clock.Advance(time.Minute + time.Second)
		_, err = svc.VerifyAccessToken(token)
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("leeway extends expiry", func(t *testing.T) {
		t.Parallel()
		clock := newTestClock()
		cfg := testTokenConfig()
		cfg.Leeway = 30 * time.Second
		svc, err := NewTokenService(cfg, WithTokenClock(clock.Now))
		require.NoError(t, err)

		token, err := svc.IssueAccessToken(&User{ID: uuid.New()})
		require.NoError(t, err)

		clock.Advance(15*time.Minute + 10*time.Second)
		_, err = svc.VerifyAccessToken(token)
		require.NoError(t, err)

		clock.Advance(30 * time.Second)
		_, err = svc.VerifyAccessToken(token)
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("rejects forged and malformed tokens", func(t *testing.T) {
		t.Parallel()
		svc := newTokenService(t, nil)
		user := &User{ID: uuid.New()}

		refresh, err := svc.IssueRefreshToken(user)
		require.NoError(t, err)
		_, err = svc.VerifyAccessToken(refresh)
		assert.ErrorIs(t, err, ErrBadSignature, "refresh tokens are signed with another secret")

		_, err = svc.VerifyAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrBadSignature)

		_, err = svc.VerifyAccessToken("")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("pair carries expires_in in seconds", func(t *testing.T) {
		t.Parallel()
		svc := newTokenService(t, nil)
		pair, err := svc.IssuePair(&User{ID: uuid.New()})
		require.NoError(t, err)
		assert.Equal(t, 900, pair.ExpiresIn)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
	})

	t.Run("tokens issued in the same second differ", func(t *testing.T) {
		t.Parallel()
		clock := newTestClock()
		svc := newTokenService(t, clock)
		user := &User{ID: uuid.New()}

		first, err := svc.IssueAccessToken(user)
		require.NoError(t, err)
		second, err := svc.IssueAccessToken(user)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid while version matches", func(t *testing.T) {
		t.Parallel()
		svc := newTokenService(t, nil)
		user := &User{ID: uuid.New(), TokenVersion: 3}

		token, err := svc.IssueRefreshToken(user)
		require.NoError(t, err)

		id, err := svc.VerifyRefreshToken(ctx, token, versionLookup(3, nil))
		require.NoError(t, err)
		assert.Equal(t, user.ID, id)
	})

	t.Run("superseded after version increment", func(t *testing.T) {
		t.Parallel()
		svc := newTokenService(t, nil)
		user := &User{ID: uuid.New()}

		token, err := svc.IssueRefreshToken(user)
		require.NoError(t, err)

		_, err = svc.VerifyRefreshToken(ctx, token, versionLookup(1, nil))
		assert.ErrorIs(t, err, ErrSuperseded)
	})

	t.Run("superseded when user is gone", func(t *testing.T) {
		t.Parallel()
		svc := newTokenService(t, nil)
		token, err := svc.IssueRefreshToken(&User{ID: uuid.New()})
		require.NoError(t, err)

		_, err = svc.VerifyRefreshToken(ctx, token, versionLookup(0, ErrNotFound))
		assert.ErrorIs(t, err, ErrSuperseded)
	})

	t.Run("lookup failure is unavailable", func(t *testing.T) {
		t.Parallel()
		svc := newTokenService(t, nil)
		token, err := svc.IssueRefreshToken(&User{ID: uuid.New()})
		require.NoError(t, err)

		_, err = svc.VerifyRefreshToken(ctx, token, versionLookup(0, context.DeadlineExceeded))
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.False(t, IsAuthDecision(err))
	})

	t.Run("expired before lookup", func(t *testing.T) {
		t.Parallel()
		clock := newTestClock()
		svc := newTokenService(t, clock)
		token, err := svc.IssueRefreshToken(&User{ID: uuid.New()})
		require.NoError(t, err)

		clock.Advance(7*24*time.Hour + time.Second)
		called := false
		_, err = svc.VerifyRefreshToken(ctx, token, func(context.Context, uuid.UUID) (int, error) {
			called = true
			return 0, nil
		})
		assert.ErrorIs(t, err, ErrExpired)
		assert.False(t, called)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		t.Parallel()
		svc := newTokenService(t, nil)
		access, err := svc.IssueAccessToken(&User{ID: uuid.New()})
		require.NoError(t, err)

		_, err = svc.VerifyRefreshToken(ctx, access, versionLookup(0, nil))
		assert.ErrorIs(t, err, ErrBadSignature)
	})
}

func TestIsAuthDecision(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrUnauthenticated, ErrInvalidCredential, ErrBadSignature, ErrExpired, ErrSuperseded, ErrMismatch, ErrProviderRejected} {
		assert.True(t, IsAuthDecision(errors.Join(err, errors.New("cause"))), err.Error())
	}
	assert.False(t, IsAuthDecision(ErrUnavailable))
	assert.False(t, IsAuthDecision(&DuplicateIdentityError{Field: FieldEmail}))
}
