package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/saddagada1/bella-server-web/pkg/jwt"
	"github.com/saddagada1/bella-server-web/pkg/logger"
)

// FederatedScheme is the Authorization scheme carrying a provider
// authorization code, as in "Basic <code>". The name is a convention agreed
// with the web client and carries no Basic-auth semantics.
const FederatedScheme = "Basic"

// ErrorResponder writes the response for a rejected request.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

type GuardOption func(*guardConfig)

type guardConfig struct {
	logger  *slog.Logger
	respond ErrorResponder
}

func WithGuardLogger(log *slog.Logger) GuardOption {
	return func(c *guardConfig) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithErrorResponder replaces the default plain-text error response.
func WithErrorResponder(fn ErrorResponder) GuardOption {
	return func(c *guardConfig) {
		if fn != nil {
			c.respond = fn
		}
	}
}

func newGuardConfig(opts []GuardOption) *guardConfig {
	c := &guardConfig{logger: logger.Discard(), respond: defaultResponder}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultResponder(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, ErrUnavailable) {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

// BearerGuard requires "Authorization: Bearer <access token>". On success the
// user id is stored in the request context. The next handler never runs for a
// missing, malformed, expired or forged token.
func BearerGuard(tokens *TokenService, opts ...GuardOption) func(http.Handler) http.Handler {
	cfg := newGuardConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := jwt.BearerToken(r)
			if err != nil {
				cfg.respond(w, r, errors.Join(ErrUnauthenticated, err))
				return
			}

			id, err := tokens.VerifyAccessToken(raw)
			if err != nil {
				cfg.logger.DebugContext(r.Context(), "access token rejected",
					logger.Error(err),
					logger.Component("bearer_guard"),
				)
				cfg.respond(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		})
	}
}

// FederatedGuard exchanges the authorization code carried in
// "Authorization: Basic <code>" for a verified identity and stores it in the
// request context. A provider that cannot be reached is reported as
// ErrUnavailable; every other failure as ErrProviderRejected, with the
// underlying cause only logged. A malformed header is rejected before any
// call to the provider.
func FederatedGuard(provider IdentityProvider, opts ...GuardOption) func(http.Handler) http.Handler {
	cfg := newGuardConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			code, ok := federatedCode(r)
			if !ok {
				cfg.respond(w, r, ErrProviderRejected)
				return
			}

			identity, err := provider.Exchange(ctx, code)
			if err != nil {
				cfg.logger.WarnContext(ctx, "federated login rejected",
					logger.Error(err),
					logger.Provider(provider.Name()),
					logger.Component("federated_guard"),
				)
				if errors.Is(err, ErrProviderUnavailable) || isTransportError(err) {
					cfg.respond(w, r, errors.Join(ErrUnavailable, ErrProviderRejected))
					return
				}
				cfg.respond(w, r, ErrProviderRejected)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
		})
	}
}

func federatedCode(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != FederatedScheme || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
