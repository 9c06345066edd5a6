package account

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saddagada1/bella-server-web/handler"
	"github.com/saddagada1/bella-server-web/pkg/binder"
	"github.com/saddagada1/bella-server-web/pkg/cookie"
	"github.com/saddagada1/bella-server-web/pkg/logger"
	"github.com/saddagada1/bella-server-web/svc/auth"
)

// Mountable is implemented by modules that provide their own router.
type Mountable interface {
	Handle() http.Handler
}

// Module serves the account routes.
type Module struct {
	accounts     *auth.AccountService
	provider     auth.IdentityProvider
	cookies      *cookie.Manager
	logger       *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

type Option func(*Module)

func WithLogger(log *slog.Logger) Option {
	return func(m *Module) {
		if log != nil {
			m.logger = log
		}
	}
}

// WithCookies sets the cookie manager whose defaults (Secure, Domain,
// SameSite) apply to the refresh cookie.
func WithCookies(c *cookie.Manager) Option {
	return func(m *Module) {
		if c != nil {
			m.cookies = c
		}
	}
}

// WithIdentityProvider enables the federated register and login routes.
func WithIdentityProvider(p auth.IdentityProvider) Option {
	return func(m *Module) {
		m.provider = p
	}
}

func New(accounts *auth.AccountService, opts ...Option) *Module {
	m := &Module{
		accounts: accounts,
		cookies:  cookie.New(),
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.errorHandler = handler.NewErrorHandler(m.logger, handler.WithErrorMapper(MapError))
	return m
}

// Handle returns the router with every account route.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()

	bearer := auth.BearerGuard(m.accounts.Tokens(),
		auth.WithGuardLogger(m.logger),
		auth.WithErrorResponder(m.respondGuardError),
	)

	r.Post(RefreshPath, m.refresh)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", wrap(m, m.register))
		r.Post("/login", wrap(m, m.login))
		r.Post("/logout", wrap(m, m.logout))
		r.Post("/forgot-password", wrap(m, m.forgotPassword))
		r.Post("/forgot-password/complete", wrap(m, m.changeForgotPassword))

		if m.provider != nil {
			federated := auth.FederatedGuard(m.provider,
				auth.WithGuardLogger(m.logger),
				auth.WithErrorResponder(m.respondGuardError),
			)
			r.With(federated).Post("/google/register", wrap(m, m.registerWithGoogle))
			r.With(federated).Post("/google/login", wrap(m, m.loginWithGoogle))
		}
	})

	r.Get("/users/{username}", handler.Wrap[handler.Context, UsernamePath](m.userByUsername,
		handler.WithBinder[handler.Context, UsernamePath](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, UsernamePath](m.errorHandler),
	))

	r.Route("/me", func(r chi.Router) {
		r.Use(bearer)
		r.Get("/", wrap(m, m.me))
		r.Put("/username", wrap(m, m.changeUsername))
		r.Put("/email", wrap(m, m.changeEmail))
		r.Put("/password", wrap(m, m.changePassword))
		r.Put("/about", wrap(m, m.changeAbout))
		r.Post("/verify-email/send", wrap(m, m.sendVerifyEmail))
		r.Post("/verify-email", wrap(m, m.verifyEmail))
	})

	return r
}

// wrap binds a JSON body into R and routes errors through the module's
// error handler. Requests without fields skip body binding.
func wrap[R any](m *Module, h func(handler.Context, R) handler.Response) http.HandlerFunc {
	opts := []handler.WrapOption[handler.Context, R]{
		handler.WithErrorHandler[handler.Context, R](m.errorHandler),
	}
	var zero R
	if _, empty := any(zero).(NoBody); !empty {
		opts = append(opts, handler.WithBinder[handler.Context, R](binder.JSON()))
	}
	return handler.Wrap(handler.HandlerFunc[handler.Context, R](h), opts...)
}

var _ Mountable = (*Module)(nil)
