package account

import (
	"errors"
	"net/http"

	"github.com/saddagada1/bella-server-web/handler"
	"github.com/saddagada1/bella-server-web/pkg/cookie"
	"github.com/saddagada1/bella-server-web/pkg/logger"
	"github.com/saddagada1/bella-server-web/svc/auth"
)

const (
	// RefreshCookie holds the refresh token. It is only sent to RefreshPath.
	RefreshCookie = "qid"
	RefreshPath   = "/refresh_token"
)

func (m *Module) setRefreshCookie(w http.ResponseWriter, token string) error {
	return m.cookies.Set(w, RefreshCookie, token,
		cookie.WithPath(RefreshPath),
		cookie.WithHTTPOnly(true),
		cookie.WithMaxAge(int(m.accounts.Tokens().RefreshTTL().Seconds())),
	)
}

func (m *Module) clearRefreshCookie(w http.ResponseWriter) {
	m.cookies.Delete(w, RefreshCookie,
		cookie.WithPath(RefreshPath),
		cookie.WithHTTPOnly(true),
	)
}

// refresh exchanges the refresh cookie for a new token pair. A rejected
// token clears the cookie; any other failure leaves it for a retry.
func (m *Module) refresh(w http.ResponseWriter, r *http.Request) {
	ctx := handler.NewContext(w, r)

	raw, err := m.cookies.Get(r, RefreshCookie)
	if err != nil {
		m.clearRefreshCookie(w)
		m.errorHandler(ctx, errors.Join(ErrNotAuthenticated, auth.ErrUnauthenticated))
		return
	}

	pair, err := m.accounts.Refresh(r.Context(), raw)
	if err != nil {
		if !auth.IsAuthDecision(err) {
			m.errorHandler(ctx, err)
			return
		}
		m.logger.DebugContext(r.Context(), "refresh token rejected",
			logger.Error(err),
			logger.Event("refresh_rejected"),
		)
		m.clearRefreshCookie(w)
		m.errorHandler(ctx, ErrNotAuthenticated)
		return
	}

	if err := m.setRefreshCookie(w, pair.RefreshToken); err != nil {
		m.errorHandler(ctx, err)
		return
	}
	if err := handler.JSON(pair, handler.WithoutEnvelope()).Render(w, r); err != nil {
		m.errorHandler(ctx, err)
	}
}
