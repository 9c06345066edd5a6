package account

import (
	"github.com/google/uuid"

	"github.com/saddagada1/bella-server-web/handler"
	"github.com/saddagada1/bella-server-web/svc/auth"
)

// session sets the refresh cookie and renders the user with the access token.
func (m *Module) session(ctx handler.Context, s *auth.Session, err error) handler.Response {
	if err != nil {
		return handler.Error(err)
	}
	if err := m.setRefreshCookie(ctx.ResponseWriter(), s.Auth.RefreshToken); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(s, handler.WithoutEnvelope())
}

func user(u *auth.User, err error) handler.Response {
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(u, handler.WithoutEnvelope())
}

func ok(err error) handler.Response {
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(true, handler.WithoutEnvelope())
}

func currentUser(ctx handler.Context) (uuid.UUID, bool) {
	return auth.UserIDFromContext(ctx)
}

func (m *Module) register(ctx handler.Context, req auth.RegisterInput) handler.Response {
	s, err := m.accounts.Register(ctx, req)
	return m.session(ctx, s, err)
}

func (m *Module) registerWithGoogle(ctx handler.Context, req GoogleRegisterRequest) handler.Response {
	identity, found := auth.IdentityFromContext(ctx)
	if !found {
		return handler.Error(auth.ErrProviderRejected)
	}
	s, err := m.accounts.RegisterWithGoogle(ctx, identity, auth.GoogleRegisterInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	return m.session(ctx, s, err)
}

func (m *Module) login(ctx handler.Context, req auth.LoginInput) handler.Response {
	s, err := m.accounts.Login(ctx, req)
	return m.session(ctx, s, err)
}

func (m *Module) loginWithGoogle(ctx handler.Context, _ NoBody) handler.Response {
	identity, found := auth.IdentityFromContext(ctx)
	if !found {
		return handler.Error(auth.ErrProviderRejected)
	}
	s, err := m.accounts.LoginWithGoogle(ctx, identity)
	return m.session(ctx, s, err)
}

func (m *Module) logout(ctx handler.Context, _ NoBody) handler.Response {
	m.clearRefreshCookie(ctx.ResponseWriter())
	return ok(nil)
}

func (m *Module) forgotPassword(ctx handler.Context, req ForgotPasswordRequest) handler.Response {
	return ok(m.accounts.ForgotPassword(ctx, req.Email))
}

func (m *Module) changeForgotPassword(ctx handler.Context, req auth.ResetPasswordInput) handler.Response {
	s, err := m.accounts.ChangeForgotPassword(ctx, req)
	return m.session(ctx, s, err)
}

func (m *Module) userByUsername(ctx handler.Context, req UsernamePath) handler.Response {
	u, err := m.accounts.UserByUsername(ctx, req.Username)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newProfile(u), handler.WithoutEnvelope())
}

func (m *Module) me(ctx handler.Context, _ NoBody) handler.Response {
	id, found := currentUser(ctx)
	if !found {
		return handler.Error(auth.ErrUnauthenticated)
	}
	return user(m.accounts.Me(ctx, id))
}

func (m *Module) changeUsername(ctx handler.Context, req UsernameRequest) handler.Response {
	id, found := currentUser(ctx)
	if !found {
		return handler.Error(auth.ErrUnauthenticated)
	}
	return user(m.accounts.ChangeUsername(ctx, id, req.Username))
}

func (m *Module) changeEmail(ctx handler.Context, req EmailRequest) handler.Response {
	id, found := currentUser(ctx)
	if !found {
		return handler.Error(auth.ErrUnauthenticated)
	}
	return user(m.accounts.ChangeEmail(ctx, id, req.Email))
}

// changePassword returns a fresh session: the change invalidates every
// refresh token issued before it, including the caller's.
func (m *Module) changePassword(ctx handler.Context, req auth.ChangePasswordInput) handler.Response {
	id, found := currentUser(ctx)
	if !found {
		return handler.Error(auth.ErrUnauthenticated)
	}
	s, err := m.accounts.ChangePassword(ctx, id, req)
	return m.session(ctx, s, err)
}

func (m *Module) changeAbout(ctx handler.Context, req auth.AboutInput) handler.Response {
	id, found := currentUser(ctx)
	if !found {
		return handler.Error(auth.ErrUnauthenticated)
	}
	return user(m.accounts.ChangeAbout(ctx, id, req))
}

func (m *Module) sendVerifyEmail(ctx handler.Context, _ NoBody) handler.Response {
	id, found := currentUser(ctx)
	if !found {
		return handler.Error(auth.ErrUnauthenticated)
	}
	return ok(m.accounts.SendVerifyEmail(ctx, id))
}

func (m *Module) verifyEmail(ctx handler.Context, req VerifyEmailRequest) handler.Response {
	id, found := currentUser(ctx)
	if !found {
		return handler.Error(auth.ErrUnauthenticated)
	}
	return user(m.accounts.VerifyEmail(ctx, id, req.Token))
}
