// Package cookie wraps net/http cookies with a Manager that applies shared
// defaults (path, domain, Secure, HttpOnly, SameSite) and per-call overrides.
//
//	m := cookie.New(cookie.WithSecure(true))
//	_ = m.Set(w, "qid", refreshToken, cookie.WithPath("/refresh_token"), cookie.WithMaxAge(604800))
//	token, err := m.Get(r, "qid")
//	m.Delete(w, "qid", cookie.WithPath("/refresh_token"))
//
// Get returns ErrCookieNotFound for missing or empty cookies.
package cookie
