// Package account exposes the auth service over a JSON HTTP API.
//
// Tokens are issued as a pair: the access token is returned in the body and
// the refresh token is set as an HttpOnly cookie scoped to the refresh
// endpoint. Authentication failures are rendered with one message per flow so
// clients cannot tell which check failed.
//
//	accounts := account.New(svc,
//		account.WithCookies(cookie.NewFromConfig(cookieCfg)),
//		account.WithIdentityProvider(google),
//		account.WithLogger(log),
//	)
//	r.Mount("/", accounts.Handle())
package account
