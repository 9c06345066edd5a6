// Package auth implements authentication and session lifecycle: password and
// Google sign-in, access and refresh tokens, forced session invalidation and
// single-use email codes.
//
// # Tokens
//
// TokenService signs two kinds of HS256 tokens with separate secrets. Access
// tokens carry only the user id and are verified without any storage access.
// Refresh tokens also carry the user's token_version; they are accepted only
// while that number matches the stored one. Incrementing token_version, which
// happens in the same UPDATE that changes a password, revokes every refresh
// token issued before it.
//
//	tokens, err := auth.NewTokenService(cfg)
//	pair, err := tokens.IssuePair(user)
//	id, err := tokens.VerifyRefreshToken(ctx, pair.RefreshToken, accounts.CurrentTokenVersion)
//
// # One-time codes
//
// OTPService keeps at most one live code per purpose and subject in an
// EphemeralStore. Codes are consumed with a compare-and-delete, so a code can
// be redeemed once even under concurrent requests.
//
// # Guards
//
// BearerGuard protects routes with "Authorization: Bearer <access token>".
// FederatedGuard exchanges an authorization code sent as "Authorization:
// Basic <code>" with an IdentityProvider and exposes the verified Identity
// for the rest of the request.
//
//	r.With(auth.BearerGuard(tokens)).Get("/me", me)
//	r.With(auth.FederatedGuard(google)).Post("/auth/google/login", loginWithGoogle)
//
// # Errors
//
// Authentication decisions (ErrUnauthenticated, ErrInvalidCredential,
// ErrBadSignature, ErrExpired, ErrSuperseded, ErrMismatch,
// ErrProviderRejected) should be shown to clients as one uniform message per
// flow. ErrUnavailable marks dependency failures and timeouts and must never
// be treated as a rejected credential.
package auth
