// Package jwt signs and verifies HS256 JSON Web Tokens.
//
// It is a thin layer over github.com/golang-jwt/jwt/v5 that pins the
// algorithm, requires an expiry on every token and translates library errors
// into the package's own sentinels so callers can branch with errors.Is:
//
//	svc, err := jwt.New([]byte(secret), jwt.WithIssuer("bella"))
//	token, err := svc.Generate(claims)
//	err = svc.Parse(token, &claims)
//	switch {
//	case errors.Is(err, jwt.ErrExpiredToken):
//	case errors.Is(err, jwt.ErrInvalidSignature):
//	}
//
// A Service holds its key for its whole life and is safe for concurrent use.
package jwt
