package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/saddagada1/bella-server-web/svc/auth"
)

// NoBody marks routes that read nothing from the request body.
type NoBody struct{}

type GoogleRegisterRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type UsernameRequest struct {
	Username string `json:"username"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type UsernamePath struct {
	Username string `path:"username"`
}

// Profile is the public view of an account.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Bio       string    `json:"bio"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

func newProfile(u *auth.User) Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
	}
}
