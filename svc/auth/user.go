package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the account record owned by the credential store.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	Verified     bool      `json:"verified"`
	OAuthUser    bool      `json:"oauth_user"`
	TokenVersion int       `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Bio          string    `json:"bio"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword reports whether the account can log in with a local password.
func (u *User) HasPassword() bool {
	return len(u.PasswordHash) > 0 && !u.OAuthUser
}

// UserUpdate is a partial update. Nil fields are left untouched.
// BumpTokenVersion increments token_version in the same statement.
type UserUpdate struct {
	Username         *string
	Email            *string
	PasswordHash     []byte
	Verified         *bool
	OAuthUser        *bool
	FirstName        *string
	LastName         *string
	Bio              *string
	BumpTokenVersion bool
}

// IsEmpty reports whether the update would change nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.PasswordHash == nil &&
		u.Verified == nil && u.OAuthUser == nil && u.FirstName == nil &&
		u.LastName == nil && u.Bio == nil && !u.BumpTokenVersion
}

// CredentialStore is the durable user store.
// Lookups return ErrNotFound for missing users. Writes return
// *DuplicateIdentityError on a unique email or username collision.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, user *User) (*User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, update UserUpdate) (*User, error)
}

// EphemeralStore is a TTL key-value store. Get returns redis.ErrKeyNotFound
// for missing or expired keys.
type EphemeralStore interface {
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	DeleteIfEquals(ctx context.Context, key, expected string) (bool, error)
}

func ptr[T any](v T) *T {
	return &v
}
