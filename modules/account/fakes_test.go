package account_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/saddagada1/bella-server-web/svc/auth"
)

var errConnReset = errors.New("read tcp: connection reset by peer")

// userStore is an in-memory CredentialStore. Setting down makes every call
// fail the way a lost database connection does.
type userStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]auth.User
	down  atomic.Bool
}

func newUserStore() *userStore {
	return &userStore{users: make(map[uuid.UUID]auth.User)}
}

func (s *userStore) find(match func(auth.User) bool) (*auth.User, error) {
	if s.down.Load() {
		return nil, errConnReset
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s *userStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return s.find(func(u auth.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *userStore) FindByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	return s.find(func(u auth.User) bool { return u.ID == id })
}

func (s *userStore) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	return s.find(func(u auth.User) bool { return strings.EqualFold(u.Username, username) })
}

func (s *userStore) conflict(id uuid.UUID, email, username string) error {
	for _, u := range s.users {
		if u.ID == id {
			continue
		}
		if strings.EqualFold(u.Username, username) {
			return &auth.DuplicateIdentityError{Field: auth.FieldUsername}
		}
		if strings.EqualFold(u.Email, email) {
			return &auth.DuplicateIdentityError{Field: auth.FieldEmail}
		}
	}
	return nil
}

func (s *userStore) CreateUser(_ context.Context, user *auth.User) (*auth.User, error) {
	if s.down.Load() {
		return nil, errConnReset
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conflict(user.ID, user.Email, user.Username); err != nil {
		return nil, err
	}
	u := *user
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return &u, nil
}

func (s *userStore) UpdateUser(_ context.Context, id uuid.UUID, upd auth.UserUpdate) (*auth.User, error) {
	if s.down.Load() {
		return nil, errConnReset
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, found := s.users[id]
	if !found {
		return nil, auth.ErrNotFound
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if err := s.conflict(id, u.Email, u.Username); err != nil {
		return nil, err
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = upd.PasswordHash
	}
	if upd.Verified != nil {
		u.Verified = *upd.Verified
	}
	if upd.OAuthUser != nil {
		u.OAuthUser = *upd.OAuthUser
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.BumpTokenVersion {
		u.TokenVersion++
	}
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return &u, nil
}

// codeNotifier hands every sent code to the test.
type codeNotifier struct {
	codes chan string
}

func (n *codeNotifier) SendVerifyEmail(_ context.Context, _, code string) error {
	n.codes <- code
	return nil
}

func (n *codeNotifier) SendForgotPassword(_ context.Context, _, code string) error {
	n.codes <- code
	return nil
}

// stubProvider accepts the code "good" and counts every exchange.
type stubProvider struct {
	identity auth.Identity
	err      error
	calls    atomic.Int32
}

func (p *stubProvider) Name() string { return "google" }

func (p *stubProvider) Exchange(_ context.Context, code string) (auth.Identity, error) {
	p.calls.Add(1)
	if p.err != nil {
		return auth.Identity{}, p.err
	}
	if code != "good" {
		return auth.Identity{}, auth.ErrCodeExchange
	}
	return p.identity, nil
}

var (
	_ auth.CredentialStore  = (*userStore)(nil)
	_ auth.Notifier         = (*codeNotifier)(nil)
	_ auth.IdentityProvider = (*stubProvider)(nil)
)
