package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCredentialStore is a testify mock of CredentialStore.
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockCredentialStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockCredentialStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockCredentialStore) CreateUser(ctx context.Context, user *User) (*User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockCredentialStore) UpdateUser(ctx context.Context, id uuid.UUID, update UserUpdate) (*User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

// MockNotifier is a testify mock of Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerifyEmail(ctx context.Context, to, code string) error {
	return m.Called(ctx, to, code).Error(0)
}

func (m *MockNotifier) SendForgotPassword(ctx context.Context, to, code string) error {
	return m.Called(ctx, to, code).Error(0)
}

// MockIdentityProvider is a testify mock of IdentityProvider.
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) Name() string {
	return "mock"
}

func (m *MockIdentityProvider) Exchange(ctx context.Context, code string) (Identity, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(Identity), args.Error(1)
}

// memoryStore is a CredentialStore fake with the same uniqueness and
// update semantics as the Postgres repository.
type memoryStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[uuid.UUID]User)}
}

func (s *memoryStore) find(match func(User) bool) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	return s.find(func(u User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *memoryStore) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	return s.find(func(u User) bool { return u.ID == id })
}

func (s *memoryStore) FindByUsername(_ context.Context, username string) (*User, error) {
	return s.find(func(u User) bool { return strings.EqualFold(u.Username, username) })
}

func (s *memoryStore) conflict(id uuid.UUID, email, username string) error {
	for _, u := range s.users {
		if u.ID == id {
			continue
		}
		if strings.EqualFold(u.Username, username) {
			return &DuplicateIdentityError{Field: FieldUsername}
		}
		if strings.EqualFold(u.Email, email) {
			return &DuplicateIdentityError{Field: FieldEmail}
		}
	}
	return nil
}

func (s *memoryStore) CreateUser(_ context.Context, user *User) (*User, error) {
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

func (s *memoryStore) UpdateUser(_ context.Context, id uuid.UUID, upd UserUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
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

// testClock is a manually advanced clock safe for concurrent reads.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now().Truncate(time.Second)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var (
	_ CredentialStore  = (*MockCredentialStore)(nil)
	_ CredentialStore  = (*memoryStore)(nil)
	_ Notifier         = (*MockNotifier)(nil)
	_ IdentityProvider = (*MockIdentityProvider)(nil)
)
