package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saddagada1/bella-server-web/pkg/logger"
	"github.com/saddagada1/bella-server-web/pkg/sanitizer"
	"github.com/saddagada1/bella-server-web/pkg/validator"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 30
	nameMaxLen     = 50
	bioMaxLen      = 500
)

// Notifier delivers one-time codes. Delivery is fire-and-forget; a returned
// error only means the message could not be queued.
type Notifier interface {
	SendVerifyEmail(ctx context.Context, to, code string) error
	SendForgotPassword(ctx context.Context, to, code string) error
}

// Session is returned by every operation that authenticates the caller.
type Session struct {
	User *User     `json:"user"`
	Auth TokenPair `json:"auth"`
}

// FieldError attaches an authentication failure to a request field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// GoogleRegisterInput is the profile a provider identity is registered with.
type GoogleRegisterInput struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordInput struct {
	Email    string `json:"email"`
	Code     string `json:"token"`
	Password string `json:"password"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type AboutInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
}

// AccountService implements the account operations on top of the credential
// store, the token service and the OTP service.
type AccountService struct {
	users            CredentialStore
	tokens           *TokenService
	otp              *OTPService
	notifier         Notifier
	hasher           Hasher
	logger           *slog.Logger
	timeout          time.Duration
	passwordStrength validator.PasswordStrengthConfig
}

type AccountOption func(*AccountService)

func WithAccountLogger(log *slog.Logger) AccountOption {
	return func(s *AccountService) {
		if log != nil {
			s.logger = log
		}
	}
}

func WithHasher(h Hasher) AccountOption {
	return func(s *AccountService) {
		if h != nil {
			s.hasher = h
		}
	}
}

// WithOperationTimeout bounds the store calls made by one operation.
func WithOperationTimeout(d time.Duration) AccountOption {
	return func(s *AccountService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithPasswordStrength(cfg validator.PasswordStrengthConfig) AccountOption {
	return func(s *AccountService) {
		s.passwordStrength = cfg
	}
}

func NewAccountService(users CredentialStore, tokens *TokenService, otp *OTPService, notifier Notifier, opts ...AccountOption) *AccountService {
	s := &AccountService{
		users:            users,
		tokens:           tokens,
		otp:              otp,
		notifier:         notifier,
		hasher:           NewBcryptHasher(0),
		logger:           logger.Discard(),
		timeout:          5 * time.Second,
		passwordStrength: validator.DefaultPasswordStrength(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tokens exposes the token service used for issuing sessions.
func (s *AccountService) Tokens() *TokenService {
	return s.tokens
}

func (s *AccountService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *AccountService) session(u *User) (*Session, error) {
	pair, err := s.tokens.IssuePair(u)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return &Session{User: u, Auth: pair}, nil
}

func (s *AccountService) passwordRules(field, password string) []validator.Rule {
	return []validator.Rule{
		validator.Required(field, password),
		validator.StrongPassword(field, password, s.passwordStrength),
		validator.NotCommonPassword(field, password),
	}
}

func usernameRules(username string) []validator.Rule {
	return []validator.Rule{
		validator.Required(FieldUsername, username),
		validator.ValidUsername(FieldUsername, username, usernameMinLen, usernameMaxLen),
	}
}

func emailRules(email string) []validator.Rule {
	return []validator.Rule{
		validator.Required(FieldEmail, email),
		validator.ValidEmail(FieldEmail, email),
	}
}

func sanitizeName(name string) string {
	return sanitizer.Apply(name, sanitizer.Trim, sanitizer.SingleLine)
}

func nameRules(first, last string) []validator.Rule {
	return []validator.Rule{
		validator.MaxLen("first_name", first, nameMaxLen),
		validator.MaxLen("last_name", last, nameMaxLen),
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Register creates a password account, emails a verification code and
// returns a new session.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Username = sanitizer.NormalizeUsername(in.Username)
	in.Email = sanitizer.NormalizeEmail(in.Email)
	in.FirstName = sanitizeName(in.FirstName)
	in.LastName = sanitizeName(in.LastName)

	rules := append(usernameRules(in.Username), emailRules(in.Email)...)
	rules = append(rules, nameRules(in.FirstName, in.LastName)...)
	rules = append(rules, s.passwordRules("password", in.Password)...)
	if err := validator.Apply(rules...); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.CreateUser(ctx, &User{
		ID:           uuid.New(),
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, unavailable(err)
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.UserID(user.ID.String()),
		logger.Event("register"),
	)

	if err := s.sendVerifyEmail(ctx, user); err != nil {
		return nil, err
	}
	return s.session(user)
}

// RegisterWithGoogle creates a verified account for a provider identity. When
// the email already belongs to an account, that account is logged in.
func (s *AccountService) RegisterWithGoogle(ctx context.Context, identity Identity, in GoogleRegisterInput) (*Session, error) {
	if identity.Email == "" {
		return nil, ErrProviderRejected
	}
	in.Username = sanitizer.NormalizeUsername(in.Username)
	in.FirstName = sanitizeName(in.FirstName)
	in.LastName = sanitizeName(in.LastName)
	if err := validator.Apply(append(usernameRules(in.Username), nameRules(in.FirstName, in.LastName)...)...); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.CreateUser(ctx, &User{
		ID:        uuid.New(),
		Email:     identity.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Verified:  true,
		OAuthUser: true,
	})
	if dup, ok := AsDuplicateIdentity(err); ok && dup.Field == FieldEmail {
		existing, err := s.users.FindByEmail(ctx, identity.Email)
		if err != nil {
			return nil, unavailable(err)
		}
		s.logger.InfoContext(ctx, "federated register matched existing account",
			logger.UserID(existing.ID.String()),
			logger.Provider(identity.Provider),
			logger.Event("login"),
		)
		return s.session(existing)
	}
	if err != nil {
		return nil, unavailable(err)
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.UserID(user.ID.String()),
		logger.Provider(identity.Provider),
		logger.Event("register"),
	)
	return s.session(user)
}

// Login authenticates with email and password. An unknown email, an account
// without a local password and a wrong password all fail with
// ErrInvalidCredential.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := sanitizer.NormalizeEmail(in.Email)
	if err := validator.Apply(
		validator.Required(FieldEmail, email),
		validator.Required("password", in.Password),
	); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		s.burn(in.Password)
		return nil, ErrInvalidCredential
	}
	if err != nil {
		return nil, unavailable(err)
	}
	if !user.HasPassword() {
		s.burn(in.Password)
		return nil, ErrInvalidCredential
	}
	if err := s.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		s.logger.InfoContext(ctx, "login rejected",
			logger.UserID(user.ID.String()),
			logger.Event("login_failed"),
		)
		return nil, ErrInvalidCredential
	}

	return s.session(user)
}

func (s *AccountService) burn(password string) {
	if b, ok := s.hasher.(interface{ Burn(string) }); ok {
		b.Burn(password)
	}
}

// LoginWithGoogle logs in the account owning the provider-verified email.
func (s *AccountService) LoginWithGoogle(ctx context.Context, identity Identity) (*Session, error) {
	if identity.Email == "" {
		return nil, ErrProviderRejected
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		return nil, unavailable(err)
	}
	return s.session(user)
}

// Refresh exchanges a refresh token for a new pair. The old token is not
// revoked; it stays valid until the user's token version changes.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var user *User
	_, err := s.tokens.VerifyRefreshToken(ctx, refreshToken, func(ctx context.Context, id uuid.UUID) (int, error) {
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			return 0, err
		}
		user = u
		return u.TokenVersion, nil
	})
	if err != nil {
		return TokenPair{}, err
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return pair, nil
}

// CurrentTokenVersion is a VersionLookup backed by the credential store.
func (s *AccountService) CurrentTokenVersion(ctx context.Context, id uuid.UUID) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return 0, unavailable(err)
	}
	return u.TokenVersion, nil
}

// ForgotPassword emails a reset code when the address belongs to an account.
// The outcome never reveals whether it does.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	email = sanitizer.NormalizeEmail(email)
	if validator.Apply(emailRules(email)...) != nil {
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return unavailable(err)
	}

	code, err := s.otp.Issue(ctx, PurposeForgotPassword, user.Email, Grant{Owner: user.ID, Email: user.Email})
	if err != nil {
		return err
	}
	if err := s.notifier.SendForgotPassword(ctx, user.Email, code); err != nil {
		s.logger.WarnContext(ctx, "failed to send reset code",
			logger.Error(err),
			logger.UserID(user.ID.String()),
			logger.Purpose(string(PurposeForgotPassword)),
		)
	}
	return nil
}

// ChangeForgotPassword redeems a reset code, replaces the password and
// invalidates every refresh token issued before the change. A code sent to
// an address the account no longer uses is expired.
func (s *AccountService) ChangeForgotPassword(ctx context.Context, in ResetPasswordInput) (*Session, error) {
	email := sanitizer.NormalizeEmail(in.Email)
	code := normalizeCode(in.Code)
	if err := validator.Apply(s.passwordRules("password", in.Password)...); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	grant, err := s.otp.VerifyAndConsume(ctx, PurposeForgotPassword, email, code)
	if err != nil {
		return nil, err
	}
	current, err := s.users.FindByID(ctx, grant.Owner)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrExpired
	}
	if err != nil {
		return nil, unavailable(err)
	}
	if current.Email != grant.Email {
		return nil, ErrExpired
	}

	user, err := s.users.UpdateUser(ctx, grant.Owner, UserUpdate{
		PasswordHash:     hash,
		OAuthUser:        ptr(false),
		BumpTokenVersion: true,
	})
	if err != nil {
		return nil, unavailable(err)
	}

	s.logger.InfoContext(ctx, "password reset",
		logger.UserID(user.ID.String()),
		logger.Event("password_reset"),
	)
	return s.session(user)
}

// Me returns the account of the authenticated user.
func (s *AccountService) Me(ctx context.Context, id uuid.UUID) (*User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, unavailable(err)
	}
	return user, nil
}

func (s *AccountService) UserByUsername(ctx context.Context, username string) (*User, error) {
	username = sanitizer.NormalizeUsername(username)
	if username == "" {
		return nil, ErrNotFound
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, unavailable(err)
	}
	return user, nil
}

func (s *AccountService) ChangeUsername(ctx context.Context, id uuid.UUID, username string) (*User, error) {
	username = sanitizer.NormalizeUsername(username)
	if err := validator.Apply(usernameRules(username)...); err != nil {
		return nil, err
	}
	return s.update(ctx, id, UserUpdate{Username: &username})
}

// ChangeEmail moves the account to a new address, which must be verified
// again. Codes sent to the old address are revoked first.
func (s *AccountService) ChangeEmail(ctx context.Context, id uuid.UUID, email string) (*User, error) {
	email = sanitizer.NormalizeEmail(email)
	if err := validator.Apply(emailRules(email)...); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, unavailable(err)
	}
	if err := s.otp.Revoke(ctx, PurposeVerifyEmail, id.String()); err != nil {
		return nil, err
	}
	if err := s.otp.Revoke(ctx, PurposeForgotPassword, current.Email); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateUser(ctx, id, UserUpdate{Email: &email, Verified: ptr(false)})
	if err != nil {
		return nil, unavailable(err)
	}
	s.logger.InfoContext(ctx, "email changed",
		logger.UserID(user.ID.String()),
		logger.Event("email_changed"),
	)
	return user, nil
}

// ChangePassword sets a new password. The old one is required unless the
// account was created through a provider and never had one. Refresh tokens
// issued before the change stop working; the returned session is current.
func (s *AccountService) ChangePassword(ctx context.Context, id uuid.UUID, in ChangePasswordInput) (*Session, error) {
	if err := validator.Apply(s.passwordRules("new_password", in.NewPassword)...); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, unavailable(err)
	}
	if !user.OAuthUser {
		if err := s.hasher.Compare(user.PasswordHash, in.OldPassword); err != nil {
			return nil, &FieldError{Field: "old_password", Err: ErrInvalidCredential}
		}
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return nil, err
	}
	user, err = s.users.UpdateUser(ctx, id, UserUpdate{
		PasswordHash:     hash,
		OAuthUser:        ptr(false),
		BumpTokenVersion: true,
	})
	if err != nil {
		return nil, unavailable(err)
	}

	s.logger.InfoContext(ctx, "password changed",
		logger.UserID(user.ID.String()),
		logger.Event("password_changed"),
	)
	return s.session(user)
}

func (s *AccountService) ChangeAbout(ctx context.Context, id uuid.UUID, in AboutInput) (*User, error) {
	first := sanitizeName(in.FirstName)
	last := sanitizeName(in.LastName)
	bio := sanitizer.Apply(in.Bio, sanitizer.RemoveControlChars, sanitizer.Trim)

	rules := append(nameRules(first, last), validator.MaxLen("bio", bio, bioMaxLen))
	if err := validator.Apply(rules...); err != nil {
		return nil, err
	}
	return s.update(ctx, id, UserUpdate{FirstName: &first, LastName: &last, Bio: &bio})
}

// SendVerifyEmail issues a new verification code, invalidating any earlier
// one. Already verified accounts are left alone.
func (s *AccountService) SendVerifyEmail(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return unavailable(err)
	}
	if user.Verified {
		return nil
	}
	return s.sendVerifyEmail(ctx, user)
}

func (s *AccountService) sendVerifyEmail(ctx context.Context, user *User) error {
	code, err := s.otp.Issue(ctx, PurposeVerifyEmail, user.ID.String(), Grant{Owner: user.ID, Email: user.Email})
	if err != nil {
		return err
	}
	if err := s.notifier.SendVerifyEmail(ctx, user.Email, code); err != nil {
		s.logger.WarnContext(ctx, "failed to send verification code",
			logger.Error(err),
			logger.UserID(user.ID.String()),
			logger.Purpose(string(PurposeVerifyEmail)),
		)
	}
	return nil
}

// VerifyEmail redeems a verification code and marks the account verified.
// The code must have been sent to the address the account currently uses.
func (s *AccountService) VerifyEmail(ctx context.Context, id uuid.UUID, code string) (*User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, unavailable(err)
	}
	grant, err := s.otp.VerifyAndConsume(ctx, PurposeVerifyEmail, id.String(), normalizeCode(code))
	if err != nil {
		return nil, err
	}
	if grant.Owner != id {
		return nil, ErrMismatch
	}
	if grant.Email != current.Email {
		return nil, ErrExpired
	}

	user, err := s.users.UpdateUser(ctx, id, UserUpdate{Verified: ptr(true)})
	if err != nil {
		return nil, unavailable(err)
	}
	s.logger.InfoContext(ctx, "email verified",
		logger.UserID(user.ID.String()),
		logger.Event("email_verified"),
	)
	return user, nil
}

func (s *AccountService) update(ctx context.Context, id uuid.UUID, upd UserUpdate) (*User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.UpdateUser(ctx, id, upd)
	if err != nil {
		return nil, unavailable(err)
	}
	return user, nil
}
