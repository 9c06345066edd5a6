package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saddagada1/bella-server-web/pkg/logger"
	"github.com/saddagada1/bella-server-web/pkg/redis"
)

// Purpose namespaces one-time codes.
type Purpose string

const (
	PurposeVerifyEmail    Purpose = "verify-email"
	PurposeForgotPassword Purpose = "forgot-password"
)

func (p Purpose) key(subject string) string {
	return string(p) + ":" + subject
}

const otpAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Grant is what a code was issued for: the owning account and the address
// the code was delivered to.
type Grant struct {
	Owner uuid.UUID
	Email string
}

// otpRecord is the stored form of a live code.
type otpRecord struct {
	Owner     string    `json:"owner"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// OTPService issues and consumes single-use codes. At most one code is live
// per (purpose, subject).
type OTPService struct {
	store  EphemeralStore
	ttl    time.Duration
	length int
	random io.Reader
	now    func() time.Time
	logger *slog.Logger
}

type OTPOption func(*OTPService)

func WithOTPLogger(log *slog.Logger) OTPOption {
	return func(s *OTPService) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithOTPRandom replaces the entropy source used for codes.
func WithOTPRandom(r io.Reader) OTPOption {
	return func(s *OTPService) {
		if r != nil {
			s.random = r
		}
	}
}

func WithOTPClock(now func() time.Time) OTPOption {
	return func(s *OTPService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewOTPService(store EphemeralStore, cfg OTPConfig, opts ...OTPOption) *OTPService {
	s := &OTPService{
		store:  store,
		ttl:    cfg.TTL,
		length: cfg.CodeLength,
		random: rand.Reader,
		now:    time.Now,
		logger: logger.Discard(),
	}
	if s.ttl <= 0 {
		s.ttl = time.Hour
	}
	if s.length <= 0 {
		s.length = 6
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CodeLength is the number of characters in issued codes.
func (s *OTPService) CodeLength() int {
	return s.length
}

// Issue stores a new code for (purpose, subject), replacing any live one.
// grant is returned by VerifyAndConsume on success.
func (s *OTPService) Issue(ctx context.Context, purpose Purpose, subject string, grant Grant) (string, error) {
	key := purpose.key(subject)

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return "", unavailable(fmt.Errorf("failed to check otp: %w", err))
	}
	if exists {
		if err := s.store.Delete(ctx, key); err != nil {
			return "", unavailable(fmt.Errorf("failed to delete previous otp: %w", err))
		}
	}

	code, err := generateCode(s.random, s.length)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	raw, err := json.Marshal(otpRecord{
		Owner:     grant.Owner.String(),
		Email:     grant.Email,
		Code:      code,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode otp: %w", err)
	}
	if err := s.store.SetWithTTL(ctx, key, string(raw), s.ttl); err != nil {
		return "", unavailable(fmt.Errorf("failed to store otp: %w", err))
	}

	s.logger.DebugContext(ctx, "otp issued",
		logger.Purpose(string(purpose)),
		logger.UserID(grant.Owner.String()),
		logger.Component("otp"),
	)
	return code, nil
}

// VerifyAndConsume checks code against the live record. A missing record
// fails with ErrExpired and a wrong code with ErrMismatch, leaving the record
// in place. A match deletes the record with a conditional delete so that
// only one concurrent caller can succeed.
func (s *OTPService) VerifyAndConsume(ctx context.Context, purpose Purpose, subject, code string) (Grant, error) {
	key := purpose.key(subject)

	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, redis.ErrKeyNotFound) {
		return Grant{}, ErrExpired
	}
	if err != nil {
		return Grant{}, unavailable(fmt.Errorf("failed to read otp: %w", err))
	}

	var rec otpRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Grant{}, errors.Join(ErrExpired, fmt.Errorf("failed to decode otp: %w", err))
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		return Grant{}, ErrMismatch
	}

	owner, err := uuid.Parse(rec.Owner)
	if err != nil {
		return Grant{}, errors.Join(ErrExpired, fmt.Errorf("failed to decode otp owner: %w", err))
	}

	deleted, err := s.store.DeleteIfEquals(ctx, key, raw)
	if err != nil {
		return Grant{}, unavailable(fmt.Errorf("failed to consume otp: %w", err))
	}
	if !deleted {
		// another request consumed or replaced the code first
		return Grant{}, ErrExpired
	}

	s.logger.DebugContext(ctx, "otp consumed",
		logger.Purpose(string(purpose)),
		logger.UserID(owner.String()),
		logger.Component("otp"),
	)
	return Grant{Owner: owner, Email: rec.Email}, nil
}

// Revoke drops the live code for (purpose, subject), if any.
func (s *OTPService) Revoke(ctx context.Context, purpose Purpose, subject string) error {
	if err := s.store.Delete(ctx, purpose.key(subject)); err != nil {
		return unavailable(fmt.Errorf("failed to revoke otp: %w", err))
	}
	s.logger.DebugContext(ctx, "otp revoked",
		logger.Purpose(string(purpose)),
		logger.Component("otp"),
	)
	return nil
}

// generateCode draws n characters from otpAlphabet. Bytes above the largest
// multiple of the alphabet size are rejected to keep the distribution uniform.
func generateCode(r io.Reader, n int) (string, error) {
	const limit = 256 - 256%len(otpAlphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, otpAlphabet[int(b)%len(otpAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
