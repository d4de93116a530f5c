package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/vibehub/backend/internal/apperrors"
	"github.com/vibehub/backend/internal/cache"
	"github.com/vibehub/backend/internal/observability"
)

// Mailer delivers verification codes. Delivery itself is owned by the
// notification service.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// LogMailer logs that a code was issued instead of sending it.
type LogMailer struct{}

func (LogMailer) SendVerificationCode(ctx context.Context, email, _ string) error {
	observability.LoggerFromContext(ctx).Info("verification code issued", "email", email)
	return nil
}

// VerificationService issues and checks single-use email verification codes.
// Codes live in the cache with a TTL so they survive restarts and expire on
// their own.
type VerificationService struct {
	codes  cache.Cache
	mailer Mailer
	ttl    time.Duration
}

// NewVerificationService creates a new VerificationService instance.
func NewVerificationService(codes cache.Cache, mailer Mailer, ttl time.Duration) *VerificationService {
	return &VerificationService{codes: codes, mailer: mailer, ttl: ttl}
}

// Issue generates a fresh code for email, replacing any earlier one.
func (s *VerificationService) Issue(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	code, err := newCode()
	if err != nil {
		return apperrors.Internal("failed to generate code", err)
	}
	if err := s.codes.Set(ctx, codeKey(email), code, s.ttl); err != nil {
		return apperrors.Internal("failed to store code", err)
	}
	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		return apperrors.Internal("failed to send code", err)
	}
	return nil
}

// Verify checks code for email and consumes it on success.
func (s *VerificationService) Verify(ctx context.Context, email, code string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	stored, err := s.codes.Get(ctx, codeKey(email))
	if errors.Is(err, cache.ErrMiss) {
		return apperrors.InvalidArg("verification code expired or not found")
	}
	if err != nil {
		return apperrors.Internal("failed to read code", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return apperrors.InvalidArg("invalid verification code")
	}

	// only the caller that actually deletes the key wins
	n, err := s.codes.Del(ctx, codeKey(email))
	if err != nil {
		return apperrors.Internal("failed to consume code", err)
	}
	if n == 0 {
		return apperrors.InvalidArg("verification code expired or not found")
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", apperrors.InvalidArg("a valid email is required")
	}
	return strings.ToLower(addr.Address), nil
}

func codeKey(email string) string {
	return "verify:" + email
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
