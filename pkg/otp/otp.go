// Package otp implements issue-and-consume one-time verification codes on
// top of the cache facade. A code is valid for exactly one successful
// verification: the matching key is deleted unconditionally before success
// is reported, so a replayed code can never verify twice.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"

	"github.com/lernwerk/resilient-cache/pkg/cache"
	"github.com/lernwerk/resilient-cache/pkg/logging"
)

var (
	// ErrCodeExpired means no code is stored for the subject: it was never
	// issued, has expired, or was already consumed.
	ErrCodeExpired = errors.New("otp: code expired or unknown")

	// ErrCodeMismatch means a code is stored but the presented one differs.
	// The stored code stays valid until its TTL lapses.
	ErrCodeMismatch = errors.New("otp: code mismatch")
)

// Config holds the OTP policy parameters.
type Config struct {
	// CodeLength is the fixed width of the numeric code.
	CodeLength int

	// TTL is the validity window of an issued code.
	TTL time.Duration
}

// DefaultConfig returns six-digit codes valid for ten minutes.
func DefaultConfig() Config {
	return Config{
		CodeLength: 6,
		TTL:        10 * time.Minute,
	}
}

// Service issues and verifies one-time codes. It has no knowledge of which
// backend serves it.
type Service struct {
	cache  *cache.Facade
	cfg    Config
	logger zerolog.Logger
}

// NewService creates an OTP service on top of the facade.
func NewService(c *cache.Facade, cfg Config) *Service {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 6
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	return &Service{
		cache:  c,
		cfg:    cfg,
		logger: logging.NewLogger("otp"),
	}
}

// Issue generates a fresh code for subject and stores it under the OTP key
// with the configured TTL. Issuing again overwrites any earlier code.
func (s *Service) Issue(ctx context.Context, subject string) (string, error) {
	code, err := generateCode(s.cfg.CodeLength)
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}

	s.cache.SetWithExpiry(ctx, cache.OTPKey(subject), s.cfg.TTL, code)

	s.logger.Debug().
		Str("subject", subject).
		Dur("ttl", s.cfg.TTL).
		Msg("Issued one-time code")

	return code, nil
}

// Verify consumes the code stored for subject. On a match the key is
// deleted before success is returned; an immediate replay of the same code
// fails with ErrCodeExpired.
func (s *Service) Verify(ctx context.Context, subject, code string) error {
	key := cache.OTPKey(subject)

	stored, ok := s.cache.Get(ctx, key)
	if !ok {
		return ErrCodeExpired
	}
	if stored != code {
		s.logger.Debug().Str("subject", subject).Msg("One-time code mismatch")
		return ErrCodeMismatch
	}

	s.cache.Delete(ctx, key)

	s.logger.Info().Str("subject", subject).Msg("One-time code consumed")
	return nil
}

// generateCode returns a fixed-width numeric code of the given length,
// left-padded with zeros.
func generateCode(length int) (string, error) {
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
