// Package ratelimit implements sliding-window counter policies on top of
// the cache facade. A policy bounds how often a subject (an email, a device
// fingerprint, a student id) may perform an action within a rolling window.
//
// Counters are incremented atomically on both backends, so concurrent
// requests for the same subject can never under-count. Every increment
// refreshes the window's expiry: a subject that keeps hammering keeps its
// counter alive, which is the sliding-window behavior the policies want.
package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lernwerk/resilient-cache/pkg/cache"
	"github.com/lernwerk/resilient-cache/pkg/logging"
)

// Policy names a limit over a rolling window. The policy name is the key
// prefix, per the collaborator key convention.
type Policy struct {
	Name   string
	Limit  int64
	Window time.Duration
}

// Key returns the counter key for subject under this policy.
func (p Policy) Key(subject string) string {
	return p.Name + ":" + subject
}

// Standard policies used by the platform's collaborators.
var (
	// OTPRequests bounds verification-code requests per email address.
	OTPRequests = Policy{Name: "otp_limit", Limit: 5, Window: time.Hour}

	// LoginAttempts bounds login attempts per device fingerprint.
	LoginAttempts = Policy{Name: "login_limit", Limit: 10, Window: 15 * time.Minute}

	// DailyMessages bounds messages per student per day.
	DailyMessages = Policy{Name: "msg_limit", Limit: 20, Window: 24 * time.Hour}
)

// Limiter enforces one policy. It has no knowledge of which backend serves
// its counters.
type Limiter struct {
	cache  *cache.Facade
	policy Policy
	logger zerolog.Logger
}

// NewLimiter creates a limiter for policy on top of the facade.
func NewLimiter(c *cache.Facade, policy Policy) *Limiter {
	return &Limiter{
		cache:  c,
		policy: policy,
		logger: logging.NewLogger("ratelimit"),
	}
}

// Allow records one attempt for subject and reports whether it stays within
// the policy's limit. Rejected attempts still extend the window, so a
// subject over the limit does not regain budget while it keeps trying.
func (l *Limiter) Allow(ctx context.Context, subject string) bool {
	count := l.cache.IncrementWithExpiry(ctx, l.policy.Key(subject), l.policy.Window)

	if count > l.policy.Limit {
		limiterRejected.WithLabelValues(l.policy.Name).Inc()
		l.logger.Warn().
			Str("policy", l.policy.Name).
			Str("subject", subject).
			Int64("count", count).
			Int64("limit", l.policy.Limit).
			Msg("Rate limit exceeded")
		return false
	}

	limiterAllowed.WithLabelValues(l.policy.Name).Inc()
	return true
}

// Reset clears the counter for subject, reopening its window immediately.
func (l *Limiter) Reset(ctx context.Context, subject string) {
	l.cache.Delete(ctx, l.policy.Key(subject))
}
