// Package ratelimit implements a store-counted sliding-window limiter for
// lead submissions.
package ratelimit

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Policy decides what happens when the underlying store errors: FailOpen
// admits the request (availability first), FailClosed rejects it.
type Policy int

const (
	FailOpen Policy = iota
	FailClosed
)

// PolicyFromString maps a config value to a Policy, defaulting to FailOpen.
func PolicyFromString(s string) Policy {
	if s == "fail_closed" {
		return FailClosed
	}
	return FailOpen
}

// Store counts and records timestamped requests per identifier.
type Store interface {
	CountSince(ctx context.Context, identifier string, since time.Time) (int, error)
	Record(ctx context.Context, identifier string, at time.Time) error
}

// Result reports the limiter's decision.
type Result struct {
	Allowed   bool
	Remaining int
}

type Limiter struct {
	store  Store
	max    int
	window time.Duration
	policy Policy
	logger *zap.Logger
	now    func() time.Time
}

func NewLimiter(store Store, max int, window time.Duration, policy Policy, logger *zap.Logger) *Limiter {
	return &Limiter{
		store:  store,
		max:    max,
		window: window,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Check counts prior requests from the identifier inside the trailing window
// and records this one when admitted.
func (l *Limiter) Check(ctx context.Context, identifier string) Result {
	now := l.now()

	count, err := l.store.CountSince(ctx, identifier, now.Add(-l.window))
	if err != nil {
		l.logger.Warn("Rate limit count failed",
			zap.String("identifier", identifier),
			zap.String("policy", l.policyName()),
			zap.Error(err))
		return Result{Allowed: l.policy == FailOpen, Remaining: 0}
	}

	if count >= l.max {
		return Result{Allowed: false, Remaining: 0}
	}

	if err := l.store.Record(ctx, identifier, now); err != nil {
		// The request was already admitted; a lost record only loosens
		// the window.
		l.logger.Warn("Rate limit record failed",
			zap.String("identifier", identifier),
			zap.Error(err))
	}

	return Result{Allowed: true, Remaining: l.max - count - 1}
}

func (l *Limiter) policyName() string {
	if l.policy == FailClosed {
		return "fail_closed"
	}
	return "fail_open"
}

// ClientIdentifier derives the limiter key from the request: the trusted
// proxy client-IP header first, then the first forwarded-for hop, then the
// request host.
func ClientIdentifier(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	return r.Host
}
