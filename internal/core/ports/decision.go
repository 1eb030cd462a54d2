package ports

import (
	"context"
	"time"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
	"github.com/gatewarden/gatewarden/internal/core/domain/ratelimit"
)

// RateLimiter decides whether an identity/endpoint pair has exceeded
// its quota, counting the request in the process. Storage failure is
// fail-open: the request is reported as not exceeded.
type RateLimiter interface {
	// Check consumes one request against the key's window and reports
	// whether the effective limit is now exceeded, plus the window total.
	Check(ctx context.Context, id access.Identity, endpoint string, limit int, window time.Duration) (exceeded bool, total int)

	// Policy resolves the configured policy for an endpoint name.
	Policy(endpoint string) ratelimit.Policy

	// Reset clears the counting window for a key (administrative).
	Reset(ctx context.Context, id access.Identity, endpoint string) (int64, error)
}

// AccessGuard classifies identities against the lists and escalates
// chronic rate-limit violators into the blacklist.
type AccessGuard interface {
	// Classify returns Blocked, Bypassed(multiplier) or Normal(multiplier).
	// Store failure degrades to Normal(1.0): rate limiting off, no blocking.
	Classify(ctx context.Context, id access.Identity) access.Classification

	// RecordViolation registers a rate-limit violation. When the IP's
	// violation count inside the trailing lookback reaches the threshold,
	// the identity is auto-blacklisted (idempotent upsert).
	RecordViolation(ctx context.Context, id access.Identity, endpoint string)
}

// DecisionEngine is the public entry point: one call per inbound
// request produces one terminal verdict.
type DecisionEngine interface {
	// Decide resolves the endpoint's policy and runs the decision state
	// machine: blacklist, whitelist bypass, then quota.
	Decide(ctx context.Context, id access.Identity, endpoint string) access.Verdict

	// DecideWithLimits runs the same state machine against an explicit
	// base limit and window, bypassing policy lookup.
	DecideWithLimits(ctx context.Context, id access.Identity, endpoint string, limit int, window time.Duration) access.Verdict
}
