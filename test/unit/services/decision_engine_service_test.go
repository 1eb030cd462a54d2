package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	impl "github.com/gatewarden/gatewarden/internal/application/services"
	"github.com/gatewarden/gatewarden/internal/core/domain/access"
	"github.com/gatewarden/gatewarden/internal/core/domain/audit"
	"github.com/gatewarden/gatewarden/internal/core/domain/ratelimit"
	"github.com/gatewarden/gatewarden/test/mocks"
)

func TestDecide_BlacklistedNeverReachesCounter(t *testing.T) {
	guard := &mocks.AccessGuardMock{
		ClassifyFn: func(ctx context.Context, id access.Identity) access.Classification {
			return access.Blocked()
		},
	}
	limiter := &mocks.RateLimiterMock{
		CheckFn: func(ctx context.Context, id access.Identity, endpoint string, limit int, window time.Duration) (bool, int) {
			t.Fatal("a blacklisted identity must not be counted")
			return false, 0
		},
	}
	var recordedKind audit.EventKind
	auditSvc := &mocks.AuditServiceMock{
		RecordEventFn: func(ctx context.Context, req *audit.RecordEventRequest) error {
			recordedKind = req.Kind
			return nil
		},
	}
	engine := impl.NewDecisionEngineService(guard, limiter, auditSvc, nil)

	verdict := engine.Decide(context.Background(), access.NewIdentity("10.0.0.1"), ratelimit.EndpointLogin)
	if verdict != access.VerdictBlacklisted {
		t.Fatalf("expected blacklisted, got %s", verdict)
	}
	if recordedKind != audit.EventBlacklistHit {
		t.Fatalf("expected blacklist_hit event, got %s", recordedKind)
	}
}

func TestDecide_BypassedIsNeverCounted(t *testing.T) {
	guard := &mocks.AccessGuardMock{
		ClassifyFn: func(ctx context.Context, id access.Identity) access.Classification {
			return access.Bypassed(1.0)
		},
	}
	limiter := &mocks.RateLimiterMock{
		CheckFn: func(ctx context.Context, id access.Identity, endpoint string, limit int, window time.Duration) (bool, int) {
			t.Fatal("a bypassed identity must not be counted")
			return false, 0
		},
	}
	engine := impl.NewDecisionEngineService(guard, limiter, nil, nil)

	verdict := engine.Decide(context.Background(), access.NewIdentity("10.0.0.1"), ratelimit.EndpointLogin)
	if verdict != access.VerdictAllow {
		t.Fatalf("expected allow, got %s", verdict)
	}
}

func TestDecide_MultiplierWidensEffectiveLimit(t *testing.T) {
	guard := &mocks.AccessGuardMock{
		ClassifyFn: func(ctx context.Context, id access.Identity) access.Classification {
			return access.Normal(2.0)
		},
	}
	var gotLimit int
	limiter := &mocks.RateLimiterMock{
		PolicyFn: func(endpoint string) ratelimit.Policy {
			return ratelimit.Policy{Limit: 10, Window: time.Minute}
		},
		CheckFn: func(ctx context.Context, id access.Identity, endpoint string, limit int, window time.Duration) (bool, int) {
			gotLimit = limit
			return false, 1
		},
	}
	engine := impl.NewDecisionEngineService(guard, limiter, nil, nil)

	verdict := engine.Decide(context.Background(), access.NewIdentity("10.0.0.1"), ratelimit.EndpointAPIGeneral)
	if verdict != access.VerdictAllow {
		t.Fatalf("expected allow, got %s", verdict)
	}
	if gotLimit != 20 {
		t.Fatalf("expected effective limit 20, got %d", gotLimit)
	}
}

func TestDecide_FractionalMultiplierFloorsLimit(t *testing.T) {
	guard := &mocks.AccessGuardMock{
		ClassifyFn: func(ctx context.Context, id access.Identity) access.Classification {
			return access.Normal(0.5)
		},
	}
	var gotLimit int
	limiter := &mocks.RateLimiterMock{
		CheckFn: func(ctx context.Context, id access.Identity, endpoint string, limit int, window time.Duration) (bool, int) {
			gotLimit = limit
			return false, 1
		},
	}
	engine := impl.NewDecisionEngineService(guard, limiter, nil, nil)

	engine.DecideWithLimits(context.Background(), access.NewIdentity("10.0.0.1"), ratelimit.EndpointLogin, 5, time.Minute)
	if gotLimit != 2 {
		t.Fatalf("expected floored limit 2, got %d", gotLimit)
	}
}

func TestDecide_ExceededRecordsViolation(t *testing.T) {
	guard := &mocks.AccessGuardMock{}
	violated := false
	guard.RecordViolationFn = func(ctx context.Context, id access.Identity, endpoint string) {
		violated = true
	}
	limiter := &mocks.RateLimiterMock{
		CheckFn: func(ctx context.Context, id access.Identity, endpoint string, limit int, window time.Duration) (bool, int) {
			return true, 6
		},
	}
	var recordedKind audit.EventKind
	auditSvc := &mocks.AuditServiceMock{
		RecordEventFn: func(ctx context.Context, req *audit.RecordEventRequest) error {
			recordedKind = req.Kind
			return nil
		},
	}
	engine := impl.NewDecisionEngineService(guard, limiter, auditSvc, nil)

	verdict := engine.DecideWithLimits(context.Background(), access.NewIdentity("10.0.0.1"), ratelimit.EndpointLogin, 5, time.Minute)
	if verdict != access.VerdictRateLimited {
		t.Fatalf("expected rate_limited, got %s", verdict)
	}
	if !violated {
		t.Fatal("expected the violation to be recorded")
	}
	if recordedKind != audit.EventRateLimited {
		t.Fatalf("expected rate_limited event, got %s", recordedKind)
	}
}

func TestDecide_WithinLimitAllows(t *testing.T) {
	guard := &mocks.AccessGuardMock{}
	guard.RecordViolationFn = func(ctx context.Context, id access.Identity, endpoint string) {
		t.Fatal("allowed requests must not record violations")
	}
	limiter := &mocks.RateLimiterMock{
		CheckFn: func(ctx context.Context, id access.Identity, endpoint string, limit int, window time.Duration) (bool, int) {
			return false, 3
		},
	}
	engine := impl.NewDecisionEngineService(guard, limiter, nil, nil)

	verdict := engine.DecideWithLimits(context.Background(), access.NewIdentity("10.0.0.1"), ratelimit.EndpointLogin, 5, time.Minute)
	if verdict != access.VerdictAllow {
		t.Fatalf("expected allow, got %s", verdict)
	}
}

func TestDecide_EndToEndEscalation(t *testing.T) {
	// Full path with real services: exceeding the limit repeatedly
	// escalates into an automatic blacklist entry, after which the
	// verdict flips from rate_limited to blacklisted.
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &steppedClock{t: now}

	store := mocks.NewWindowStoreFake()
	lists := mocks.NewListStoreFake()
	counter := &countingViolationCounter{}

	guard := impl.NewAccessGuardService(lists, counter, nil, nil, clock, nil, nil)
	limiter := impl.NewRateLimiterService(store, nil, clock, nil)
	engine := impl.NewDecisionEngineService(guard, limiter, nil, nil)

	id := access.NewIdentity("10.0.0.9")

	// Limit 2: requests 3..7 are violations; the 5th violation escalates.
	for i := 0; i < 7; i++ {
		engine.DecideWithLimits(context.Background(), id, ratelimit.EndpointAPIGeneral, 2, time.Hour)
	}
	if lists.ActiveBlacklistCount() != 1 {
		t.Fatalf("expected one blacklist entry after 5 violations, got %d", lists.ActiveBlacklistCount())
	}
	if counter.count < 5 {
		t.Fatalf("expected at least 5 violations, got %d", counter.count)
	}

	verdict := engine.DecideWithLimits(context.Background(), id, ratelimit.EndpointAPIGeneral, 2, time.Hour)
	if verdict != access.VerdictBlacklisted {
		t.Fatalf("expected blacklisted after escalation, got %s", verdict)
	}
}

// countingViolationCounter increments on every call, ignoring the window.
type countingViolationCounter struct {
	count int
}

func (c *countingViolationCounter) RecordAndCount(ctx context.Context, ip string, principal *uuid.UUID, window time.Duration, now time.Time) (int, error) {
	c.count++
	return c.count, nil
}
