package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	impl "github.com/gatewarden/gatewarden/internal/application/services"
	"github.com/gatewarden/gatewarden/internal/core/domain/access"
	"github.com/gatewarden/gatewarden/internal/core/domain/audit"
	"github.com/gatewarden/gatewarden/test/mocks"
)

func TestClassify_BlacklistWinsOverWhitelist(t *testing.T) {
	ip := "10.0.0.1"
	lists := &mocks.ListStoreMock{
		FindBlacklistFn: func(ctx context.Context, gotIP string, principal *uuid.UUID, now time.Time) (*access.BlacklistEntry, error) {
			return &access.BlacklistEntry{IPAddress: &gotIP, TargetType: access.TargetIP, Reason: access.ReasonManual, IsActive: true}, nil
		},
		FindWhitelistFn: func(ctx context.Context, gotIP string, principal *uuid.UUID, now time.Time) (*access.WhitelistEntry, error) {
			t.Fatal("whitelist must not be consulted for a blacklisted identity")
			return nil, nil
		},
	}
	svc := impl.NewAccessGuardService(lists, &mocks.ViolationCounterMock{}, nil, nil, nil, nil, nil)

	class := svc.Classify(context.Background(), access.NewIdentity(ip))
	if class.State != access.ClassBlocked {
		t.Fatalf("expected blocked, got %s", class.State)
	}
}

func TestClassify_WhitelistBypass(t *testing.T) {
	lists := &mocks.ListStoreMock{
		FindWhitelistFn: func(ctx context.Context, ip string, principal *uuid.UUID, now time.Time) (*access.WhitelistEntry, error) {
			return &access.WhitelistEntry{BypassRateLimits: true, CustomRateMultiplier: 1.0, IsActive: true}, nil
		},
	}
	svc := impl.NewAccessGuardService(lists, &mocks.ViolationCounterMock{}, nil, nil, nil, nil, nil)

	class := svc.Classify(context.Background(), access.NewIdentity("10.0.0.1"))
	if class.State != access.ClassBypassed {
		t.Fatalf("expected bypassed, got %s", class.State)
	}
}

func TestClassify_WhitelistMultiplierWithoutBypass(t *testing.T) {
	lists := &mocks.ListStoreMock{
		FindWhitelistFn: func(ctx context.Context, ip string, principal *uuid.UUID, now time.Time) (*access.WhitelistEntry, error) {
			return &access.WhitelistEntry{BypassRateLimits: false, CustomRateMultiplier: 2.0, IsActive: true}, nil
		},
	}
	svc := impl.NewAccessGuardService(lists, &mocks.ViolationCounterMock{}, nil, nil, nil, nil, nil)

	class := svc.Classify(context.Background(), access.NewIdentity("10.0.0.1"))
	if class.State != access.ClassNormal {
		t.Fatalf("expected normal, got %s", class.State)
	}
	if class.Multiplier != 2.0 {
		t.Fatalf("expected multiplier 2.0, got %v", class.Multiplier)
	}
}

func TestClassify_StoreErrorDegradesToNormal(t *testing.T) {
	lists := &mocks.ListStoreMock{
		FindBlacklistFn: func(ctx context.Context, ip string, principal *uuid.UUID, now time.Time) (*access.BlacklistEntry, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := impl.NewAccessGuardService(lists, &mocks.ViolationCounterMock{}, nil, nil, nil, nil, nil)

	class := svc.Classify(context.Background(), access.NewIdentity("10.0.0.1"))
	if class.State != access.ClassNormal || class.Multiplier != 1.0 {
		t.Fatalf("expected Normal(1.0) on store failure, got %+v", class)
	}
}

func TestRecordViolation_BelowThresholdDoesNotEscalate(t *testing.T) {
	lists := &mocks.ListStoreMock{
		UpsertBlacklistFn: func(ctx context.Context, req *access.UpsertBlacklistRequest, now time.Time) (*access.BlacklistEntry, error) {
			t.Fatal("must not blacklist below the threshold")
			return nil, nil
		},
	}
	counter := &mocks.ViolationCounterMock{
		RecordAndCountFn: func(ctx context.Context, ip string, principal *uuid.UUID, window time.Duration, now time.Time) (int, error) {
			return 4, nil
		},
	}
	svc := impl.NewAccessGuardService(lists, counter, nil, nil, nil, nil, nil)

	svc.RecordViolation(context.Background(), access.NewIdentity("10.0.0.1"), "login_rate")
}

func TestRecordViolation_ThresholdTriggersAutoBlacklist(t *testing.T) {
	var upserted *access.UpsertBlacklistRequest
	expires := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	lists := &mocks.ListStoreMock{
		UpsertBlacklistFn: func(ctx context.Context, req *access.UpsertBlacklistRequest, now time.Time) (*access.BlacklistEntry, error) {
			upserted = req
			return &access.BlacklistEntry{IPAddress: &req.IPAddress, Reason: req.Reason, ExpiresAt: &expires, ViolationCount: 1, CreatedBy: req.CreatedBy, IsActive: true}, nil
		},
	}
	counter := &mocks.ViolationCounterMock{
		RecordAndCountFn: func(ctx context.Context, ip string, principal *uuid.UUID, window time.Duration, now time.Time) (int, error) {
			return 5, nil
		},
	}
	var recordedKind audit.EventKind
	auditSvc := &mocks.AuditServiceMock{
		RecordEventFn: func(ctx context.Context, req *audit.RecordEventRequest) error {
			recordedKind = req.Kind
			return nil
		},
	}
	alerted := false
	alerts := &mocks.AlertServiceMock{
		SendEscalationAlertFn: func(ctx context.Context, entry *access.BlacklistEntry) error {
			alerted = true
			return nil
		},
	}
	svc := impl.NewAccessGuardService(lists, counter, auditSvc, alerts, nil, nil, nil)

	svc.RecordViolation(context.Background(), access.NewIdentity("10.0.0.1"), "login_rate")

	if upserted == nil {
		t.Fatal("expected an auto-blacklist upsert")
	}
	if upserted.IPAddress != "10.0.0.1" {
		t.Fatalf("unexpected ip: %s", upserted.IPAddress)
	}
	if upserted.Reason != access.ReasonRateLimitAbuse {
		t.Fatalf("expected rate_limit_abuse reason, got %s", upserted.Reason)
	}
	if upserted.CreatedBy != access.CreatedBySystem {
		t.Fatalf("expected system creator, got %s", upserted.CreatedBy)
	}
	if upserted.Duration == nil || *upserted.Duration != 24*time.Hour {
		t.Fatalf("expected 24h duration, got %v", upserted.Duration)
	}
	if recordedKind != audit.EventAutoBlacklist {
		t.Fatalf("expected auto_blacklist event, got %s", recordedKind)
	}
	if !alerted {
		t.Fatal("expected an escalation alert")
	}
}

func TestRecordViolation_CounterErrorSkipsEscalation(t *testing.T) {
	lists := &mocks.ListStoreMock{
		UpsertBlacklistFn: func(ctx context.Context, req *access.UpsertBlacklistRequest, now time.Time) (*access.BlacklistEntry, error) {
			t.Fatal("must not blacklist when the counter fails")
			return nil, nil
		},
	}
	counter := &mocks.ViolationCounterMock{
		RecordAndCountFn: func(ctx context.Context, ip string, principal *uuid.UUID, window time.Duration, now time.Time) (int, error) {
			return 0, errors.New("redis down")
		},
	}
	svc := impl.NewAccessGuardService(lists, counter, nil, nil, nil, nil, nil)

	svc.RecordViolation(context.Background(), access.NewIdentity("10.0.0.1"), "login_rate")
}

func TestAddToBlacklist_ValidatesRequest(t *testing.T) {
	svc := impl.NewAccessGuardService(&mocks.ListStoreMock{}, &mocks.ViolationCounterMock{}, nil, nil, nil, nil, nil)

	_, err := svc.AddToBlacklist(context.Background(), &access.UpsertBlacklistRequest{})
	if !errors.Is(err, access.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	bad := -time.Hour
	_, err = svc.AddToBlacklist(context.Background(), &access.UpsertBlacklistRequest{IPAddress: "10.0.0.1", Duration: &bad})
	if !errors.Is(err, access.ErrValidation) {
		t.Fatalf("expected validation error for negative duration, got %v", err)
	}
}

func TestAddToWhitelist_RejectsNonPositiveMultiplier(t *testing.T) {
	svc := impl.NewAccessGuardService(&mocks.ListStoreMock{}, &mocks.ViolationCounterMock{}, nil, nil, nil, nil, nil)

	zero := 0.0
	_, err := svc.AddToWhitelist(context.Background(), &access.UpsertWhitelistRequest{IPAddress: "10.0.0.1", CustomRateMultiplier: &zero})
	if !errors.Is(err, access.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecordViolation_RepeatEscalationExtendsEntry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &steppedClock{t: now}
	lists := mocks.NewListStoreFake()
	violations := 4
	counter := &mocks.ViolationCounterMock{
		RecordAndCountFn: func(ctx context.Context, ip string, principal *uuid.UUID, window time.Duration, now time.Time) (int, error) {
			violations++
			return violations, nil
		},
	}
	svc := impl.NewAccessGuardService(lists, counter, nil, nil, clock, nil, nil)
	id := access.NewIdentity("10.0.0.1")

	svc.RecordViolation(context.Background(), id, "login_rate")
	clock.t = now.Add(10 * time.Minute)
	svc.RecordViolation(context.Background(), id, "login_rate")

	if got := lists.ActiveBlacklistCount(); got != 1 {
		t.Fatalf("repeat escalation must reuse the entry, got %d active entries", got)
	}
	entry, err := lists.FindBlacklist(context.Background(), "10.0.0.1", nil, clock.t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry == nil {
		t.Fatal("expected the auto-blacklist entry to be present")
	}
	if entry.ViolationCount != 2 {
		t.Fatalf("expected violation count 2, got %d", entry.ViolationCount)
	}
	wantExpiry := clock.t.Add(24 * time.Hour)
	if entry.ExpiresAt == nil || !entry.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected expiry refreshed to %v, got %v", wantExpiry, entry.ExpiresAt)
	}
}

func TestAddToBlacklist_RepeatUpsertRefreshesEntry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &steppedClock{t: now}
	lists := mocks.NewListStoreFake()
	svc := impl.NewAccessGuardService(lists, &mocks.ViolationCounterMock{}, nil, nil, clock, nil, nil)

	duration := time.Hour
	first, err := svc.AddToBlacklist(context.Background(), &access.UpsertBlacklistRequest{IPAddress: "10.0.0.1", Reason: access.ReasonManual, Duration: &duration})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock.t = now.Add(30 * time.Minute)
	second, err := svc.AddToBlacklist(context.Background(), &access.UpsertBlacklistRequest{IPAddress: "10.0.0.1", Reason: access.ReasonManual, Duration: &duration})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := lists.ActiveBlacklistCount(); got != 1 {
		t.Fatalf("re-adding the same target must not duplicate, got %d active entries", got)
	}
	if second.ID != first.ID {
		t.Fatal("expected the same logical entry on repeat upsert")
	}
	if second.ViolationCount != 2 {
		t.Fatalf("expected violation count 2, got %d", second.ViolationCount)
	}
	wantExpiry := clock.t.Add(duration)
	if second.ExpiresAt == nil || !second.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected expiry refreshed to %v, got %v", wantExpiry, second.ExpiresAt)
	}
}

func TestRemoveFromLists_BothFieldsNarrowTheMatch(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lists := mocks.NewListStoreFake()
	svc := impl.NewAccessGuardService(lists, &mocks.ViolationCounterMock{}, nil, nil, fixedClock(now), nil, nil)

	principal := uuid.New()
	if _, err := svc.AddToBlacklist(context.Background(), &access.UpsertBlacklistRequest{IPAddress: "10.0.0.1", Reason: access.ReasonManual}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddToBlacklist(context.Background(), &access.UpsertBlacklistRequest{IPAddress: "10.0.0.1", PrincipalID: &principal, Reason: access.ReasonManual}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	affected, err := svc.RemoveFromLists(context.Background(), access.NewPrincipalIdentity("10.0.0.1", principal))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected only the (ip, principal) entry deactivated, got %d", affected)
	}

	entry, err := lists.FindBlacklist(context.Background(), "10.0.0.1", nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry == nil {
		t.Fatal("the ip-only entry must survive a narrower removal")
	}
}

func TestRemoveFromLists_RequiresTarget(t *testing.T) {
	svc := impl.NewAccessGuardService(&mocks.ListStoreMock{}, &mocks.ViolationCounterMock{}, nil, nil, nil, nil, nil)

	_, err := svc.RemoveFromLists(context.Background(), access.Identity{})
	if !errors.Is(err, access.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
