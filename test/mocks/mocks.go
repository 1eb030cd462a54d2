package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
	"github.com/gatewarden/gatewarden/internal/core/domain/audit"
	"github.com/gatewarden/gatewarden/internal/core/domain/ratelimit"
	"github.com/gatewarden/gatewarden/internal/core/ports"
)

// ListStoreMock is a lightweight mock for ListStore
type ListStoreMock struct {
	FindBlacklistFn   func(ctx context.Context, ip string, principal *uuid.UUID, now time.Time) (*access.BlacklistEntry, error)
	FindWhitelistFn   func(ctx context.Context, ip string, principal *uuid.UUID, now time.Time) (*access.WhitelistEntry, error)
	UpsertBlacklistFn func(ctx context.Context, req *access.UpsertBlacklistRequest, now time.Time) (*access.BlacklistEntry, error)
	UpsertWhitelistFn func(ctx context.Context, req *access.UpsertWhitelistRequest, now time.Time) (*access.WhitelistEntry, error)
	DeactivateFn      func(ctx context.Context, ip string, principal *uuid.UUID) (int64, error)
}

func (m *ListStoreMock) FindBlacklist(ctx context.Context, ip string, principal *uuid.UUID, now time.Time) (*access.BlacklistEntry, error) {
	if m.FindBlacklistFn != nil {
		return m.FindBlacklistFn(ctx, ip, principal, now)
	}
	return nil, nil
}
func (m *ListStoreMock) FindWhitelist(ctx context.Context, ip string, principal *uuid.UUID, now time.Time) (*access.WhitelistEntry, error) {
	if m.FindWhitelistFn != nil {
		return m.FindWhitelistFn(ctx, ip, principal, now)
	}
	return nil, nil
}
func (m *ListStoreMock) UpsertBlacklist(ctx context.Context, req *access.UpsertBlacklistRequest, now time.Time) (*access.BlacklistEntry, error) {
	if m.UpsertBlacklistFn != nil {
		return m.UpsertBlacklistFn(ctx, req, now)
	}
	return &access.BlacklistEntry{}, nil
}
func (m *ListStoreMock) UpsertWhitelist(ctx context.Context, req *access.UpsertWhitelistRequest, now time.Time) (*access.WhitelistEntry, error) {
	if m.UpsertWhitelistFn != nil {
		return m.UpsertWhitelistFn(ctx, req, now)
	}
	return &access.WhitelistEntry{}, nil
}
func (m *ListStoreMock) Deactivate(ctx context.Context, ip string, principal *uuid.UUID) (int64, error) {
	if m.DeactivateFn != nil {
		return m.DeactivateFn(ctx, ip, principal)
	}
	return 0, nil
}

// WindowStoreMock is a lightweight mock for WindowStore
type WindowStoreMock struct {
	CheckAndIncrementFn  func(ctx context.Context, key ratelimit.WindowKey, limit int, window time.Duration, now time.Time) (bool, int, error)
	CountRecentWindowsFn func(ctx context.Context, ip string, since time.Time) (int, error)
	ResetFn              func(ctx context.Context, key ratelimit.WindowKey) (int64, error)
	PurgeFn              func(ctx context.Context, olderThan time.Time) (int64, error)
}

func (m *WindowStoreMock) CheckAndIncrement(ctx context.Context, key ratelimit.WindowKey, limit int, window time.Duration, now time.Time) (bool, int, error) {
	if m.CheckAndIncrementFn != nil {
		return m.CheckAndIncrementFn(ctx, key, limit, window, now)
	}
	return false, 1, nil
}
func (m *WindowStoreMock) CountRecentWindows(ctx context.Context, ip string, since time.Time) (int, error) {
	if m.CountRecentWindowsFn != nil {
		return m.CountRecentWindowsFn(ctx, ip, since)
	}
	return 0, nil
}
func (m *WindowStoreMock) Reset(ctx context.Context, key ratelimit.WindowKey) (int64, error) {
	if m.ResetFn != nil {
		return m.ResetFn(ctx, key)
	}
	return 0, nil
}
func (m *WindowStoreMock) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	if m.PurgeFn != nil {
		return m.PurgeFn(ctx, olderThan)
	}
	return 0, nil
}

// ViolationCounterMock is a lightweight mock for ViolationCounter
type ViolationCounterMock struct {
	RecordAndCountFn func(ctx context.Context, ip string, principal *uuid.UUID, window time.Duration, now time.Time) (int, error)
}

func (m *ViolationCounterMock) RecordAndCount(ctx context.Context, ip string, principal *uuid.UUID, window time.Duration, now time.Time) (int, error) {
	if m.RecordAndCountFn != nil {
		return m.RecordAndCountFn(ctx, ip, principal, window, now)
	}
	return 1, nil
}

// AlertServiceMock is a lightweight mock for AlertService
type AlertServiceMock struct {
	SendEscalationAlertFn func(ctx context.Context, entry *access.BlacklistEntry) error
}

func (m *AlertServiceMock) SendEscalationAlert(ctx context.Context, entry *access.BlacklistEntry) error {
	if m.SendEscalationAlertFn != nil {
		return m.SendEscalationAlertFn(ctx, entry)
	}
	return nil
}

// EventRepositoryMock is a lightweight mock for EventRepository
type EventRepositoryMock struct {
	CreateFn func(ctx context.Context, event *audit.DecisionEvent) error
	ListFn   func(ctx context.Context, filter *audit.EventFilter) ([]*audit.DecisionEvent, error)
	CountFn  func(ctx context.Context, filter *audit.EventFilter) (int, error)
}

func (m *EventRepositoryMock) Create(ctx context.Context, event *audit.DecisionEvent) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, event)
	}
	return nil
}
func (m *EventRepositoryMock) List(ctx context.Context, filter *audit.EventFilter) ([]*audit.DecisionEvent, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return nil, nil
}
func (m *EventRepositoryMock) Count(ctx context.Context, filter *audit.EventFilter) (int, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx, filter)
	}
	return 0, nil
}

// AuditServiceMock is a lightweight mock for AuditService
type AuditServiceMock struct {
	RecordEventFn func(ctx context.Context, req *audit.RecordEventRequest) error
	GetEventsFn   func(ctx context.Context, filter *audit.EventFilter) ([]*audit.DecisionEvent, int, error)
}

func (m *AuditServiceMock) RecordEvent(ctx context.Context, req *audit.RecordEventRequest) error {
	if m.RecordEventFn != nil {
		return m.RecordEventFn(ctx, req)
	}
	return nil
}
func (m *AuditServiceMock) GetEvents(ctx context.Context, filter *audit.EventFilter) ([]*audit.DecisionEvent, int, error) {
	if m.GetEventsFn != nil {
		return m.GetEventsFn(ctx, filter)
	}
	return nil, 0, nil
}

// AccessGuardMock is a lightweight mock for AccessGuard
type AccessGuardMock struct {
	ClassifyFn        func(ctx context.Context, id access.Identity) access.Classification
	RecordViolationFn func(ctx context.Context, id access.Identity, endpoint string)
}

func (m *AccessGuardMock) Classify(ctx context.Context, id access.Identity) access.Classification {
	if m.ClassifyFn != nil {
		return m.ClassifyFn(ctx, id)
	}
	return access.Normal(1.0)
}
func (m *AccessGuardMock) RecordViolation(ctx context.Context, id access.Identity, endpoint string) {
	if m.RecordViolationFn != nil {
		m.RecordViolationFn(ctx, id, endpoint)
	}
}

// RateLimiterMock is a lightweight mock for RateLimiter
type RateLimiterMock struct {
	CheckFn  func(ctx context.Context, id access.Identity, endpoint string, limit int, window time.Duration) (bool, int)
	PolicyFn func(endpoint string) ratelimit.Policy
	ResetFn  func(ctx context.Context, id access.Identity, endpoint string) (int64, error)
}

func (m *RateLimiterMock) Check(ctx context.Context, id access.Identity, endpoint string, limit int, window time.Duration) (bool, int) {
	if m.CheckFn != nil {
		return m.CheckFn(ctx, id, endpoint, limit, window)
	}
	return false, 1
}
func (m *RateLimiterMock) Policy(endpoint string) ratelimit.Policy {
	if m.PolicyFn != nil {
		return m.PolicyFn(endpoint)
	}
	return ratelimit.DefaultPolicy
}
func (m *RateLimiterMock) Reset(ctx context.Context, id access.Identity, endpoint string) (int64, error) {
	if m.ResetFn != nil {
		return m.ResetFn(ctx, id, endpoint)
	}
	return 0, nil
}

// DecisionEngineMock is a lightweight mock for DecisionEngine
type DecisionEngineMock struct {
	DecideFn           func(ctx context.Context, id access.Identity, endpoint string) access.Verdict
	DecideWithLimitsFn func(ctx context.Context, id access.Identity, endpoint string, limit int, window time.Duration) access.Verdict
}

func (m *DecisionEngineMock) Decide(ctx context.Context, id access.Identity, endpoint string) access.Verdict {
	if m.DecideFn != nil {
		return m.DecideFn(ctx, id, endpoint)
	}
	return access.VerdictAllow
}
func (m *DecisionEngineMock) DecideWithLimits(ctx context.Context, id access.Identity, endpoint string, limit int, window time.Duration) access.Verdict {
	if m.DecideWithLimitsFn != nil {
		return m.DecideWithLimitsFn(ctx, id, endpoint, limit, window)
	}
	return access.VerdictAllow
}

// ReportServiceMock is a lightweight mock for ReportService
type ReportServiceMock struct {
	GetWindowsFn   func(ctx context.Context, filter *ratelimit.WindowFilter, page ports.PageRequest) ([]*ratelimit.RateWindow, *ports.Pagination, *ratelimit.WindowStats, error)
	GetBlacklistFn func(ctx context.Context, filter *access.BlacklistFilter, page ports.PageRequest) ([]*access.BlacklistEntry, *ports.Pagination, *access.BlacklistStats, error)
	GetWhitelistFn func(ctx context.Context, filter *access.WhitelistFilter, page ports.PageRequest) ([]*access.WhitelistEntry, *ports.Pagination, *access.WhitelistStats, error)
	GetEventsFn    func(ctx context.Context, filter *audit.EventFilter, page ports.PageRequest) ([]*audit.DecisionEvent, *ports.Pagination, error)
}

func (m *ReportServiceMock) GetWindows(ctx context.Context, filter *ratelimit.WindowFilter, page ports.PageRequest) ([]*ratelimit.RateWindow, *ports.Pagination, *ratelimit.WindowStats, error) {
	if m.GetWindowsFn != nil {
		return m.GetWindowsFn(ctx, filter, page)
	}
	return nil, &ports.Pagination{}, &ratelimit.WindowStats{}, nil
}
func (m *ReportServiceMock) GetBlacklist(ctx context.Context, filter *access.BlacklistFilter, page ports.PageRequest) ([]*access.BlacklistEntry, *ports.Pagination, *access.BlacklistStats, error) {
	if m.GetBlacklistFn != nil {
		return m.GetBlacklistFn(ctx, filter, page)
	}
	return nil, &ports.Pagination{}, &access.BlacklistStats{}, nil
}
func (m *ReportServiceMock) GetWhitelist(ctx context.Context, filter *access.WhitelistFilter, page ports.PageRequest) ([]*access.WhitelistEntry, *ports.Pagination, *access.WhitelistStats, error) {
	if m.GetWhitelistFn != nil {
		return m.GetWhitelistFn(ctx, filter, page)
	}
	return nil, &ports.Pagination{}, &access.WhitelistStats{}, nil
}
func (m *ReportServiceMock) GetEvents(ctx context.Context, filter *audit.EventFilter, page ports.PageRequest) ([]*audit.DecisionEvent, *ports.Pagination, error) {
	if m.GetEventsFn != nil {
		return m.GetEventsFn(ctx, filter, page)
	}
	return nil, &ports.Pagination{}, nil
}

// ListAdminServiceMock is a lightweight mock for ListAdminService
type ListAdminServiceMock struct {
	AddToBlacklistFn  func(ctx context.Context, req *access.UpsertBlacklistRequest) (*access.BlacklistEntry, error)
	AddToWhitelistFn  func(ctx context.Context, req *access.UpsertWhitelistRequest) (*access.WhitelistEntry, error)
	RemoveFromListsFn func(ctx context.Context, id access.Identity) (int64, error)
}

func (m *ListAdminServiceMock) AddToBlacklist(ctx context.Context, req *access.UpsertBlacklistRequest) (*access.BlacklistEntry, error) {
	if m.AddToBlacklistFn != nil {
		return m.AddToBlacklistFn(ctx, req)
	}
	return &access.BlacklistEntry{}, nil
}
func (m *ListAdminServiceMock) AddToWhitelist(ctx context.Context, req *access.UpsertWhitelistRequest) (*access.WhitelistEntry, error) {
	if m.AddToWhitelistFn != nil {
		return m.AddToWhitelistFn(ctx, req)
	}
	return &access.WhitelistEntry{}, nil
}
func (m *ListAdminServiceMock) RemoveFromLists(ctx context.Context, id access.Identity) (int64, error) {
	if m.RemoveFromListsFn != nil {
		return m.RemoveFromListsFn(ctx, id)
	}
	return 0, nil
}

// WindowReporterMock is a lightweight mock for WindowReporter
type WindowReporterMock struct {
	ListFn  func(ctx context.Context, filter *ratelimit.WindowFilter) ([]*ratelimit.RateWindow, error)
	CountFn func(ctx context.Context, filter *ratelimit.WindowFilter) (int, error)
	StatsFn func(ctx context.Context, filter *ratelimit.WindowFilter) (*ratelimit.WindowStats, error)
}

func (m *WindowReporterMock) List(ctx context.Context, filter *ratelimit.WindowFilter) ([]*ratelimit.RateWindow, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return nil, nil
}
func (m *WindowReporterMock) Count(ctx context.Context, filter *ratelimit.WindowFilter) (int, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx, filter)
	}
	return 0, nil
}
func (m *WindowReporterMock) Stats(ctx context.Context, filter *ratelimit.WindowFilter) (*ratelimit.WindowStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx, filter)
	}
	return &ratelimit.WindowStats{}, nil
}

// ListReporterMock is a lightweight mock for ListReporter
type ListReporterMock struct {
	ListBlacklistFn  func(ctx context.Context, filter *access.BlacklistFilter) ([]*access.BlacklistEntry, error)
	CountBlacklistFn func(ctx context.Context, filter *access.BlacklistFilter) (int, error)
	BlacklistStatsFn func(ctx context.Context, filter *access.BlacklistFilter, now time.Time) (*access.BlacklistStats, error)
	ListWhitelistFn  func(ctx context.Context, filter *access.WhitelistFilter) ([]*access.WhitelistEntry, error)
	CountWhitelistFn func(ctx context.Context, filter *access.WhitelistFilter) (int, error)
	WhitelistStatsFn func(ctx context.Context, filter *access.WhitelistFilter, now time.Time) (*access.WhitelistStats, error)
}

func (m *ListReporterMock) ListBlacklist(ctx context.Context, filter *access.BlacklistFilter) ([]*access.BlacklistEntry, error) {
	if m.ListBlacklistFn != nil {
		return m.ListBlacklistFn(ctx, filter)
	}
	return nil, nil
}
func (m *ListReporterMock) CountBlacklist(ctx context.Context, filter *access.BlacklistFilter) (int, error) {
	if m.CountBlacklistFn != nil {
		return m.CountBlacklistFn(ctx, filter)
	}
	return 0, nil
}
func (m *ListReporterMock) BlacklistStats(ctx context.Context, filter *access.BlacklistFilter, now time.Time) (*access.BlacklistStats, error) {
	if m.BlacklistStatsFn != nil {
		return m.BlacklistStatsFn(ctx, filter, now)
	}
	return &access.BlacklistStats{}, nil
}
func (m *ListReporterMock) ListWhitelist(ctx context.Context, filter *access.WhitelistFilter) ([]*access.WhitelistEntry, error) {
	if m.ListWhitelistFn != nil {
		return m.ListWhitelistFn(ctx, filter)
	}
	return nil, nil
}
func (m *ListReporterMock) CountWhitelist(ctx context.Context, filter *access.WhitelistFilter) (int, error) {
	if m.CountWhitelistFn != nil {
		return m.CountWhitelistFn(ctx, filter)
	}
	return 0, nil
}
func (m *ListReporterMock) WhitelistStats(ctx context.Context, filter *access.WhitelistFilter, now time.Time) (*access.WhitelistStats, error) {
	if m.WhitelistStatsFn != nil {
		return m.WhitelistStatsFn(ctx, filter, now)
	}
	return &access.WhitelistStats{}, nil
}

// ListStoreFake is an in-memory ListStore with the repository's upsert,
// expiry and deactivation semantics, for exercising escalation without
// a database.
type ListStoreFake struct {
	mu        sync.Mutex
	blacklist []*access.BlacklistEntry
	whitelist []*access.WhitelistEntry
}

func NewListStoreFake() *ListStoreFake {
	return &ListStoreFake{}
}

func sameTarget(ip *string, principal *uuid.UUID, entryIP *string, entryPrincipal *uuid.UUID) bool {
	if (ip == nil) != (entryIP == nil) || (principal == nil) != (entryPrincipal == nil) {
		return false
	}
	if ip != nil && *ip != *entryIP {
		return false
	}
	if principal != nil && *principal != *entryPrincipal {
		return false
	}
	return true
}

func (f *ListStoreFake) FindBlacklist(ctx context.Context, ip string, principal *uuid.UUID, now time.Time) (*access.BlacklistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range f.blacklist {
		if e.IsActive && e.IsExpired(now) {
			e.IsActive = false
		}
	}
	for _, e := range f.blacklist {
		if !e.IsActive {
			continue
		}
		if (e.TargetType == access.TargetIP || e.TargetType == access.TargetBoth) &&
			e.IPAddress != nil && *e.IPAddress == ip {
			return e, nil
		}
	}
	if principal != nil {
		for _, e := range f.blacklist {
			if !e.IsActive {
				continue
			}
			if (e.TargetType == access.TargetUser || e.TargetType == access.TargetBoth) &&
				e.PrincipalID != nil && *e.PrincipalID == *principal {
				return e, nil
			}
		}
	}
	return nil, nil
}

func (f *ListStoreFake) FindWhitelist(ctx context.Context, ip string, principal *uuid.UUID, now time.Time) (*access.WhitelistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range f.whitelist {
		if e.IsActive && e.IsExpired(now) {
			e.IsActive = false
		}
	}
	match := func(e *access.WhitelistEntry) *access.WhitelistEntry {
		e.UsageCount++
		used := now
		e.LastUsed = &used
		return e
	}
	for _, e := range f.whitelist {
		if !e.IsActive {
			continue
		}
		if (e.TargetType == access.TargetIP || e.TargetType == access.TargetBoth) &&
			e.IPAddress != nil && *e.IPAddress == ip {
			return match(e), nil
		}
	}
	if principal != nil {
		for _, e := range f.whitelist {
			if !e.IsActive {
				continue
			}
			if (e.TargetType == access.TargetUser || e.TargetType == access.TargetBoth) &&
				e.PrincipalID != nil && *e.PrincipalID == *principal {
				return match(e), nil
			}
		}
	}
	return nil, nil
}

func (f *ListStoreFake) UpsertBlacklist(ctx context.Context, req *access.UpsertBlacklistRequest, now time.Time) (*access.BlacklistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ipPtr *string
	if req.IPAddress != "" {
		ip := req.IPAddress
		ipPtr = &ip
	}
	targetType := access.TargetTypeFor(req.IPAddress, req.PrincipalID)
	isPermanent := req.Duration == nil
	var expiresAt *time.Time
	if req.Duration != nil {
		t := now.Add(*req.Duration)
		expiresAt = &t
	}

	for _, e := range f.blacklist {
		if e.TargetType == targetType && sameTarget(ipPtr, req.PrincipalID, e.IPAddress, e.PrincipalID) {
			e.Reason = req.Reason
			e.IsPermanent = isPermanent
			e.ExpiresAt = expiresAt
			e.ViolationCount++
			e.LastViolation = now
			e.CreatedBy = req.CreatedBy
			e.IsActive = true
			e.UpdatedAt = now
			return e, nil
		}
	}

	entry := &access.BlacklistEntry{
		ID:             uuid.New(),
		IPAddress:      ipPtr,
		PrincipalID:    req.PrincipalID,
		TargetType:     targetType,
		Reason:         req.Reason,
		IsPermanent:    isPermanent,
		ExpiresAt:      expiresAt,
		ViolationCount: 1,
		LastViolation:  now,
		CreatedBy:      req.CreatedBy,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.blacklist = append(f.blacklist, entry)
	return entry, nil
}

func (f *ListStoreFake) UpsertWhitelist(ctx context.Context, req *access.UpsertWhitelistRequest, now time.Time) (*access.WhitelistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ipPtr *string
	if req.IPAddress != "" {
		ip := req.IPAddress
		ipPtr = &ip
	}
	targetType := access.TargetTypeFor(req.IPAddress, req.PrincipalID)
	isPermanent := req.Duration == nil
	var expiresAt *time.Time
	if req.Duration != nil {
		t := now.Add(*req.Duration)
		expiresAt = &t
	}

	for _, e := range f.whitelist {
		if e.TargetType == targetType && sameTarget(ipPtr, req.PrincipalID, e.IPAddress, e.PrincipalID) {
			e.Reason = req.Reason
			e.IsPermanent = isPermanent
			e.ExpiresAt = expiresAt
			e.BypassRateLimits = req.Bypass()
			e.CustomRateMultiplier = req.Multiplier()
			e.CreatedBy = req.CreatedBy
			e.IsActive = true
			e.UpdatedAt = now
			return e, nil
		}
	}

	entry := &access.WhitelistEntry{
		ID:                   uuid.New(),
		IPAddress:            ipPtr,
		PrincipalID:          req.PrincipalID,
		TargetType:           targetType,
		Reason:               req.Reason,
		IsPermanent:          isPermanent,
		ExpiresAt:            expiresAt,
		BypassRateLimits:     req.Bypass(),
		CustomRateMultiplier: req.Multiplier(),
		CreatedBy:            req.CreatedBy,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	f.whitelist = append(f.whitelist, entry)
	return entry, nil
}

func (f *ListStoreFake) Deactivate(ctx context.Context, ip string, principal *uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matches := func(entryIP *string, entryPrincipal *uuid.UUID) bool {
		if ip != "" && (entryIP == nil || *entryIP != ip) {
			return false
		}
		if principal != nil && (entryPrincipal == nil || *entryPrincipal != *principal) {
			return false
		}
		return true
	}

	var total int64
	for _, e := range f.blacklist {
		if e.IsActive && matches(e.IPAddress, e.PrincipalID) {
			e.IsActive = false
			total++
		}
	}
	for _, e := range f.whitelist {
		if e.IsActive && matches(e.IPAddress, e.PrincipalID) {
			e.IsActive = false
			total++
		}
	}
	return total, nil
}

// ActiveBlacklistCount reports how many blacklist entries are active.
func (f *ListStoreFake) ActiveBlacklistCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, e := range f.blacklist {
		if e.IsActive {
			count++
		}
	}
	return count
}

// WindowStoreFake is an in-memory WindowStore with real fixed-window
// semantics, for exercising the limiter without a database.
type WindowStoreFake struct {
	mu      sync.Mutex
	windows map[ratelimit.WindowKey][]*ratelimit.RateWindow
}

func NewWindowStoreFake() *WindowStoreFake {
	return &WindowStoreFake{windows: make(map[ratelimit.WindowKey][]*ratelimit.RateWindow)}
}

func (f *WindowStoreFake) CheckAndIncrement(ctx context.Context, key ratelimit.WindowKey, limit int, window time.Duration, now time.Time) (bool, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cutoff := now.Add(-window)
	var live []*ratelimit.RateWindow
	for _, w := range f.windows[key] {
		if !w.WindowStart.Before(cutoff) {
			live = append(live, w)
		}
	}

	if len(live) == 0 {
		var principal *uuid.UUID
		if key.PrincipalID.Valid {
			p := key.PrincipalID.UUID
			principal = &p
		}
		live = append(live, &ratelimit.RateWindow{
			ID:           uuid.New(),
			IPAddress:    key.IPAddress,
			PrincipalID:  principal,
			Endpoint:     key.Endpoint,
			RequestCount: 1,
			WindowStart:  now,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	} else {
		live[0].RequestCount++
		live[0].UpdatedAt = now
	}
	f.windows[key] = live

	total := 0
	for _, w := range live {
		total += w.RequestCount
	}
	return total > limit, total, nil
}

func (f *WindowStoreFake) CountRecentWindows(ctx context.Context, ip string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for key, ws := range f.windows {
		if key.IPAddress != ip {
			continue
		}
		for _, w := range ws {
			if !w.WindowStart.Before(since) {
				count++
			}
		}
	}
	return count, nil
}

func (f *WindowStoreFake) Reset(ctx context.Context, key ratelimit.WindowKey) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	deleted := int64(len(f.windows[key]))
	delete(f.windows, key)
	return deleted, nil
}

func (f *WindowStoreFake) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var deleted int64
	for key, ws := range f.windows {
		var kept []*ratelimit.RateWindow
		for _, w := range ws {
			if w.WindowStart.Before(olderThan) {
				deleted++
			} else {
				kept = append(kept, w)
			}
		}
		f.windows[key] = kept
	}
	return deleted, nil
}
